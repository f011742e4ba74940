package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/online-tools/internal/entity"
	"github.com/vadimbarashkov/online-tools/pkg/urlnorm"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type historyUseCase interface {
	Submit(ctx context.Context, sessionID, rawURL string) (*entity.ShortenedURL, error)
	Load(ctx context.Context, sessionID string) []entity.ShortenedURL
	Delete(ctx context.Context, sessionID, id string)
	Clear(ctx context.Context, sessionID string)
}

type historyHandler struct {
	useCase  historyUseCase
	validate *validator.Validate
	base     string
	prefix   string
}

func newHistoryHandler(useCase historyUseCase, validate *validator.Validate, base, prefix string) *historyHandler {
	return &historyHandler{
		useCase:  useCase,
		validate: validate,
		base:     strings.TrimRight(base, "/"),
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (h *historyHandler) shortURLBase(r *http.Request) string {
	if h.base != "" {
		return h.base
	}
	return requestOrigin(r)
}

func (h *historyHandler) list(w http.ResponseWriter, r *http.Request) {
	history := h.useCase.Load(r.Context(), sessionFromContext(r.Context()))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toHistoryResponse(history, h.shortURLBase(r), h.prefix))
}

func (h *historyHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitURLRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	url, err := h.useCase.Submit(r.Context(), sessionFromContext(r.Context()), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, urlnorm.ErrEmptyInput):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("url is required"))
		case errors.Is(err, urlnorm.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("invalid url"))
		case errors.Is(err, entity.ErrSubmissionInFlight):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, submissionInFlightResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toShortenedURLResponse(url, h.shortURLBase(r), h.prefix))
}

func (h *historyHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.useCase.Delete(r.Context(), sessionFromContext(r.Context()), id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *historyHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.useCase.Clear(r.Context(), sessionFromContext(r.Context()))

	w.WriteHeader(http.StatusNoContent)
}

// decodeRequest decodes and validates the JSON body into dst. On failure the
// error response is already written and false is returned.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return false
	}

	return true
}

// requestOrigin returns scheme://host of the incoming request.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.SplitN(proto, ",", 2)[0]))
	}
	return scheme + "://" + r.Host
}

func buildShortURL(base, prefix, shortCode string) string {
	if prefix == "" {
		return base + "/" + shortCode
	}
	return base + "/" + prefix + "/" + shortCode
}
