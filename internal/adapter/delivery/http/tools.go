package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/online-tools/pkg/b64"
	"github.com/vadimbarashkov/online-tools/pkg/password"
)

type toolsHandler struct {
	validate *validator.Validate
}

func newToolsHandler(validate *validator.Validate) *toolsHandler {
	return &toolsHandler{validate: validate}
}

func (h *toolsHandler) generatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	opts := password.DefaultOptions()
	if req.Length != 0 {
		opts.Length = req.Length
	}
	opts.Uppercase = flagOrDefault(req.Uppercase)
	opts.Lowercase = flagOrDefault(req.Lowercase)
	opts.Numbers = flagOrDefault(req.Numbers)
	opts.Symbols = flagOrDefault(req.Symbols)
	opts.ExcludeAmbiguous = req.ExcludeAmbiguous

	pwd, err := password.Generate(opts)
	if err != nil {
		if errors.Is(err, password.ErrInvalidLength) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("invalid password length"))
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, passwordResponse{
		Password: pwd,
		Strength: string(password.Evaluate(pwd)),
		Score:    password.Score(pwd),
	})
}

func (h *toolsHandler) passwordStrength(w http.ResponseWriter, r *http.Request) {
	var req strengthRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, strengthResponse{
		Strength: string(password.Evaluate(req.Password)),
		Score:    password.Score(req.Password),
	})
}

func (h *toolsHandler) encodeBase64(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, b64.Encode)
}

func (h *toolsHandler) decodeBase64(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, b64.Decode)
}

func (h *toolsHandler) convert(w http.ResponseWriter, r *http.Request, fn func(string) (string, error)) {
	var req textRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	result, err := fn(req.Text)
	if err != nil {
		switch {
		case errors.Is(err, b64.ErrEmptyInput):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("text is required"))
		case errors.Is(err, b64.ErrInvalidBase64):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("invalid base64"))
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, textResponse{Result: result})
}

func flagOrDefault(flag *bool) bool {
	return flag == nil || *flag
}
