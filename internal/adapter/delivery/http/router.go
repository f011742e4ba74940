// Package http provides the HTTP delivery layer of the online tools service.
// It contains the handlers for the URL shortening history and the text tools,
// the middleware they run behind, and the request and response schemas.
package http

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the presentation settings of the router.
type RouterConfig struct {
	// ShortURLBase is the origin short links are built on. Empty means the origin of the request.
	ShortURLBase string
	// ShortURLPrefix is the path segment placed between the origin and the short code.
	ShortURLPrefix string
	// SecureCookies marks the session cookie as Secure.
	SecureCookies bool
	// AllowedOrigins are the CORS origin patterns. Empty means any http(s) origin.
	AllowedOrigins []string
	// AllowCredentials lets browsers send the session cookie cross-origin.
	AllowCredentials bool
	// RateLimiter limits requests per client when set.
	RateLimiter *RateLimiter
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the online tools API.
func NewRouter(logger *httplog.Logger, historyUseCase historyUseCase, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", sessionHeader},
		ExposedHeaders:   []string{sessionHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           84600,
	}))
	r.Use(middleware.AllowContentType("application/json"))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Route("/api/v1", func(r chi.Router) {
		validate := newValidate()

		r.Get("/ping", handlePing)

		r.Route("/history", func(r chi.Router) {
			r.Use(sessionMiddleware(cfg.SecureCookies))

			h := newHistoryHandler(historyUseCase, validate, cfg.ShortURLBase, cfg.ShortURLPrefix)

			r.Get("/", h.list)
			r.Post("/", h.submit)
			r.Delete("/", h.clear)
			r.Delete("/{id}", h.delete)
		})

		r.Route("/tools", func(r chi.Router) {
			h := newToolsHandler(validate)

			r.Post("/password", h.generatePassword)
			r.Post("/password/strength", h.passwordStrength)
			r.Post("/base64/encode", h.encodeBase64)
			r.Post("/base64/decode", h.decodeBase64)
		})
	})

	return r
}

func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}
