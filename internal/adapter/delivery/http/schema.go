package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/online-tools/internal/entity"
)

const statusError = "error"

// submitURLRequest represents the structure for a request to shorten a URL.
// The url is validated by the use case so that the bare-domain form is accepted.
type submitURLRequest struct {
	URL string `json:"url"`
}

// shortenedURLResponse represents a single history record.
type shortenedURLResponse struct {
	ID          string `json:"id"`
	OriginalURL string `json:"original_url"`
	ShortCode   string `json:"short_code"`
	ShortURL    string `json:"short_url"`
	CreatedAt   int64  `json:"created_at"`
	Clicks      int64  `json:"clicks,omitempty"`
}

func toShortenedURLResponse(url *entity.ShortenedURL, base, prefix string) shortenedURLResponse {
	return shortenedURLResponse{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		ShortCode:   url.ShortCode,
		ShortURL:    buildShortURL(base, prefix, url.ShortCode),
		CreatedAt:   url.CreatedAt.UnixMilli(),
		Clicks:      url.Clicks,
	}
}

func toHistoryResponse(history []entity.ShortenedURL, base, prefix string) []shortenedURLResponse {
	resp := make([]shortenedURLResponse, 0, len(history))
	for i := range history {
		resp = append(resp, toShortenedURLResponse(&history[i], base, prefix))
	}
	return resp
}

// passwordRequest holds the generator options. Nil flags mean "enabled".
type passwordRequest struct {
	Length           int   `json:"length" validate:"omitempty,min=8,max=64"`
	Uppercase        *bool `json:"uppercase"`
	Lowercase        *bool `json:"lowercase"`
	Numbers          *bool `json:"numbers"`
	Symbols          *bool `json:"symbols"`
	ExcludeAmbiguous bool  `json:"exclude_ambiguous"`
}

type passwordResponse struct {
	Password string `json:"password"`
	Strength string `json:"strength"`
	Score    int    `json:"score"`
}

// strengthRequest rates any password. An empty one is rated weak.
type strengthRequest struct {
	Password string `json:"password"`
}

type strengthResponse struct {
	Strength string `json:"strength"`
	Score    int    `json:"score"`
}

type textRequest struct {
	Text string `json:"text" validate:"required"`
}

type textResponse struct {
	Result string `json:"result"`
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

func newErrorResponse(message string) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: message,
	}
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	submissionInFlightResponse = errorResponse{
		Status:  statusError,
		Message: "another submission is in progress",
	}

	tooManyRequestsResponse = errorResponse{
		Status:  statusError,
		Message: "too many requests",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "min", "max":
		return "value is out of range"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
