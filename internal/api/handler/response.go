package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
)

// Envelope wraps every response body, successful or not.
type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func respond(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, Envelope{
		Status:  code,
		Data:    data,
		Message: message,
		Success: code < http.StatusBadRequest,
	})
}

// ResolveError maps err to the status code and message sent to the client.
// internal is true when the real cause must stay in the logs.
func ResolveError(err error) (code int, message string, internal bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), false
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, "internal server error", true
	}

	switch {
	case errors.Is(de, domain.ErrValidation), errors.Is(de, domain.ErrUpload):
		return http.StatusBadRequest, de.Error(), false
	case errors.Is(de, domain.ErrUnauthorized):
		return http.StatusUnauthorized, de.Error(), false
	case errors.Is(de, domain.ErrNotFound):
		return http.StatusNotFound, de.Error(), false
	case errors.Is(de, domain.ErrConflict):
		return http.StatusConflict, de.Error(), false
	}
	return http.StatusInternalServerError, "internal server error", true
}

// errorClass is the metrics label for an operation outcome.
func errorClass(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUpload):
		return "upload"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
