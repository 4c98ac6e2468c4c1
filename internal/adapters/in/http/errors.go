package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/api"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusFor maps a use case error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrIllegalState),
		errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNoCapacity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	status := StatusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err)
		message = http.StatusText(status)
	}

	return ctx.JSON(status, api.Error{Code: status, Message: message})
}

func (s *Server) badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: message})
}
