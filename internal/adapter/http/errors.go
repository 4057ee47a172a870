package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"loan-service/internal/domain/loan"
	"loan-service/internal/logger"
	"loan-service/pkg/id"
)

// statusFor maps workflow errors to HTTP statuses. Unavailability wins over
// the not-found kinds it is wrapped with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrMissingField), errors.Is(err, id.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, loan.ErrUserNotFound), errors.Is(err, loan.ErrBookUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrStockDecrementFailed):
		return http.StatusBadGateway
	case errors.Is(err, loan.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrAlreadyReturned), errors.Is(err, loan.ErrDuplicateAttempt):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
