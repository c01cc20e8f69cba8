package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/colmedica/association-api/internal/api/metrics"
	"github.com/colmedica/association-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrOfferingNotFound),
		errors.Is(err, domain.ErrEnrollmentNotFound),
		errors.Is(err, domain.ErrNewsNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"

	case errors.Is(err, domain.ErrDuplicateEnrollment):
		metrics.EnrollmentsRejectedTotal.WithLabelValues("duplicate").Inc()
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrOfferingHasEnrollments):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrOfferingInactive):
		metrics.EnrollmentsRejectedTotal.WithLabelValues("inactive").Inc()
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrDeadlinePassed):
		metrics.EnrollmentsRejectedTotal.WithLabelValues("deadline").Inc()
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrCapacityExceeded):
		metrics.EnrollmentsRejectedTotal.WithLabelValues("capacity").Inc()
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrApplicationResolved),
		errors.Is(err, domain.ErrApplicationNotPaymentPending),
		errors.Is(err, domain.ErrEnrollmentProcessed):
		return http.StatusUnprocessableEntity, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
