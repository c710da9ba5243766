package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string                  `json:"error"`
	Details []domain.FieldViolation `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to status codes by their domain.Kind.
//   - Logs storage and unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	kind := domain.KindOf(err)
	code := statusFor(kind)

	switch kind {
	case domain.KindValidation:
		var ve *domain.ValidationError
		errors.As(err, &ve)
		return code, errorResponse{Error: ve.Error(), Details: ve.Violations}
	case domain.KindUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return code, errorResponse{Error: "invalid credentials"}
		}
		return code, errorResponse{Error: "unauthorized"}
	case domain.KindForbidden:
		return code, errorResponse{Error: "access forbidden"}
	case domain.KindUnavailable:
		if errors.Is(err, domain.ErrAdminNotConfigured) {
			return code, errorResponse{Error: "admin credentials not configured"}
		}
		return code, errorResponse{Error: "service unavailable"}
	case domain.KindConflict:
		if errors.Is(err, domain.ErrSubmissionInProgress) {
			return code, errorResponse{Error: "submission in progress, retry later"}
		}
		return code, errorResponse{Error: "conflict"}
	}

	// Storage or unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	if kind == domain.KindStorage {
		return code, errorResponse{Error: "storage unavailable"}
	}
	return code, errorResponse{Error: "internal server error"}
}
