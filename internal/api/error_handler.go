package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/view"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler for a server-rendered
// portal:
//   - Missing views and layouts are deployment bugs: the response halts with
//     a terminal 500 naming the view, and the real cause is logged.
//   - Auth failures normally redirect inside the gate and never reach here;
//     any that do are mapped to their status rather than leaked as 500s.
//   - Everything else logs the cause and returns a generic message.
//
// Bodies are plain text: the recipient is either a developer or a fragment
// fetch, not a styled page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.String(code, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if errors.Is(err, view.ErrViewNotFound) {
		log.Error().
			Err(err).
			Str("path", c.Path()).
			Msg("view configuration error")
		return http.StatusInternalServerError, err.Error()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many attempts"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
