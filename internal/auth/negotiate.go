package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/database"
)

// IsProgrammatic reports whether the client asked for a machine-readable
// response. The XHR marker is the primary signal, with a JSON Accept
// preference as fallback for non-browser API clients.
func IsProgrammatic(c echo.Context) bool {
	if strings.EqualFold(c.Request().Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) &&
		!strings.Contains(accept, echo.MIMETextHTML)
}

// statusFor maps an auth failure to its HTTP status. Anything outside the
// known taxonomy is a transport error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrSessionNotFound),
		errors.Is(err, database.ErrSessionExpired),
		errors.Is(err, ErrNoToken),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-visible error string. Transport errors get
// a generic message so internal detail never leaks.
func messageFor(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "something failed"
	}
	return err.Error()
}

// Fail is the single place the browser/programmatic response split happens
// for auth failures. Programmatic callers get a JSON error with the mapped
// status; browser callers are redirected to the login page.
func Fail(c echo.Context, cfg Config, err error) error {
	if IsProgrammatic(c) {
		return c.JSON(statusFor(err), map[string]string{
			"error": messageFor(err),
		})
	}
	return c.Redirect(http.StatusFound, cfg.RedirectFail)
}
