package auth

import (
	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/models"
)

// ContextKeyUser is the echo context key holding the request principal.
const ContextKeyUser = "user"

// RequireAuth is the gate every protected route composes with. It runs the
// service's verifier chain, attaches the resolved user to the context and
// hands failures to the shared negotiator.
func RequireAuth(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := svc.Authenticate(c)
			if err != nil {
				return Fail(c, svc.cfg, err)
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
