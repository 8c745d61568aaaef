package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/auth"
	"fileshare-backend/internal/database"
	"fileshare-backend/internal/models"
)

// loginHandler handles POST /login. The verify -> session -> token
// sequence lives in the auth service; this handler only binds the request
// and picks the response shape.
func (h *Handlers) loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return h.loginFailed(c, req.Username, database.ErrInvalidCredentials)
	}

	result, err := h.authSvc.Login(req, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if !errors.Is(err, database.ErrInvalidCredentials) {
			c.Logger().Error("login error: ", err)
		}
		return h.loginFailed(c, req.Username, err)
	}

	h.loginLimiter.RecordSuccess(c.RealIP())
	return h.loginSucceeded(c, result)
}

// loginSucceeded sets the token cookie and bifurcates the success shape:
// JSON for programmatic callers, redirect for browsers. The cookie is set
// in both cases before any body is written.
func (h *Handlers) loginSucceeded(c echo.Context, result *auth.LoginResult) error {
	c.SetCookie(h.authSvc.TokenCookie(result.Token, c.Request().TLS != nil))

	if auth.IsProgrammatic(c) {
		return c.JSON(http.StatusOK, models.LoginResponse{
			User:  result.User.Public(),
			Token: result.Token,
		})
	}
	return c.Redirect(http.StatusFound, h.authSvc.Cfg().RedirectSuccess)
}

// loginFailed returns a JSON error to programmatic callers and re-renders
// the login form with an inline error for browsers. Invalid credentials
// are always a 401; the unknown-user/wrong-password distinction is never
// surfaced. Anything outside the credential outcome is a transport error
// and must not masquerade as one: browsers get a generic 500 page.
func (h *Handlers) loginFailed(c echo.Context, username string, err error) error {
	if auth.IsProgrammatic(c) {
		return auth.Fail(c, h.authSvc.Cfg(), err)
	}
	if !errors.Is(err, database.ErrInvalidCredentials) {
		return h.renderError(c, http.StatusInternalServerError, "something failed")
	}
	return h.renderLogin(c, http.StatusUnauthorized, username, "invalid username or password")
}

// loginPageHandler handles GET /login
func (h *Handlers) loginPageHandler(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, "", "")
}

// logoutHandler handles GET /logout. Logout is idempotent: a missing or
// already-destroyed session is still a successful logout.
func (h *Handlers) logoutHandler(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(auth.CookieName); err == nil {
		token = cookie.Value
	}

	if err := h.authSvc.Logout(token); err != nil {
		c.Logger().Error("logout error: ", err)
	}

	c.SetCookie(h.authSvc.ClearTokenCookie())

	if auth.IsProgrammatic(c) {
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
	return c.Redirect(http.StatusFound, h.authSvc.Cfg().RedirectFail)
}

// meHandler handles GET /api/me
func (h *Handlers) meHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)
	return c.JSON(http.StatusOK, user.Public())
}

// oidcLoginHandler handles GET /auth/oidc: redirect the browser to the
// provider with a state nonce pinned in a short-lived cookie.
func (h *Handlers) oidcLoginHandler(c echo.Context) error {
	state := auth.NewState()
	c.SetCookie(&http.Cookie{
		Name:     "oidc_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})
	return c.Redirect(http.StatusFound, h.oidcClient.AuthURL(state))
}

// oidcCallbackHandler handles GET /auth/oidc/callback: verify state,
// exchange the code, find or create the federated user, then reuse the
// exact same session/token issuance path as a local login.
func (h *Handlers) oidcCallbackHandler(c echo.Context) error {
	stateCookie, err := c.Cookie("oidc_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "state mismatch"})
	}

	identity, err := h.oidcClient.Exchange(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		c.Logger().Error("oidc exchange error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sign-on failed"})
	}

	user, err := h.findOrCreateOIDCUser(identity)
	if err != nil {
		c.Logger().Error("oidc user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "something failed"})
	}

	result, err := h.authSvc.LoginExternal(user, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		c.Logger().Error("oidc login error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "something failed"})
	}

	return h.loginSucceeded(c, result)
}

func (h *Handlers) findOrCreateOIDCUser(identity *auth.OIDCIdentity) (*models.User, error) {
	user, err := h.userRepo.GetByOIDCSubject(identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AuthType:    models.AuthTypeOIDC,
		OIDCSubject: identity.Subject,
	}
	if err := h.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
