package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare-backend/internal/database"
)

func newContext(t *testing.T, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestIsProgrammatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"plain browser", map[string]string{"Accept": "text/html,application/xhtml+xml"}, false},
		{"no headers", nil, false},
		{"xhr marker", map[string]string{"X-Requested-With": "XMLHttpRequest"}, true},
		{"xhr marker lowercase", map[string]string{"X-Requested-With": "xmlhttprequest"}, true},
		{"json accept", map[string]string{"Accept": "application/json"}, true},
		{"browser accepting both", map[string]string{"Accept": "text/html,application/json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(t, tt.headers)
			assert.Equal(t, tt.want, IsProgrammatic(c))
		})
	}
}

func TestFail_Browser_RedirectsToLogin(t *testing.T) {
	t.Parallel()

	cfg := Config{RedirectFail: "/login"}
	c, rec := newContext(t, nil)

	require.NoError(t, Fail(c, cfg, ErrNoToken))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestFail_Programmatic_JSONStatus(t *testing.T) {
	t.Parallel()

	cfg := Config{RedirectFail: "/login"}

	tests := []struct {
		err        error
		wantStatus int
	}{
		{database.ErrInvalidCredentials, http.StatusUnauthorized},
		{database.ErrUserNotFound, http.StatusUnauthorized},
		{database.ErrSessionExpired, http.StatusUnauthorized},
		{ErrNoToken, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		c, rec := newContext(t, map[string]string{"X-Requested-With": "XMLHttpRequest"})
		require.NoError(t, Fail(c, cfg, tt.err))
		assert.Equal(t, tt.wantStatus, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestFail_TransportError_GenericMessage(t *testing.T) {
	t.Parallel()

	c, rec := newContext(t, map[string]string{"X-Requested-With": "XMLHttpRequest"})
	require.NoError(t, Fail(c, Config{}, assert.AnError))
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	assert.Contains(t, rec.Body.String(), "something failed")
}
