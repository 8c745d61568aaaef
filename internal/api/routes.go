package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/auth"
	"fileshare-backend/internal/database"
	"fileshare-backend/internal/storage"
)

// Handlers bundles the collaborators the HTTP surface needs. Everything is
// passed in explicitly; handlers hold no global state.
type Handlers struct {
	authSvc      *auth.Service
	userRepo     *database.UserRepo
	fileRepo     *database.FileRepo
	store        *storage.Storage
	events       *EventHub
	oidcClient   *auth.OIDCClient // nil when SSO is not configured
	loginLimiter *auth.RateLimiter
}

// NewHandlers creates the handler set.
func NewHandlers(authSvc *auth.Service, userRepo *database.UserRepo, fileRepo *database.FileRepo, store *storage.Storage, oidcClient *auth.OIDCClient) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		userRepo:     userRepo,
		fileRepo:     fileRepo,
		store:        store,
		events:       NewEventHub(),
		oidcClient:   oidcClient,
		loginLimiter: auth.DefaultRateLimiter(),
	}
}

// RegisterRoutes sets up all routes
func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	requireAuth := auth.RequireAuth(h.authSvc)

	// Health check (public)
	e.GET("/health", healthCheck)

	// Auth routes (public)
	e.GET("/login", h.loginPageHandler)
	e.POST("/login", h.loginHandler, h.loginLimiter.Middleware())
	e.GET("/logout", h.logoutHandler)

	if h.oidcClient != nil {
		e.GET("/auth/oidc", h.oidcLoginHandler)
		e.GET("/auth/oidc/callback", h.oidcCallbackHandler)
	}

	// File routes (protected)
	e.GET("/", h.indexHandler, requireAuth)
	e.GET("/media/:user/:name", h.mediaHandler, requireAuth)

	apiGroup := e.Group("/api", requireAuth)
	apiGroup.GET("/me", h.meHandler)
	apiGroup.GET("/:user/files", h.listFilesHandler)
	apiGroup.POST("/file-upload", h.uploadFileHandler)
	apiGroup.DELETE("/file-remove", h.removeFileHandler)
	apiGroup.GET("/events", h.eventsHandler)
}

// healthCheck handles GET /health
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
