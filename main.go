package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fileshare-backend/internal/api"
	"fileshare-backend/internal/auth"
	"fileshare-backend/internal/config"
	"fileshare-backend/internal/database"
	"fileshare-backend/internal/models"
	"fileshare-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	log.Printf("Initializing database at %s", cfg.DBPath)
	if err := database.Open(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	userRepo := database.NewUserRepo()
	sessionRepo := database.NewSessionRepo()
	fileRepo := database.NewFileRepo()

	if err := createDefaultAdminIfNeeded(userRepo, cfg.BcryptCost); err != nil {
		log.Printf("Warning: failed to create default admin: %v", err)
	}

	authSvc := auth.NewService(userRepo, sessionRepo, auth.Config{
		Secret:          cfg.Secret,
		SessionTTL:      time.Duration(cfg.SessionTTL) * time.Minute,
		RedirectSuccess: cfg.RedirectSuccess,
		RedirectFail:    cfg.RedirectFail,
	})

	var oidcClient *auth.OIDCClient
	if cfg.OIDCEnabled() {
		var err error
		oidcClient, err = auth.NewOIDCClient(context.Background(), auth.OIDCConfig{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize OIDC provider: %v", err)
		}
		log.Printf("OIDC sign-on enabled via %s", cfg.OIDCIssuerURL)
	}

	go sweepSessions(sessionRepo)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Requested-With"},
		AllowCredentials: true,
	}))

	handlers := api.NewHandlers(authSvc, userRepo, fileRepo, storage.New(cfg.UploadDir), oidcClient)
	handlers.RegisterRoutes(e)

	log.Printf("Starting fileshare backend on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// createDefaultAdminIfNeeded creates a default admin user if no users exist
func createDefaultAdminIfNeeded(userRepo *database.UserRepo, bcryptCost int) error {
	count, err := userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("Creating default admin user (admin/admin) - CHANGE THIS PASSWORD!")

	passwordHash, err := auth.HashPassword("admin", bcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: passwordHash,
		AuthType:     models.AuthTypeLocal,
	}

	return userRepo.Create(admin)
}

// sweepSessions periodically removes expired session rows. The store also
// checks expiry on read; this only keeps the table from growing.
func sweepSessions(sessionRepo *database.SessionRepo) {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		if n, err := sessionRepo.DeleteExpired(); err != nil {
			log.Printf("session sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("session sweep removed %d expired sessions", n)
		}
	}
}
