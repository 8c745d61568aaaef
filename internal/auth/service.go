package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/database"
	"fileshare-backend/internal/models"
)

// Config carries everything the auth module needs from the embedding
// application. It is passed explicitly at construction time; there is no
// process-wide registry.
type Config struct {
	Secret          string
	SessionTTL      time.Duration
	RedirectSuccess string
	RedirectFail    string
}

// Service orchestrates credential verification, session establishment and
// token issuance.
type Service struct {
	userRepo    *database.UserRepo
	sessionRepo *database.SessionRepo
	cfg         Config
	verifiers   []RequestVerifier
}

// RequestVerifier is a named strategy that tries to authenticate an
// incoming request. ErrNoToken means the verifier found nothing to act on
// and the next one should be tried; any other error is a definitive
// failure.
type RequestVerifier interface {
	Name() string
	Verify(c echo.Context) (*models.User, error)
}

// NewService creates a new auth service with the default verifier chain:
// Authorization header first, then the signed token cookie.
func NewService(userRepo *database.UserRepo, sessionRepo *database.SessionRepo, cfg Config) *Service {
	s := &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
	s.verifiers = []RequestVerifier{
		&headerTokenVerifier{s},
		&cookieTokenVerifier{s},
	}
	return s
}

// Cfg returns the module configuration.
func (s *Service) Cfg() Config { return s.cfg }

// LoginResult represents a successful login
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials, establishes the session principal and mints
// the signed token in one sequential operation. No partial outcome is ever
// returned: either all three succeed or the whole login fails.
func (s *Service) Login(req models.LoginRequest, ipAddress, userAgent string) (*LoginResult, error) {
	user, err := s.userRepo.FindByCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.establish(user, ipAddress, userAgent)
}

// LoginExternal establishes a session for a user that was verified out of
// band (e.g. by the OIDC callback).
func (s *Service) LoginExternal(user *models.User, ipAddress, userAgent string) (*LoginResult, error) {
	return s.establish(user, ipAddress, userAgent)
}

func (s *Service) establish(user *models.User, ipAddress, userAgent string) (*LoginResult, error) {
	sessionToken, session, err := s.sessionRepo.Create(user.ID, ipAddress, userAgent, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	token, err := IssueToken(s.cfg.Secret, user, sessionToken, s.cfg.SessionTTL)
	if err != nil {
		if delErr := s.sessionRepo.DeleteByToken(sessionToken); delErr != nil {
			log.Printf("orphaned session for user %d: %v", user.ID, delErr)
		}
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("last-login update failed for user %d: %v", user.ID, err)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout destroys the session the token is bound to. Logging out twice, or
// with no token at all, is not an error. Already-issued bearer tokens
// remain valid until their expiry; only the cookie-bound session dies.
func (s *Service) Logout(rawToken string) error {
	if rawToken == "" {
		return nil
	}
	claims, err := ParseToken(s.cfg.Secret, rawToken)
	if err != nil {
		return nil
	}
	if err := s.sessionRepo.DeleteByToken(claims.SessionToken); err != nil &&
		!errors.Is(err, database.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate runs the verifier chain against a request and returns the
// resolved principal.
func (s *Service) Authenticate(c echo.Context) (*models.User, error) {
	for _, v := range s.verifiers {
		user, err := v.Verify(c)
		if errors.Is(err, ErrNoToken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, ErrNoToken
}

// resolveToken validates a raw token and re-resolves the user it names.
// Claims beyond the id are never trusted: the user is always re-fetched.
// Session-bound resolution additionally requires the session row to be
// alive, which is how a stale cookie stops working after logout.
func (s *Service) resolveToken(raw string, sessionBound bool) (*models.User, error) {
	claims, err := ParseToken(s.cfg.Secret, raw)
	if err != nil {
		return nil, err
	}

	if sessionBound {
		session, err := s.sessionRepo.GetByToken(claims.SessionToken)
		if err != nil {
			return nil, ErrInvalidToken
		}
		if session.UserID != claims.UserID {
			return nil, ErrInvalidToken
		}
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, database.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// headerTokenVerifier reads a bearer token from the Authorization header.
// The raw token is accepted with or without a "Bearer " prefix.
type headerTokenVerifier struct {
	svc *Service
}

func (v *headerTokenVerifier) Name() string { return "token-header" }

func (v *headerTokenVerifier) Verify(c echo.Context) (*models.User, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return nil, ErrNoToken
	}
	return v.svc.resolveToken(raw, false)
}

// cookieTokenVerifier reads the token from the jwt cookie and requires the
// session it names to be alive.
type cookieTokenVerifier struct {
	svc *Service
}

func (v *cookieTokenVerifier) Name() string { return "token-cookie" }

func (v *cookieTokenVerifier) Verify(c echo.Context) (*models.User, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoToken
	}
	return v.svc.resolveToken(cookie.Value, true)
}

// TokenCookie builds the Set-Cookie directives for an issued token.
func (s *Service) TokenCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
	}
}

// ClearTokenCookie builds the cookie that expires the token cookie.
func (s *Service) ClearTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}
