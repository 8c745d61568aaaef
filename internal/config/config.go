package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Every field maps to an
// environment variable; a .env file is honored in development.
type Config struct {
	Port       string // HTTP port to listen on
	DBPath     string // sqlite database file
	UploadDir  string // root directory for user uploads
	Secret     string // HMAC secret for token signing (never logged)
	SessionTTL int    // session and token lifetime in minutes

	RedirectSuccess string // where browser clients land after login
	RedirectFail    string // where unauthenticated browser clients are sent

	BcryptCost int

	// Optional OIDC single sign-on. Enabled when both IssuerURL and
	// ClientID are set.
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// Load reads configuration from the environment. The signing secret is
// required; everything else has a development default.
func Load() Config {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:             getenv("FILESHARE_PORT", "8080"),
		DBPath:           getenv("FILESHARE_DB_PATH", "./fileshare.db"),
		UploadDir:        getenv("FILESHARE_UPLOAD_DIR", "./uploads"),
		Secret:           must("FILESHARE_SECRET"),
		SessionTTL:       getint("FILESHARE_SESSION_TTL_MIN", 720),
		RedirectSuccess:  getenv("FILESHARE_REDIRECT_SUCCESS", "/"),
		RedirectFail:     getenv("FILESHARE_REDIRECT_FAIL", "/login"),
		BcryptCost:       getint("FILESHARE_BCRYPT_COST", 10),
		OIDCIssuerURL:    os.Getenv("FILESHARE_OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("FILESHARE_OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("FILESHARE_OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("FILESHARE_OIDC_REDIRECT_URL"),
	}
}

// OIDCEnabled reports whether single sign-on is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
