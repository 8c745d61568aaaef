package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fileshare-backend/internal/models"
)

var (
	ErrNoToken      = errors.New("no auth token")
	ErrInvalidToken = errors.New("invalid token")
)

// CookieName is the cookie carrying the signed auth token.
const CookieName = "jwt"

// Claims is the payload of an issued auth token. Only the user id is
// trusted at verification time; the username is a convenience for clients
// and SessionToken binds cookie-borne tokens to the server-side session.
type Claims struct {
	UserID       int64  `json:"id"`
	Username     string `json:"name"`
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// IssueToken builds and signs an HS256 token for a verified user. The
// expiry matches the lifetime of the session the token is bound to.
func IssueToken(secret string, user *models.User, sessionToken string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:       user.ID,
		Username:     user.Username,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a raw token and returns
// its claims. Any parse or validation failure is reported as
// ErrInvalidToken; the underlying detail never reaches a client.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
