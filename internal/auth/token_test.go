package auth

import (
	"testing"
	"time"

	"fileshare-backend/internal/models"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	user := &models.User{ID: 42, Username: "alice"}

	tok, err := IssueToken(secret, user, "sess-token", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	claims, err := ParseToken(secret, tok)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("user id mismatch: got %d want %d", claims.UserID, user.ID)
	}
	if claims.Username != "alice" {
		t.Fatalf("username mismatch: got %q", claims.Username)
	}
	if claims.SessionToken != "sess-token" {
		t.Fatalf("session token mismatch: got %q", claims.SessionToken)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("expected a future expiry, got %v", claims.ExpiresAt)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: 1, Username: "u1"}
	tok, err := IssueToken("secret", user, "s", -1*time.Second)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	if _, err := ParseToken("secret", tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: 2, Username: "u2"}
	tok, err := IssueToken("right-secret", user, "s", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	if _, err := ParseToken("wrong-secret", tok); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("k", "not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
