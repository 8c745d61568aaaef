package models

import "time"

// AuthType represents how a user authenticates
type AuthType string

const (
	AuthTypeLocal AuthType = "local" // username/password stored locally
	AuthTypeOIDC  AuthType = "oidc"  // federated via an OIDC provider
)

// User represents an account that owns uploaded files
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	AuthType     AuthType  `json:"auth_type"`
	OIDCSubject  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// PublicUser is the projection of a user that is safe to embed in a
// token payload or a response body.
type PublicUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse represents the JSON body returned to programmatic callers
// after a successful login
type LoginResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}
