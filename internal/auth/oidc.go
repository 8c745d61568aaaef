package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig configures the optional single sign-on login strategy.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OIDCClient wraps the go-oidc provider for OIDC authentication
type OIDCClient struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// OIDCIdentity is the subset of ID token claims the user store needs.
type OIDCIdentity struct {
	Subject     string
	Username    string
	DisplayName string
}

// NewOIDCClient initializes an OIDC provider client
func NewOIDCClient(ctx context.Context, cfg OIDCConfig) (*OIDCClient, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	return &OIDCClient{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
	}, nil
}

// AuthURL generates the authorization URL for OIDC login
func (c *OIDCClient) AuthURL(state string) string {
	return c.oauth2Config.AuthCodeURL(state)
}

// Exchange exchanges an authorization code and verifies the returned ID
// token in one step.
func (c *OIDCClient) Exchange(ctx context.Context, code string) (*OIDCIdentity, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := c.oauth2Config.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in token response")
	}

	idToken, err := c.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	return identityFromToken(idToken)
}

func identityFromToken(idToken *oidc.IDToken) (*OIDCIdentity, error) {
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	id := &OIDCIdentity{Subject: idToken.Subject}

	if username, ok := claims["preferred_username"].(string); ok {
		id.Username = username
	} else if email, ok := claims["email"].(string); ok {
		id.Username = email
	} else {
		id.Username = idToken.Subject
	}

	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	} else {
		id.DisplayName = id.Username
	}

	return id, nil
}

// NewState generates a random state parameter for the OAuth2 flow
func NewState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
