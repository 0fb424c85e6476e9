// Package auth resolves bearer tokens for the provider configuration
// service and injects them into outgoing requests.
//
// Tokens come from the OS keyring when one was stored (envforge login
// stores one there), otherwise from an OAuth2 client-credentials flow
// when the user configured client id/secret. JWT tokens are inspected
// for expiry before use so a stale keyring token triggers a refresh
// instead of a 401.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Token is a bearer token with optional expiry metadata.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token is past its expiry, with a small
// clock-skew margin. Tokens without expiry metadata never expire here;
// the service is the authority for those.
func (t *Token) Expired() bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt.Add(-30 * time.Second))
}

// TokenStorage persists tokens between invocations.
type TokenStorage interface {
	SaveToken(ctx context.Context, token *Token) error
	LoadToken(ctx context.Context) (*Token, error)
	DeleteToken(ctx context.Context) error
}

// Config configures the Manager.
type Config struct {
	// Storage is where tokens are persisted. Required.
	Storage TokenStorage
	// TokenURL, ClientID and ClientSecret enable client-credentials
	// refresh when all are set.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Manager resolves a valid token, refreshing and persisting as needed.
type Manager struct {
	storage  TokenStorage
	ccConfig *clientcredentials.Config

	mu     sync.Mutex
	cached *Token
}

// NewManager creates an auth manager.
func NewManager(config *Config) (*Manager, error) {
	if config == nil || config.Storage == nil {
		return nil, fmt.Errorf("token storage is required")
	}

	m := &Manager{storage: config.Storage}

	if config.TokenURL != "" && config.ClientID != "" {
		m.ccConfig = &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			Scopes:       config.Scopes,
		}
	}

	return m, nil
}

// GetToken returns a valid token, consulting the in-memory cache, then
// the keyring, then the client-credentials flow.
func (m *Manager) GetToken(ctx context.Context) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cached.Expired() {
		return m.cached, nil
	}

	if token, err := m.storage.LoadToken(ctx); err == nil {
		hydrateExpiry(token)
		if !token.Expired() {
			m.cached = token
			return token, nil
		}
	}

	if m.ccConfig == nil {
		return nil, fmt.Errorf("no valid token available: run login or configure client credentials")
	}

	oauthToken, err := m.ccConfig.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}

	token := &Token{
		AccessToken: oauthToken.AccessToken,
		ExpiresAt:   oauthToken.Expiry,
	}
	hydrateExpiry(token)

	if err := m.storage.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	m.cached = token
	return token, nil
}

// SetToken stores a user-supplied token (envforge login).
func (m *Manager) SetToken(ctx context.Context, accessToken string) error {
	token := &Token{AccessToken: accessToken}
	hydrateExpiry(token)

	if token.Expired() {
		return fmt.Errorf("token is already expired")
	}

	if err := m.storage.SaveToken(ctx, token); err != nil {
		return err
	}

	m.mu.Lock()
	m.cached = token
	m.mu.Unlock()
	return nil
}

// ClearToken removes the stored token.
func (m *Manager) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
	return m.storage.DeleteToken(ctx)
}

// hydrateExpiry fills in ExpiresAt from JWT claims when the token is a
// JWT and no expiry was recorded.
func hydrateExpiry(token *Token) {
	if token == nil || token.AccessToken == "" || !token.ExpiresAt.IsZero() {
		return
	}
	if claims, err := ParseJWT(token.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		token.ExpiresAt = claims.ExpiresAt
	}
}

// Transport is an http.RoundTripper that injects Authorization headers.
type Transport struct {
	// Manager resolves the token per request.
	Manager *Manager
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Manager.GetToken(req.Context())
	if err != nil {
		return nil, err
	}

	// Per RoundTripper contract, the request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token.AccessToken)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
