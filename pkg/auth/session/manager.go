package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/characters-analyzer/backend/pkg/auth"
	"github.com/characters-analyzer/backend/pkg/config"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// refreshStore persists the single refresh token a user may hold.
type refreshStore interface {
	UpdateRefreshToken(ctx context.Context, username string, token *string) error
	SwapRefreshToken(ctx context.Context, username, expected, next string) (bool, error)
}

// Manager mints token pairs and keeps the user's stored refresh token in step.
// Issuing a new pair overwrites the previous refresh token, so at most one
// refresh token per user is ever accepted.
type Manager struct {
	store refreshStore
	cfg   config.JWTConfig
	now   func() time.Time
}

// NewManager constructs a session manager backed by the provided store.
func NewManager(store refreshStore, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("refresh store is required")
	}
	if cfg.RefreshTokenTTL() <= cfg.AccessTokenTTL() {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", cfg.RefreshTokenTTL(), cfg.AccessTokenTTL())
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}, nil
}

// Issue mints a fresh pair for username and persists the refresh token.
func (m *Manager) Issue(ctx context.Context, username string) (auth.TokenPair, error) {
	if strings.TrimSpace(username) == "" {
		return auth.TokenPair{}, fmt.Errorf("username is required")
	}
	pair, err := auth.IssuePair(m.cfg, m.now(), username)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := m.store.UpdateRefreshToken(ctx, username, &pair.RefreshToken); err != nil {
		return auth.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Rotate exchanges the presented refresh token for a new pair. The swap is
// conditional on the stored token still being presented, so concurrent
// rotations of one token yield exactly one winner; the rest get
// ErrInvalidRefreshToken.
func (m *Manager) Rotate(ctx context.Context, username, presented string) (auth.TokenPair, error) {
	if strings.TrimSpace(username) == "" || presented == "" {
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}
	pair, err := auth.IssuePair(m.cfg, m.now(), username)
	if err != nil {
		return auth.TokenPair{}, err
	}
	swapped, err := m.store.SwapRefreshToken(ctx, username, presented, pair.RefreshToken)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("swap refresh token: %w", err)
	}
	if !swapped {
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}
	return pair, nil
}

// Validate checks a presented refresh token against the one on record.
func (m *Manager) Validate(_ context.Context, stored *string, presented string) error {
	if stored == nil || *stored == "" || presented == "" {
		return ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) != 1 {
		return ErrInvalidRefreshToken
	}
	return nil
}

// Revoke clears the stored refresh token so no refresh succeeds until the next sign-in.
func (m *Manager) Revoke(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	return m.store.UpdateRefreshToken(ctx, username, nil)
}
