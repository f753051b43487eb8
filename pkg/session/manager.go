package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/pkg/clock"
)

// Config holds session settings.
type Config struct {
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"` // TTL is the session lifetime from creation.
}

// Store persists sessions keyed by token.
type Store interface {
	// Save stores a session for the given TTL.
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	// Get retrieves a session by token. Returns ErrSessionNotFound when the
	// token is unknown or has expired out of the store.
	Get(ctx context.Context, token string) (*Session, error)
	// Delete removes a session by token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}

// Manager issues and validates bearer-token sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	clock clock.Clock
}

// NewManager creates a session manager. Panics on nil store to fail fast
// during initialization.
func NewManager(store Store, cfg Config, clk clock.Clock) *Manager {
	if store == nil {
		panic("session: Store is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl, clock: clk}
}

// Create issues a new session for the user/cabinet pair.
func (m *Manager) Create(ctx context.Context, userID, cabinetID uuid.UUID) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreateSession, err)
	}

	now := m.clock.Now()
	s := &Session{
		Token:     token,
		UserID:    userID,
		CabinetID: cabinetID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, errors.Join(ErrFailedToCreateSession, err)
	}
	return s, nil
}

// Validate resolves a token to a live session. Expired sessions are deleted
// eagerly and reported as not found.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.clock.Now()) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Destroy invalidates a session token. Idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
