package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownSession signals a token that is absent, expired or invalidated.
var ErrUnknownSession = errors.New("unknown session")

// Session is an ephemeral server-side identity. It starts anonymous: Begin
// hands out a write-capable user id before any username exists, and Claim is
// the only place that binds a registered account to that identity.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Claimed   bool      `json:"claimed"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store defines how sessions are persisted. Implementations must remain
// stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, token string) error
}

// Manager implements the two-phase identity lifecycle over a Store.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Begin creates an anonymous session: an identity that can own documents
// before a username/password pair has been chosen.
func (m *Manager) Begin(ctx context.Context) (Session, error) {
	s := Session{
		Token:     uuid.NewString(),
		UserID:    uuid.NewString(),
		Claimed:   false,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Claim binds a registered account to the anonymous session behind token.
func (m *Manager) Claim(ctx context.Context, token string) (Session, error) {
	s, err := m.Resolve(ctx, token)
	if err != nil {
		return Session{}, err
	}
	s.Claimed = true
	s.ExpiresAt = time.Now().Add(m.ttl)
	if err := m.store.Update(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Issue creates a claimed session for an already-registered user (login).
func (m *Manager) Issue(ctx context.Context, userID string) (Session, error) {
	s := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Claimed:   true,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Resolve validates a token and returns the live session behind it.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnknownSession
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if s == nil {
		return Session{}, ErrUnknownSession
	}
	if time.Now().After(s.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrUnknownSession
	}
	return *s, nil
}

// Invalidate removes the session behind token (logout).
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
