package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// SessionStore manages session records on top of a Repository. It owns
// identifier generation and the expiry invariant: a read of an expired
// session deletes it and reports "not found".
type SessionStore struct {
	repo Repository
	ttl  time.Duration
}

// NewSessionStore constructs a SessionStore. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionStore(repo Repository, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{repo: repo, ttl: ttl}
}

// TTL exposes the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create persists a fresh session for the user and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess := Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.InsertSession(ctx, sess); err != nil {
		return "", fmt.Errorf("auth: create session: %w", err)
	}
	return id, nil
}

// Get resolves a session id to its user. Absent ids and expired
// sessions both return (nil, nil); an expired session is deleted on
// read. Two concurrent reads of the same expired session may both
// attempt the delete; the second is a no-op.
func (s *SessionStore) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, nil
	}
	sess, user, err := s.repo.SessionWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !time.Now().Before(sess.ExpiresAt) {
		if err := s.repo.DeleteSession(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return user, nil
}

// Delete removes a session. Unknown ids succeed silently.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}

// CleanupExpired sweeps all sessions past their expiry. Lazy expiry in
// Get keeps the store correct without it; the sweep only bounds
// storage growth.
func (s *SessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteSessionsExpiredBefore(ctx, time.Now().UTC())
}

// newSessionID returns a 256-bit random identifier, hex encoded.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
