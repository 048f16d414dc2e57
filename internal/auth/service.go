package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// Service composes the credential hasher and session store into the
// register/login/logout/identity flow. It holds no state of its own.
type Service struct {
	repo     Repository
	sessions *SessionStore
	audit    shared.AuditRecorder
	logger   *slog.Logger
}

// NewService constructs a Service. The audit logger may be nil.
func NewService(repo Repository, sessions *SessionStore, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sessions: sessions, audit: audit, logger: logger}
}

// Sessions exposes the underlying session store for the worker sweep.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// RegisterParams collects registration input, already validated at the
// route boundary.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a user with a 14-day trial and an initial session.
// Collisions report the username before the email when both collide.
// The database unique constraints remain the authority against
// concurrent duplicate registrations; the pre-check only fixes error
// ordering.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, string, error) {
	username := norm.NFC.String(params.Username)
	email := norm.NFC.String(params.Email)

	existing, err := s.repo.FindConflict(ctx, username, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, "", fmt.Errorf("auth: conflict check: %w", err)
	}
	if existing != nil {
		if existing.Username == username {
			return nil, "", shared.ErrUsernameTaken
		}
		return nil, "", shared.ErrEmailTaken
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		SubscriptionStatus: SubscriptionTrial,
		TrialEndsAt:        time.Now().UTC().Add(TrialPeriod),
	})
	if err != nil {
		return nil, "", err
	}

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		// The user row exists but registration is reported as failed;
		// the client retries and hits the duplicate path. Known
		// inconsistency, accepted over holding a transaction across
		// the hash.
		s.logger.Error("session create after registration", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, "", err
	}

	s.recordAudit(ctx, user.ID, "register", "user", user.ID, nil)
	return user, sessionID, nil
}

// Login authenticates by username or email and issues a fresh session.
// Unknown identifiers and wrong passwords are indistinguishable to the
// caller; the deactivation check runs before password verification.
// Existing sessions for the user stay valid.
func (s *Service) Login(ctx context.Context, identifier, password string) (*User, string, error) {
	user, err := s.repo.FindByIdentifier(ctx, norm.NFC.String(identifier))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", shared.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("auth: find user: %w", err)
	}

	if !user.IsActive {
		return nil, "", shared.ErrAccountDeactivated
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, "", shared.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", fmt.Errorf("auth: touch last login: %w", err)
	}
	user.LastLoginAt = &now

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.recordAudit(ctx, user.ID, "login", "user", user.ID, nil)
	return user, sessionID, nil
}

// Logout deletes the session. It succeeds for unknown, expired and
// empty session ids alike.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

// SessionUser resolves a session id to its user, nil when the session
// is absent or expired.
func (s *Service) SessionUser(ctx context.Context, sessionID string) (*User, error) {
	return s.sessions.Get(ctx, sessionID)
}

// UserByID fetches a user record by primary key.
func (s *Service) UserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
