package users

import (
	"context"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// Service exposes profile operations to HTTP handlers.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a profile Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	params.Email = norm.NFC.String(params.Email)
	p, err := s.repo.Update(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "user.update")
	return p, nil
}

// Deactivate disables the account and invalidates all of its sessions.
// The caller's cookie stops resolving immediately.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, "user.deactivate")
	return nil
}

func (s *Service) recordAudit(ctx context.Context, userID, action string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "user",
		EntityID: userID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
