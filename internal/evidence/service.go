package evidence

import (
	"context"
	"log/slog"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// Service exposes evidence operations to HTTP handlers and the AI layer.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds an evidence Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListByCase(ctx context.Context, caseID, userID string) ([]Item, error) {
	return s.repo.ListByCase(ctx, caseID, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Item, error) {
	return s.repo.Get(ctx, id, userID)
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Item, error) {
	it, err := s.repo.Create(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "evidence.create", it.ID)
	return it, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, params UpdateParams) (*Item, error) {
	return s.repo.Update(ctx, id, userID, params)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, "evidence.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, userID, action, entityID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "evidence",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
