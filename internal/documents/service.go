package documents

import (
	"context"
	"log/slog"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// Service exposes document operations to HTTP handlers and the AI layer.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a document Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListByCase(ctx context.Context, caseID, userID string) ([]Document, error) {
	return s.repo.ListByCase(ctx, caseID, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Document, error) {
	return s.repo.Get(ctx, id, userID)
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Document, error) {
	d, err := s.repo.Create(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "document.create", d.ID)
	return d, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, params UpdateParams) (*Document, error) {
	return s.repo.Update(ctx, id, userID, params)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, "document.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, userID, action, entityID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "document",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
