package cases

import (
	"context"
	"log/slog"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// Service handles case business logic.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance. The audit logger may be nil.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns all cases owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]Case, error) {
	return s.repo.List(ctx, userID)
}

// Get fetches one case owned by the user.
func (s *Service) Get(ctx context.Context, id, userID string) (*Case, error) {
	return s.repo.Get(ctx, id, userID)
}

// Create opens a new case for the user.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Case, error) {
	c, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, params.UserID, "case.create", c.ID)
	return c, nil
}

// Update rewrites the mutable fields of an owned case.
func (s *Service) Update(ctx context.Context, id, userID string, params UpdateParams) (*Case, error) {
	if params.Status == "" {
		params.Status = StatusOpen
	}
	c, err := s.repo.Update(ctx, id, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "case.update", c.ID)
	return c, nil
}

// Delete removes a case and, via cascade, its documents, evidence,
// timeline events and FOIA requests.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, "case.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, caseID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "case",
		EntityID: caseID,
	}); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
