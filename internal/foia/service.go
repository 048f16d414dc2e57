package foia

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/casebuddy/casebuddy/internal/shared"
)

var agencyTitler = cases.Title(language.AmericanEnglish)

// CanonicalAgency normalizes an agency name for display and grouping:
// surrounding whitespace is trimmed and all-lowercase input gets title
// casing. Mixed-case input is kept as typed so acronyms like "FBI"
// survive.
func CanonicalAgency(name string) string {
	name = strings.TrimSpace(name)
	if name == strings.ToLower(name) {
		return agencyTitler.String(name)
	}
	return name
}

// TemplateForCategory builds a drafting template for a records
// category. The category is canonicalized the same way agency names
// are.
func TemplateForCategory(category string) Template {
	category = CanonicalAgency(category)
	return Template{
		Category:        category,
		SubjectTemplate: fmt.Sprintf("FOIA Request: [Specific Information] from %s", category),
		BodyTemplate: fmt.Sprintf("I am requesting the following records under the Freedom of Information Act:\n\n"+
			"[Detailed description of records]\n\n"+
			"The requested documents are related to %s and fall within the scope of FOIA.", category),
		SuggestedAttachments: []string{
			"Proof of identity",
			"Fee waiver request (if applicable)",
		},
		RecommendedAgencies: []string{
			"Relevant federal agency",
			"Appropriate department or bureau",
		},
		Tips: []string{
			"Include specific dates or time periods for records",
			"Be precise about the type of documents sought",
			"Consider requesting expedited processing if applicable",
		},
	}
}

// Service exposes FOIA request operations to HTTP handlers and the AI
// layer.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a FOIA Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListByCase(ctx context.Context, caseID, userID string) ([]Request, error) {
	return s.repo.ListByCase(ctx, caseID, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Request, error) {
	return s.repo.Get(ctx, id, userID)
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Request, error) {
	params.Agency = CanonicalAgency(params.Agency)
	req, err := s.repo.Create(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "foia.create", req.ID)
	return req, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, params UpdateParams) (*Request, error) {
	params.Agency = CanonicalAgency(params.Agency)
	if params.Status == "" {
		params.Status = StatusDraft
	}
	req, err := s.repo.Update(ctx, id, userID, params)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, userID, "foia.update", req.ID)
	return req, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, "foia.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, userID, action, entityID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "foia_request",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
