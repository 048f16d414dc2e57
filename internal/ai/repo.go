package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// RepositoryPort persists completion results. Ownership checks happen
// in the service before any of these run.
type RepositoryPort interface {
	InsertDocumentAnalysis(ctx context.Context, a *DocumentAnalysis) error
	LatestDocumentAnalysis(ctx context.Context, documentID string) (*DocumentAnalysis, error)
	InsertEvidenceClassification(ctx context.Context, c *EvidenceClassification) error
	InsertTimelineAnalysis(ctx context.Context, a *TimelineAnalysis) error
	InsertResearch(ctx context.Context, r *ResearchResult) error
}

// PGRepository is the PostgreSQL implementation of RepositoryPort.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository over the given pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ RepositoryPort = (*PGRepository)(nil)

func (r *PGRepository) InsertDocumentAnalysis(ctx context.Context, a *DocumentAnalysis) error {
	entities, err := json.Marshal(a.Entities)
	if err != nil {
		return fmt.Errorf("ai: encode entities: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO document_analyses (document_id, summary, entities, dates, legal_issues, risks, raw_analysis)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		a.DocumentID, a.Summary, entities,
		mustJSON(a.Dates), mustJSON(a.LegalIssues), mustJSON(a.Risks), a.RawAnalysis)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("ai: insert document analysis: %w", err)
	}
	return nil
}

func (r *PGRepository) LatestDocumentAnalysis(ctx context.Context, documentID string) (*DocumentAnalysis, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, summary, entities, dates, legal_issues, risks, raw_analysis, created_at
		FROM document_analyses
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, documentID)

	var (
		a          DocumentAnalysis
		entities   []byte
		dates      []byte
		issues     []byte
		risks      []byte
	)
	err := row.Scan(&a.ID, &a.DocumentID, &a.Summary, &entities, &dates, &issues, &risks, &a.RawAnalysis, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("ai: load document analysis: %w", err)
	}
	if err := decodeJSONB(entities, &a.Entities); err != nil {
		return nil, err
	}
	if err := decodeJSONB(dates, &a.Dates); err != nil {
		return nil, err
	}
	if err := decodeJSONB(issues, &a.LegalIssues); err != nil {
		return nil, err
	}
	if err := decodeJSONB(risks, &a.Risks); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) InsertEvidenceClassification(ctx context.Context, c *EvidenceClassification) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO evidence_classifications (evidence_id, evidence_type, relevance_score, tags, sensitivity, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		c.EvidenceID, c.EvidenceType, c.RelevanceScore, mustJSON(c.Tags), c.Sensitivity, c.Description)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("ai: insert evidence classification: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertTimelineAnalysis(ctx context.Context, a *TimelineAnalysis) error {
	events, err := json.Marshal(a.Events)
	if err != nil {
		return fmt.Errorf("ai: encode events: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO timeline_analyses (case_id, events, insights, gaps, critical_periods, suggestions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		a.CaseID, events, mustJSON(a.Insights), mustJSON(a.Gaps),
		mustJSON(a.CriticalPeriods), mustJSON(a.Suggestions))
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("ai: insert timeline analysis: %w", err)
	}
	return nil
}

// InsertResearch stores the generated queries and the summary in one
// transaction so a partial research run never survives.
func (r *PGRepository) InsertResearch(ctx context.Context, res *ResearchResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ai: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO research_queries (case_id, issue, queries)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		res.CaseID, res.Issue, mustJSON(res.Queries))
	if err := row.Scan(&res.ID, &res.CreatedAt); err != nil {
		return fmt.Errorf("ai: insert research query: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO research_summaries (query_id, summary, precedents, statutes, principles, application)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.Summary, mustJSON(res.Precedents), mustJSON(res.Statutes),
		mustJSON(res.Principles), res.Application)
	if err != nil {
		return fmt.Errorf("ai: insert research summary: %w", err)
	}
	return tx.Commit(ctx)
}

func mustJSON(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	raw, _ := json.Marshal(v)
	return raw
}

func decodeJSONB(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("ai: decode stored result: %w", err)
	}
	return nil
}
