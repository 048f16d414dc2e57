package foia

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateParams carries the fields needed to draft a FOIA request.
type CreateParams struct {
	CaseID  string
	Agency  string
	Subject string
	Body    string
}

// UpdateParams carries the mutable request fields.
type UpdateParams struct {
	Agency  string
	Subject string
	Body    string
	Status  string
}

// RepositoryPort is the storage contract for FOIA requests, scoped to
// the owning user via the parent case.
type RepositoryPort interface {
	ListByCase(ctx context.Context, caseID, userID string) ([]Request, error)
	Get(ctx context.Context, id, userID string) (*Request, error)
	Create(ctx context.Context, userID string, params CreateParams) (*Request, error)
	Update(ctx context.Context, id, userID string, params UpdateParams) (*Request, error)
	Delete(ctx context.Context, id, userID string) error
}

const requestColumns = `f.id, f.case_id, f.agency, f.subject, f.body, f.status, f.created_at`

// Repository is the PostgreSQL implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) ListByCase(ctx context.Context, caseID, userID string) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM foia_requests f
		JOIN cases c ON c.id = f.case_id
		WHERE f.case_id = $1 AND c.user_id = $2
		ORDER BY f.created_at DESC`, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("foia: list: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := scanRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("foia: scan: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id, userID string) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM foia_requests f
		JOIN cases c ON c.id = f.case_id
		WHERE f.id = $1 AND c.user_id = $2`, id, userID)

	var req Request
	if err := scanRequest(row, &req); err != nil {
		return nil, mapScanErr(err)
	}
	return &req, nil
}

func (r *Repository) Create(ctx context.Context, userID string, params CreateParams) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO foia_requests (case_id, agency, subject, body)
		SELECT c.id, $3, $4, $5
		FROM cases c
		WHERE c.id = $1 AND c.user_id = $2
		RETURNING id, case_id, agency, subject, body, status, created_at`,
		params.CaseID, userID, params.Agency, params.Subject, params.Body)

	var req Request
	if err := scanRequest(row, &req); err != nil {
		return nil, mapScanErr(err)
	}
	return &req, nil
}

func (r *Repository) Update(ctx context.Context, id, userID string, params UpdateParams) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE foia_requests f
		SET agency = $3, subject = $4, body = $5, status = $6
		FROM cases c
		WHERE f.id = $1 AND c.id = f.case_id AND c.user_id = $2
		RETURNING `+requestColumns,
		id, userID, params.Agency, params.Subject, params.Body, params.Status)

	var req Request
	if err := scanRequest(row, &req); err != nil {
		return nil, mapScanErr(err)
	}
	return &req, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM foia_requests f
		USING cases c
		WHERE f.id = $1 AND c.id = f.case_id AND c.user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("foia: delete: %w", err)
	}
	return nil
}

func scanRequest(row pgx.Row, req *Request) error {
	return row.Scan(&req.ID, &req.CaseID, &req.Agency, &req.Subject, &req.Body, &req.Status, &req.CreatedAt)
}

func mapScanErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("foia: query: %w", err)
}
