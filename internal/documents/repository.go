package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateParams carries the fields needed to attach a document to a case.
type CreateParams struct {
	CaseID   string
	Name     string
	Content  string
	MimeType string
}

// UpdateParams carries the mutable document fields.
type UpdateParams struct {
	Name     string
	Content  string
	MimeType string
}

// RepositoryPort is the storage contract for documents. Every method is
// scoped to the owning user via the parent case.
type RepositoryPort interface {
	ListByCase(ctx context.Context, caseID, userID string) ([]Document, error)
	Get(ctx context.Context, id, userID string) (*Document, error)
	Create(ctx context.Context, userID string, params CreateParams) (*Document, error)
	Update(ctx context.Context, id, userID string, params UpdateParams) (*Document, error)
	Delete(ctx context.Context, id, userID string) error
}

const documentColumns = `d.id, d.case_id, d.name, d.content, d.mime_type, d.created_at, d.updated_at`

// Repository is the PostgreSQL implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) ListByCase(ctx context.Context, caseID, userID string) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		JOIN cases c ON c.id = d.case_id
		WHERE d.case_id = $1 AND c.user_id = $2
		ORDER BY d.created_at DESC`, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, fmt.Errorf("documents: scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id, userID string) (*Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		JOIN cases c ON c.id = d.case_id
		WHERE d.id = $1 AND c.user_id = $2`, id, userID)

	var d Document
	if err := scanDocument(row, &d); err != nil {
		return nil, mapScanErr(err)
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, userID string, params CreateParams) (*Document, error) {
	// The INSERT only succeeds when the case belongs to the user; a
	// foreign case yields zero rows and reads as not found.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (case_id, name, content, mime_type)
		SELECT c.id, $3, $4, $5
		FROM cases c
		WHERE c.id = $1 AND c.user_id = $2
		RETURNING id, case_id, name, content, mime_type, created_at, updated_at`,
		params.CaseID, userID, params.Name, params.Content, params.MimeType)

	var d Document
	if err := scanDocument(row, &d); err != nil {
		return nil, mapScanErr(err)
	}
	return &d, nil
}

func (r *Repository) Update(ctx context.Context, id, userID string, params UpdateParams) (*Document, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE documents d
		SET name = $3, content = $4, mime_type = $5, updated_at = NOW()
		FROM cases c
		WHERE d.id = $1 AND c.id = d.case_id AND c.user_id = $2
		RETURNING `+documentColumns,
		id, userID, params.Name, params.Content, params.MimeType)

	var d Document
	if err := scanDocument(row, &d); err != nil {
		return nil, mapScanErr(err)
	}
	return &d, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM documents d
		USING cases c
		WHERE d.id = $1 AND c.id = d.case_id AND c.user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("documents: delete: %w", err)
	}
	return nil
}

func scanDocument(row pgx.Row, d *Document) error {
	return row.Scan(&d.ID, &d.CaseID, &d.Name, &d.Content, &d.MimeType, &d.CreatedAt, &d.UpdatedAt)
}

func mapScanErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("documents: query: %w", err)
}
