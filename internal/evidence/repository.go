package evidence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateParams carries the fields needed to log a new evidence item.
type CreateParams struct {
	CaseID      string
	Name        string
	Description string
	FileType    string
}

// UpdateParams carries the mutable evidence fields.
type UpdateParams struct {
	Name        string
	Description string
	FileType    string
}

// RepositoryPort is the storage contract for evidence items, scoped to
// the owning user via the parent case.
type RepositoryPort interface {
	ListByCase(ctx context.Context, caseID, userID string) ([]Item, error)
	Get(ctx context.Context, id, userID string) (*Item, error)
	Create(ctx context.Context, userID string, params CreateParams) (*Item, error)
	Update(ctx context.Context, id, userID string, params UpdateParams) (*Item, error)
	Delete(ctx context.Context, id, userID string) error
}

const itemColumns = `e.id, e.case_id, e.name, e.description, e.file_type, e.created_at`

// Repository is the PostgreSQL implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) ListByCase(ctx context.Context, caseID, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM evidence e
		JOIN cases c ON c.id = e.case_id
		WHERE e.case_id = $1 AND c.user_id = $2
		ORDER BY e.created_at DESC`, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("evidence: list: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("evidence: scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id, userID string) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM evidence e
		JOIN cases c ON c.id = e.case_id
		WHERE e.id = $1 AND c.user_id = $2`, id, userID)

	var it Item
	if err := scanItem(row, &it); err != nil {
		return nil, mapScanErr(err)
	}
	return &it, nil
}

func (r *Repository) Create(ctx context.Context, userID string, params CreateParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO evidence (case_id, name, description, file_type)
		SELECT c.id, $3, $4, $5
		FROM cases c
		WHERE c.id = $1 AND c.user_id = $2
		RETURNING id, case_id, name, description, file_type, created_at`,
		params.CaseID, userID, params.Name, params.Description, params.FileType)

	var it Item
	if err := scanItem(row, &it); err != nil {
		return nil, mapScanErr(err)
	}
	return &it, nil
}

func (r *Repository) Update(ctx context.Context, id, userID string, params UpdateParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE evidence e
		SET name = $3, description = $4, file_type = $5
		FROM cases c
		WHERE e.id = $1 AND c.id = e.case_id AND c.user_id = $2
		RETURNING `+itemColumns,
		id, userID, params.Name, params.Description, params.FileType)

	var it Item
	if err := scanItem(row, &it); err != nil {
		return nil, mapScanErr(err)
	}
	return &it, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM evidence e
		USING cases c
		WHERE e.id = $1 AND c.id = e.case_id AND c.user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("evidence: delete: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(&it.ID, &it.CaseID, &it.Name, &it.Description, &it.FileType, &it.CreatedAt)
}

func mapScanErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("evidence: query: %w", err)
}
