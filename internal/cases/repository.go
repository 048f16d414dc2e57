package cases

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateParams collects the fields persisted on case creation.
type CreateParams struct {
	UserID      string
	Title       string
	Description string
}

// UpdateParams collects mutable case fields.
type UpdateParams struct {
	Title       string
	Description string
	Status      string
}

// RepositoryPort defines data access for cases. All reads are scoped to
// the owning user.
type RepositoryPort interface {
	List(ctx context.Context, userID string) ([]Case, error)
	Get(ctx context.Context, id, userID string) (*Case, error)
	Create(ctx context.Context, params CreateParams) (*Case, error)
	Update(ctx context.Context, id, userID string, params UpdateParams) (*Case, error)
	Delete(ctx context.Context, id, userID string) error
}

const caseColumns = `id, user_id, title, description, status, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the user's cases, newest first.
func (r *Repository) List(ctx context.Context, userID string) ([]Case, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+caseColumns+` FROM cases WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Get fetches a single case owned by the user.
func (r *Repository) Get(ctx context.Context, id, userID string) (*Case, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1 AND user_id = $2`, id, userID)
	return scanCase(row)
}

// Create inserts a new case.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Case, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cases (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING `+caseColumns,
		params.UserID, params.Title, params.Description)
	return scanCase(row)
}

// Update rewrites the mutable fields of an owned case.
func (r *Repository) Update(ctx context.Context, id, userID string, params UpdateParams) (*Case, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE cases SET title = $3, description = $4, status = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+caseColumns,
		id, userID, params.Title, params.Description, params.Status)
	return scanCase(row)
}

// Delete removes an owned case; children go with it via FK cascade.
// Deleting an absent case is a no-op.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ RepositoryPort = (*Repository)(nil)
