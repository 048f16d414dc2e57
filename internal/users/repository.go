package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/platform/db"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// UpdateParams carries the profile fields a user may edit.
type UpdateParams struct {
	Email     string
	FirstName string
	LastName  string
}

// RepositoryPort is the storage contract for profile management.
type RepositoryPort interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error)
	Deactivate(ctx context.Context, userID string) error
}

const profileColumns = `id, username, email, first_name, last_name,
	subscription_status, trial_ends_at, is_active, last_login_at,
	created_at, updated_at`

// Repository is the PostgreSQL implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, userID)
	return scanProfile(row)
}

func (r *Repository) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		userID, params.Email, params.FirstName, params.LastName)
	p, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return p, nil
}

// Deactivate flips the account off and revokes every live session in
// one transaction.
func (r *Repository) Deactivate(ctx context.Context, userID string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET is_active = false, updated_at = NOW() WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("users: deactivate: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("users: revoke sessions: %w", err)
		}
		return nil
	})
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.FirstName, &p.LastName,
		&p.SubscriptionStatus, &p.TrialEndsAt, &p.IsActive, &p.LastLoginAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: query: %w", err)
	}
	return &p, nil
}
