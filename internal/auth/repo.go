package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateUserParams collects the fields persisted at registration.
type CreateUserParams struct {
	Username           string
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	SubscriptionStatus string
	TrialEndsAt        time.Time
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindConflict(ctx context.Context, username, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	InsertSession(ctx context.Context, sess Session) error
	SessionWithUser(ctx context.Context, id string) (*Session, *User, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const userColumns = `id, username, email, password_hash, first_name, last_name, subscription_status, trial_ends_at, is_active, last_login_at, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateUser inserts a new user. The unique constraints on username and
// email are the authority for registration conflicts; a concurrent
// duplicate that slips past the service pre-check is rejected here.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, subscription_status, trial_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		params.Username, params.Email, params.PasswordHash,
		params.FirstName, params.LastName, params.SubscriptionStatus, params.TrialEndsAt.UTC())

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, shared.ErrUsernameTaken
			}
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// FindByIdentifier fetches a user whose username or email equals the
// identifier. Matching is exact and case-sensitive.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identifier)
	return handleUserScan(row)
}

// FindConflict fetches any user colliding with the given username or
// email, for the registration pre-check.
func (r *PGRepository) FindConflict(ctx context.Context, username, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 LIMIT 1`, username, email)
	return handleUserScan(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return handleUserScan(row)
}

// TouchLastLogin records a successful login.
func (r *PGRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`, id, at.UTC())
	return err
}

// InsertSession persists a new session row.
func (r *PGRepository) InsertSession(ctx context.Context, sess Session) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC())
	return err
}

// SessionWithUser fetches a session joined with its owning user.
func (r *PGRepository) SessionWithUser(ctx context.Context, id string) (*Session, *User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.created_at, s.expires_at,
		       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
		       u.subscription_status, u.trial_ends_at, u.is_active, u.last_login_at, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`, id)

	var sess Session
	var user User
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt,
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.SubscriptionStatus, &user.TrialEndsAt, &user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}
	return &sess, &user, nil
}

// DeleteSession removes a session row. Deleting an absent id is a no-op.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteSessionsExpiredBefore sweeps sessions whose expiry has passed.
func (r *PGRepository) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.SubscriptionStatus, &user.TrialEndsAt, &user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func handleUserScan(row pgx.Row) (*User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
