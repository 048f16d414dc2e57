package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// CreateParams carries the fields needed to add a timeline event.
type CreateParams struct {
	CaseID      string
	Title       string
	Description string
	EventDate   time.Time
}

// UpdateParams carries the mutable event fields.
type UpdateParams struct {
	Title       string
	Description string
	EventDate   time.Time
}

// RepositoryPort is the storage contract for timeline events, scoped to
// the owning user via the parent case.
type RepositoryPort interface {
	ListByCase(ctx context.Context, caseID, userID string) ([]Event, error)
	Get(ctx context.Context, id, userID string) (*Event, error)
	Create(ctx context.Context, userID string, params CreateParams) (*Event, error)
	Update(ctx context.Context, id, userID string, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id, userID string) error
}

const eventColumns = `t.id, t.case_id, t.title, t.description, t.event_date, t.created_at`

// Repository is the PostgreSQL implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) ListByCase(ctx context.Context, caseID, userID string) ([]Event, error) {
	// Chronological order: the timeline reads oldest first.
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM timeline_events t
		JOIN cases c ON c.id = t.case_id
		WHERE t.case_id = $1 AND c.user_id = $2
		ORDER BY t.event_date ASC`, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("timeline: list: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := scanEvent(rows, &ev); err != nil {
			return nil, fmt.Errorf("timeline: scan: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id, userID string) (*Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM timeline_events t
		JOIN cases c ON c.id = t.case_id
		WHERE t.id = $1 AND c.user_id = $2`, id, userID)

	var ev Event
	if err := scanEvent(row, &ev); err != nil {
		return nil, mapScanErr(err)
	}
	return &ev, nil
}

func (r *Repository) Create(ctx context.Context, userID string, params CreateParams) (*Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO timeline_events (case_id, title, description, event_date)
		SELECT c.id, $3, $4, $5
		FROM cases c
		WHERE c.id = $1 AND c.user_id = $2
		RETURNING id, case_id, title, description, event_date, created_at`,
		params.CaseID, userID, params.Title, params.Description, params.EventDate)

	var ev Event
	if err := scanEvent(row, &ev); err != nil {
		return nil, mapScanErr(err)
	}
	return &ev, nil
}

func (r *Repository) Update(ctx context.Context, id, userID string, params UpdateParams) (*Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE timeline_events t
		SET title = $3, description = $4, event_date = $5
		FROM cases c
		WHERE t.id = $1 AND c.id = t.case_id AND c.user_id = $2
		RETURNING `+eventColumns,
		id, userID, params.Title, params.Description, params.EventDate)

	var ev Event
	if err := scanEvent(row, &ev); err != nil {
		return nil, mapScanErr(err)
	}
	return &ev, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM timeline_events t
		USING cases c
		WHERE t.id = $1 AND c.id = t.case_id AND c.user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("timeline: delete: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row, ev *Event) error {
	return row.Scan(&ev.ID, &ev.CaseID, &ev.Title, &ev.Description, &ev.EventDate, &ev.CreatedAt)
}

func mapScanErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("timeline: query: %w", err)
}
