package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/casebuddy/casebuddy/internal/auth"
)

// SessionCleanupJob sweeps expired sessions. Reads already treat an
// expired session as absent; the sweep just keeps the table small.
type SessionCleanupJob struct {
	sessions *auth.SessionStore
	logger   *slog.Logger
}

// NewSessionCleanupJob constructs the sweep job.
func NewSessionCleanupJob(sessions *auth.SessionStore, logger *slog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, logger: logger}
}

// Handle processes TaskSessionCleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	removed, err := j.sessions.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("expired sessions swept", slog.Int64("removed", removed))
	}
	return nil
}
