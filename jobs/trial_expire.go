package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrialExpireJob moves accounts whose trial has lapsed to the expired
// subscription status.
type TrialExpireJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTrialExpireJob constructs the trial expiry job.
func NewTrialExpireJob(pool *pgxpool.Pool, logger *slog.Logger) *TrialExpireJob {
	return &TrialExpireJob{pool: pool, logger: logger}
}

// Handle processes TaskTrialExpire tasks.
func (j *TrialExpireJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tag, err := j.pool.Exec(ctx, `
		UPDATE users
		SET subscription_status = 'expired', updated_at = NOW()
		WHERE subscription_status = 'trial' AND trial_ends_at < NOW()`)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("trials expired", slog.Int64("count", tag.RowsAffected()))
	}
	return nil
}
