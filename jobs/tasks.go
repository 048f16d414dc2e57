// Package jobs holds the background task definitions and the asynq
// worker plumbing.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionCleanup sweeps expired sessions from storage.
	TaskSessionCleanup = "auth:session_cleanup"
	// TaskTrialExpire moves overdue trial accounts to expired.
	TaskTrialExpire = "billing:trial_expire"
)

// NewSessionCleanupTask constructs the session sweep task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskSessionCleanup, nil)
}

// NewTrialExpireTask constructs the trial expiry task.
func NewTrialExpireTask() *asynq.Task {
	return asynq.NewTask(TaskTrialExpire, nil)
}
