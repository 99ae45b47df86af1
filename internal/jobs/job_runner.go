package jobs

import (
	"context"
	"time"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/service"
)

const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reminders service.ReminderService
	config    *config.Config
	timeout   time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(reminders service.ReminderService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		reminders: reminders,
		config:    cfg,
		timeout:   defaultJobTimeout,
	}
}

// Config returns the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) (int, error)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	count, err := jobFunc(ctx)
	if err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName, "count", count, "duration", time.Since(start))
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.FlagOverdueRentals()
	jr.SendReturnReminders()
	jr.SendPickupReminders()
}
