package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
)

const DeadlineNotificationsJob = "deadline_notifications"

// DeadlineJobs contains deadline-related cron jobs
type DeadlineJobs struct {
	deadlineService deadline.DeadlineService
	interval        time.Duration
}

// NewDeadlineJobs creates deadline cron jobs
func NewDeadlineJobs(deadlineService deadline.DeadlineService, interval time.Duration) *DeadlineJobs {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DeadlineJobs{
		deadlineService: deadlineService,
		interval:        interval,
	}
}

// RegisterJobs registers all deadline-related cron jobs
func (j *DeadlineJobs) RegisterJobs(scheduler *Scheduler) {
	// Reminders and expiry notices are idempotent, so the sweep can run as
	// often as configured.
	scheduler.AddJob(
		DeadlineNotificationsJob,
		j.interval,
		30*time.Minute,
		j.SendDeadlineNotifications,
	)
}

// SendDeadlineNotifications checks every open review against its deadline
func (j *DeadlineJobs) SendDeadlineNotifications(ctx context.Context) error {
	result, err := j.deadlineService.Sweep(ctx)
	if err != nil {
		return err
	}
	slog.Info("Deadline sweep finished",
		"checked", result.Checked,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return nil
}
