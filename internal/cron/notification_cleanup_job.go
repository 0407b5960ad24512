package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

const notificationCleanupJobName = "notification_cleanup"

// NotificationCleanupJob prunes read notifications older than the configured
// retention window.
type NotificationCleanupJob struct {
	repo   notifications.Repository
	logg   *logger.Logger
	maxAge time.Duration
	now    func() time.Time
}

// NewNotificationCleanupJob builds the cleanup job.
func NewNotificationCleanupJob(repo notifications.Repository, logg *logger.Logger, maxAge time.Duration) (*NotificationCleanupJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}
	return &NotificationCleanupJob{
		repo:   repo,
		logg:   logg,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *NotificationCleanupJob) Name() string {
	return notificationCleanupJobName
}

// Run deletes read notifications past the retention cutoff.
func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.maxAge)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "notification cleanup complete")
	return nil
}
