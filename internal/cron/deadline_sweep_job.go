package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/internal/voting"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

const deadlineSweepJobName = "voting_deadline_sweep"

// DeadlineSweepJob is the safety net behind the worker's one-shot deadline
// timers: it finds trips whose voting deadline passed without resolving, e.g.
// because the worker restarted and dropped its timers, and re-runs resolution
// for each.
type DeadlineSweepJob struct {
	trips  trips.Repository
	voting voting.Service
	logg   *logger.Logger
	now    func() time.Time
}

// NewDeadlineSweepJob builds the sweep job.
func NewDeadlineSweepJob(tripRepo trips.Repository, votingSvc voting.Service, logg *logger.Logger) (*DeadlineSweepJob, error) {
	if tripRepo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if votingSvc == nil {
		return nil, fmt.Errorf("voting service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &DeadlineSweepJob{
		trips:  tripRepo,
		voting: votingSvc,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *DeadlineSweepJob) Name() string {
	return deadlineSweepJobName
}

// Run resolves every trip with a passed, unresolved voting deadline.
func (j *DeadlineSweepJob) Run(ctx context.Context) error {
	candidates, err := j.trips.ListDeadlineCandidates(ctx, j.now())
	if err != nil {
		return fmt.Errorf("list deadline candidates: %w", err)
	}
	if len(candidates) == 0 {
		j.logg.Info(ctx, "no overdue voting deadlines")
		return nil
	}

	var errs error
	resolved := 0
	for _, trip := range candidates {
		if err := j.voting.Resolve(ctx, trip.ID, "sweep"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("trip %s: %w", trip.ID, err))
			continue
		}
		resolved++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"resolved":   resolved,
	})
	j.logg.Info(logCtx, "deadline sweep complete")
	return errs
}
