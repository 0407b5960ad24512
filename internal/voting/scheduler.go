package voting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

const triggerDeadline = "deadline"

// Scheduler holds one deferred deadline check per trip so a fully-voted group
// is resolved right at the deadline boundary instead of waiting for the next
// reactive trigger. Timers fire a small buffer after the deadline instant so
// the check lands just past the boundary.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[uuid.UUID]*time.Timer
	buffer   time.Duration
	resolver Service
	logg     *logger.Logger
	clock    func() time.Time
	stopped  bool
}

// NewScheduler wires the deadline scheduler.
func NewScheduler(cfg config.VotingConfig, resolver Service, logg *logger.Logger) (*Scheduler, error) {
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "voting service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Scheduler{
		timers:   make(map[uuid.UUID]*time.Timer),
		buffer:   cfg.DeadlineBuffer,
		resolver: resolver,
		logg:     logg,
		clock:    time.Now,
	}, nil
}

// Schedule arms (or re-arms) the one-shot check for a trip. A deadline
// already in the past fires immediately.
func (s *Scheduler) Schedule(ctx context.Context, tripID uuid.UUID, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if existing, ok := s.timers[tripID]; ok {
		existing.Stop()
		delete(s.timers, tripID)
	}

	delay := deadline.Sub(s.clock()) + s.buffer
	if delay < 0 {
		delay = 0
	}

	logCtx := s.logg.WithTripID(ctx, tripID.String())
	s.logg.Info(s.logg.WithField(logCtx, "fire_in", delay.String()), "deadline check scheduled")

	s.timers[tripID] = time.AfterFunc(delay, func() {
		s.fire(tripID)
	})
}

// Cancel drops the pending check for a trip, e.g. when its deadline is
// cleared or the voting category resolves through another path.
func (s *Scheduler) Cancel(tripID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[tripID]; ok {
		timer.Stop()
		delete(s.timers, tripID)
	}
}

// Stop cancels every pending check. Used on worker shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for tripID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, tripID)
	}
}

func (s *Scheduler) fire(tripID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, tripID)
	s.mu.Unlock()

	ctx := context.Background()
	logCtx := s.logg.WithTripID(ctx, tripID.String())
	if err := s.resolver.Resolve(ctx, tripID, triggerDeadline); err != nil {
		s.logg.Error(logCtx, "deadline resolution failed", err)
		return
	}
	s.logg.Debug(logCtx, "deadline resolution pass complete")
}
