package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// deadlineLister is the slice of the trips repository the re-arm pass reads.
type deadlineLister interface {
	ListUpcomingDeadlines(ctx context.Context, now time.Time) ([]models.Trip, error)
}

// deadlineArmer is the scheduler surface the re-arm pass writes to.
type deadlineArmer interface {
	Schedule(ctx context.Context, tripID uuid.UUID, deadline time.Time)
}

// rearmDeadlineTimers restores the one-shot deadline checks after a restart.
// Timers live only in worker memory, so without this pass a pending deadline
// would wait for the next sweep instead of firing at its boundary.
func rearmDeadlineTimers(ctx context.Context, lister deadlineLister, armer deadlineArmer, logg *logger.Logger) error {
	rows, err := lister.ListUpcomingDeadlines(ctx, time.Now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upcoming deadlines")
	}

	armed := 0
	for _, trip := range rows {
		var deadline *time.Time
		switch trip.Phase {
		case enums.TripPhaseDestination:
			deadline = trip.DestinationVotingDeadline
		case enums.TripPhaseItinerary:
			deadline = trip.ItineraryVotingDeadline
		}
		if deadline == nil {
			continue
		}
		armer.Schedule(ctx, trip.ID, *deadline)
		armed++
	}

	logg.Info(logg.WithField(ctx, "count", armed), "deadline timers re-armed")
	return nil
}
