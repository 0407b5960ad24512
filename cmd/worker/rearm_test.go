package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

type fakeDeadlineLister struct {
	rows []models.Trip
	err  error
}

func (l *fakeDeadlineLister) ListUpcomingDeadlines(ctx context.Context, now time.Time) ([]models.Trip, error) {
	return l.rows, l.err
}

type armedTimer struct {
	tripID   uuid.UUID
	deadline time.Time
}

type fakeArmer struct {
	armed []armedTimer
}

func (a *fakeArmer) Schedule(ctx context.Context, tripID uuid.UUID, deadline time.Time) {
	a.armed = append(a.armed, armedTimer{tripID: tripID, deadline: deadline})
}

func TestRearmDeadlineTimers(t *testing.T) {
	destDeadline := time.Now().Add(2 * time.Hour)
	itinDeadline := time.Now().Add(4 * time.Hour)
	staleItinDeadline := time.Now().Add(-time.Hour)

	destTrip := models.Trip{
		ID:                        uuid.New(),
		Phase:                     enums.TripPhaseDestination,
		DestinationVotingDeadline: &destDeadline,
		// A leftover itinerary deadline must not win over the active phase.
		ItineraryVotingDeadline: &staleItinDeadline,
	}
	itinTrip := models.Trip{
		ID:                      uuid.New(),
		Phase:                   enums.TripPhaseItinerary,
		ItineraryVotingDeadline: &itinDeadline,
	}
	bareTrip := models.Trip{
		ID:    uuid.New(),
		Phase: enums.TripPhaseDestination,
	}

	lister := &fakeDeadlineLister{rows: []models.Trip{destTrip, itinTrip, bareTrip}}
	armer := &fakeArmer{}
	logg := logger.New(logger.Options{ServiceName: "worker-test"})

	if err := rearmDeadlineTimers(context.Background(), lister, armer, logg); err != nil {
		t.Fatalf("rearm: %v", err)
	}

	if len(armer.armed) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(armer.armed))
	}
	byTrip := map[uuid.UUID]time.Time{}
	for _, timer := range armer.armed {
		byTrip[timer.tripID] = timer.deadline
	}
	if !byTrip[destTrip.ID].Equal(destDeadline) {
		t.Fatal("destination trip must arm with its destination deadline")
	}
	if !byTrip[itinTrip.ID].Equal(itinDeadline) {
		t.Fatal("itinerary trip must arm with its itinerary deadline")
	}
	if _, ok := byTrip[bareTrip.ID]; ok {
		t.Fatal("a trip without a deadline must not arm a timer")
	}
}

func TestRearmDeadlineTimersListError(t *testing.T) {
	lister := &fakeDeadlineLister{err: errors.New("db down")}
	armer := &fakeArmer{}
	logg := logger.New(logger.Options{ServiceName: "worker-test"})

	if err := rearmDeadlineTimers(context.Background(), lister, armer, logg); err == nil {
		t.Fatal("expected the list failure to surface")
	}
	if len(armer.armed) != 0 {
		t.Fatal("no timers may arm when the query fails")
	}
}
