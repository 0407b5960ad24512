package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/metrics"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

// destinationLocker is the slice of the trips service the monitor needs to
// apply a destination lock with system authority.
type destinationLocker interface {
	ApplyDestinationLock(ctx context.Context, tripID, proposalID uuid.UUID, title string, actorID *uuid.UUID) error
}

// Service is the voting monitor. Resolve runs one evaluation pass for a trip
// and applies the auto-lock action when the engine says it should fire.
type Service interface {
	Resolve(ctx context.Context, tripID uuid.UUID, trigger string) error
}

type service struct {
	client    *db.Client
	trips     trips.Repository
	locker    destinationLocker
	proposals proposals.Repository
	members   memberships.Repository
	messages  messages.Service
	outbox    *outbox.Service
	metrics   *metrics.VotingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the voting monitor dependencies.
func NewService(
	client *db.Client,
	tripRepo trips.Repository,
	locker destinationLocker,
	proposalRepo proposals.Repository,
	memberRepo memberships.Repository,
	messageSvc messages.Service,
	outboxSvc *outbox.Service,
	votingMetrics *metrics.VotingMetrics,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if tripRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "trips repository required")
	}
	if locker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "destination locker required")
	}
	if proposalRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proposals repository required")
	}
	if memberRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if messageSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages service required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client:    client,
		trips:     tripRepo,
		locker:    locker,
		proposals: proposalRepo,
		members:   memberRepo,
		messages:  messageSvc,
		outbox:    outboxSvc,
		metrics:   votingMetrics,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Resolve re-evaluates the trip's active voting category. It is safe to call
// on every relevant state change; the engine's guard and the guarded store
// writes make duplicate or racing invocations harmless.
func (s *service) Resolve(ctx context.Context, tripID uuid.UUID, trigger string) error {
	s.metrics.IncResolution(trigger)
	logCtx := s.logg.WithTripID(ctx, tripID.String())

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get trip")
	}
	if trip == nil {
		return nil
	}

	var deadline *time.Time
	var isDestination bool
	switch trip.Phase {
	case enums.TripPhaseDestination:
		if trip.LockedDestinationID != nil {
			return nil
		}
		deadline = trip.DestinationVotingDeadline
		isDestination = true
	case enums.TripPhaseItinerary:
		deadline = trip.ItineraryVotingDeadline
	default:
		return nil
	}

	candidates, err := s.proposals.ListByTrip(ctx, tripID, isDestination)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	roster, err := s.members.ListActiveByTrip(ctx, tripID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	memberIDs := make([]uuid.UUID, 0, len(roster))
	for _, member := range roster {
		memberIDs = append(memberIDs, member.UserID)
	}

	outcome := Evaluate(Snapshot{
		Phase:               trip.Phase,
		LockedDestinationID: trip.LockedDestinationID,
		Proposals:           candidates,
		ActiveMemberIDs:     memberIDs,
		Deadline:            deadline,
		Now:                 s.now(),
	})

	if outcome.Skipped || !outcome.ShouldAutoLock {
		s.logg.Debug(logCtx, "voting resolution pass complete, no action")
		return nil
	}

	winner := outcome.Winner
	if trip.Phase == enums.TripPhaseDestination {
		err := s.locker.ApplyDestinationLock(ctx, tripID, winner.ID, winner.Title, nil)
		if err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeStateConflict {
				// A concurrent pass locked first. The work is done either way.
				s.metrics.IncLostRace()
				s.logg.Info(logCtx, "destination lock race lost, skipping")
				return nil
			}
			return err
		}
		s.metrics.IncAutoLock(string(enums.TripPhaseDestination))
		s.logg.Info(s.logg.WithField(logCtx, "proposal_id", winner.ID.String()), "destination auto-locked")
		return nil
	}

	if err := s.includeItineraryWinner(ctx, tripID, winner.ID, winner.Title); err != nil {
		return err
	}
	s.metrics.IncAutoLock(string(enums.TripPhaseItinerary))
	s.logg.Info(s.logg.WithField(logCtx, "proposal_id", winner.ID.String()), "itinerary item auto-included")
	return nil
}

// includeItineraryWinner marks the winning itinerary item as part of the plan.
// No phase advance and no destination mutation; itinerary items accumulate.
func (s *service) includeItineraryWinner(ctx context.Context, tripID, proposalID uuid.UUID, title string) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.proposals.WithTx(tx).MarkIncluded(ctx, proposalID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proposal included")
		}
		if err := s.messages.PostSystemTx(ctx, tx, tripID, fmt.Sprintf("Itinerary item locked in: %s.", title)); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventItineraryItemLocked,
			AggregateType: enums.AggregateProposal,
			AggregateID:   proposalID,
			TripID:        tripID,
			Data: map[string]any{
				"proposalId": proposalID.String(),
				"title":      title,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit itinerary item locked")
		}
		return nil
	})
}
