package trips

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

// txRunner is the transactional slice of the db client the service writes
// through.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// eventEmitter is the outbox surface the service appends domain events to.
type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service governs the trip lifecycle: creation, the linear phase machine, the
// destination lock, and voting deadlines. Manual transitions are caller-gated
// on trip management rights; the voting monitor applies its lock through the
// same guarded repository writes with system authority.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Trip, error)
	Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Trip, error)
	Advance(ctx context.Context, tripID, actorID uuid.UUID) (*models.Trip, error)
	Reopen(ctx context.Context, tripID, actorID uuid.UUID) (*models.Trip, error)
	LockDestination(ctx context.Context, tripID, actorID, proposalID uuid.UUID) error
	ApplyDestinationLock(ctx context.Context, tripID, proposalID uuid.UUID, title string, actorID *uuid.UUID) error
	MarkReady(ctx context.Context, tripID, actorID uuid.UUID, input MarkReadyInput) (*models.Trip, error)
	SetDeadline(ctx context.Context, tripID, actorID uuid.UUID, input SetDeadlineInput) error
}

type service struct {
	client    txRunner
	repo      Repository
	members   memberships.Repository
	proposals proposals.Repository
	messages  messages.Service
	notifier  notifications.Service
	outbox    eventEmitter
	logg      *logger.Logger
}

// NewService wires trip dependencies.
func NewService(
	client txRunner,
	repo Repository,
	memberRepo memberships.Repository,
	proposalRepo proposals.Repository,
	messageSvc messages.Service,
	notifier notifications.Service,
	outboxSvc eventEmitter,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "trips repository required")
	}
	if memberRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if proposalRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proposals repository required")
	}
	if messageSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client:    client,
		repo:      repo,
		members:   memberRepo,
		proposals: proposalRepo,
		messages:  messageSvc,
		notifier:  notifier,
		outbox:    outboxSvc,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Trip, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip name required")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}

	trip := models.Trip{
		OwnerID:   ownerID,
		Name:      name,
		Phase:     enums.TripPhaseDestination,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &trip); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip")
		}
		owner := models.TripMembership{
			TripID: trip.ID,
			UserID: ownerID,
			Role:   enums.MemberRoleOwner,
			Status: enums.MembershipStatusActive,
		}
		if err := s.members.WithTx(tx).Create(ctx, &owner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}
		return s.messages.PostSystemTx(ctx, tx, trip.ID, fmt.Sprintf("Trip %q created. Destination voting is open.", name))
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithTripID(ctx, trip.ID.String())
	s.logg.Info(logCtx, "trip created")
	return &trip, nil
}

func (s *service) Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := s.repo.GetByID(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get trip")
	}
	if trip == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	return trip, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Trip, error) {
	ids, err := s.members.ListTripIDsForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trip ids")
	}
	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trips")
	}
	return rows, nil
}

// Advance moves the trip forward one phase. Phase-specific preconditions:
// leaving destination requires a locked destination (use LockDestination),
// leaving itinerary requires at least one included itinerary item, and
// finalize exits through MarkReady instead.
func (s *service) Advance(ctx context.Context, tripID, actorID uuid.UUID) (*models.Trip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	next, ok := trip.Phase.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip is already ready")
	}

	switch trip.Phase {
	case enums.TripPhaseDestination:
		if trip.LockedDestinationID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "lock a destination before advancing")
		}
	case enums.TripPhaseItinerary:
		count, err := s.proposals.CountIncluded(ctx, tripID, false)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count included proposals")
		}
		if count == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "include at least one itinerary item before advancing")
		}
	case enums.TripPhaseFinalize:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "use mark ready to finish the trip")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).AdvancePhaseGuarded(ctx, tripID, trip.Phase, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance phase")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip phase changed concurrently")
		}
		if err := s.messages.PostSystemTx(ctx, tx, tripID, fmt.Sprintf("Phase advanced to %s.", next)); err != nil {
			return err
		}
		return s.emitPhaseChange(ctx, tx, tripID, actorID, trip.Phase, next)
	})
	if err != nil {
		return nil, err
	}

	trip.Phase = next
	return trip, nil
}

// Reopen moves the trip back to its immediate predecessor phase. Reopening to
// destination clears the locked destination; itinerary items created since are
// retained.
func (s *service) Reopen(ctx context.Context, tripID, actorID uuid.UUID) (*models.Trip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	previous, ok := trip.Phase.Previous()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip is already at the first phase")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).ReopenPhaseGuarded(ctx, tripID, trip.Phase, previous)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen phase")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip phase changed concurrently")
		}
		body := fmt.Sprintf("Phase reopened to %s.", previous)
		if previous == enums.TripPhaseDestination {
			body = "Destination selection reopened. The locked destination has been cleared."
		}
		if err := s.messages.PostSystemTx(ctx, tx, tripID, body); err != nil {
			return err
		}
		return s.emitPhaseChange(ctx, tx, tripID, actorID, trip.Phase, previous)
	})
	if err != nil {
		return nil, err
	}

	trip.Phase = previous
	if previous == enums.TripPhaseDestination {
		trip.LockedDestinationID = nil
	}
	return trip, nil
}

// LockDestination applies a manual admin pick of the winning destination. The
// same guarded write backs the voting monitor's automatic lock.
func (s *service) LockDestination(ctx context.Context, tripID, actorID, proposalID uuid.UUID) error {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.Phase != enums.TripPhaseDestination {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "destination voting is not open")
	}
	if trip.LockedDestinationID != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "destination is already locked")
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get proposal")
	}
	if proposal == nil || proposal.TripID != tripID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}
	if !proposal.IsDestination {
		return pkgerrors.New(pkgerrors.CodeValidation, "proposal is not a destination")
	}

	return s.ApplyDestinationLock(ctx, tripID, proposalID, proposal.Title, &actorID)
}

// ApplyDestinationLock performs the lock write sequence: guarded lock/phase
// write first, then the include flag, then the system event. A lost guard is
// reported as a state conflict so callers can treat it as already handled.
func (s *service) ApplyDestinationLock(ctx context.Context, tripID, proposalID uuid.UUID, title string, actorID *uuid.UUID) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).LockDestinationGuarded(ctx, tripID, proposalID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock destination")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "destination already locked")
		}
		if _, err := s.proposals.WithTx(tx).MarkIncluded(ctx, proposalID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proposal included")
		}
		if err := s.messages.PostSystemTx(ctx, tx, tripID, fmt.Sprintf("Destination locked: %s. Itinerary voting is open.", title)); err != nil {
			return err
		}

		var actor *outbox.ActorRef
		if actorID != nil {
			actor = &outbox.ActorRef{UserID: *actorID, TripID: &tripID}
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventDestinationLocked,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			TripID:        tripID,
			Actor:         actor,
			Data: map[string]any{
				"proposalId": proposalID.String(),
				"title":      title,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit destination locked")
		}
		return nil
	})
}

// MarkReady finishes the trip: persists the confirmed dates, advances
// finalize to ready, and notifies every active member.
func (s *service) MarkReady(ctx context.Context, tripID, actorID uuid.UUID, input MarkReadyInput) (*models.Trip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Phase != enums.TripPhaseFinalize {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip is not in the finalize phase")
	}
	if input.StartDate == nil || input.EndDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmed dates required")
	}
	if input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}

	members, err := s.members.ListActiveByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.SetDatesGuarded(ctx, tripID, input.StartDate, input.EndDate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist trip dates")
		}
		affected, err := txRepo.AdvancePhaseGuarded(ctx, tripID, enums.TripPhaseFinalize, enums.TripPhaseReady)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance to ready")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip phase changed concurrently")
		}
		if err := s.messages.PostSystemTx(ctx, tx, tripID, "Trip is ready. Final dates are confirmed."); err != nil {
			return err
		}
		for _, member := range members {
			err := s.notifier.NotifyTx(ctx, tx, notifications.NotifyInput{
				UserID:  member.UserID,
				TripID:  &tripID,
				Type:    enums.NotificationTypeTripReady,
				Title:   "Trip ready",
				Message: fmt.Sprintf("%s is ready to go.", trip.Name),
			})
			if err != nil {
				return err
			}
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventTripReady,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			TripID:        tripID,
			Actor:         &outbox.ActorRef{UserID: actorID, TripID: &tripID},
			Data: map[string]any{
				"startDate": input.StartDate.Format(time.DateOnly),
				"endDate":   input.EndDate.Format(time.DateOnly),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit trip ready")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	trip.Phase = enums.TripPhaseReady
	trip.StartDate = input.StartDate
	trip.EndDate = input.EndDate
	return trip, nil
}

// SetDeadline sets or clears the voting deadline for the trip's active phase.
func (s *service) SetDeadline(ctx context.Context, tripID, actorID uuid.UUID, input SetDeadlineInput) error {
	phase, err := enums.ParseTripPhase(input.Phase)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "phase must be destination or itinerary")
	}
	if phase != enums.TripPhaseDestination && phase != enums.TripPhaseItinerary {
		return pkgerrors.New(pkgerrors.CodeValidation, "phase must be destination or itinerary")
	}
	if input.Deadline != nil && input.Deadline.Before(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "deadline must be in the future")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).SetDeadlineGuarded(ctx, tripID, phase, input.Deadline)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set deadline")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip is not in that phase")
		}

		// Null, not empty string, so consumers can decode into *time.Time.
		var deadline any
		if input.Deadline != nil {
			deadline = input.Deadline.UTC().Format(time.RFC3339)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventDeadlineChanged,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			TripID:        tripID,
			Actor:         &outbox.ActorRef{UserID: actorID, TripID: &tripID},
			Data: map[string]any{
				"phase":    string(phase),
				"deadline": deadline,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit deadline changed")
		}
		return nil
	})
}

func (s *service) emitPhaseChange(ctx context.Context, tx *gorm.DB, tripID, actorID uuid.UUID, from, to enums.TripPhase) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventPhaseChanged,
		AggregateType: enums.AggregateTrip,
		AggregateID:   tripID,
		TripID:        tripID,
		Actor:         &outbox.ActorRef{UserID: actorID, TripID: &tripID},
		Data: map[string]any{
			"from": string(from),
			"to":   string(to),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit phase changed")
	}
	return nil
}
