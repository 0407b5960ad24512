package trips

import (
	"context"
	"testing"
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

type phaseWrite struct {
	from enums.TripPhase
	to   enums.TripPhase
}

type fakeTripRepo struct {
	Repository
	trip *models.Trip

	advanceCalls    []phaseWrite
	advanceAffected int64
	reopenCalls     []phaseWrite
	reopenAffected  int64
	datesSet        bool
}

func (r *fakeTripRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *fakeTripRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	if r.trip == nil {
		return nil, nil
	}
	copied := *r.trip
	return &copied, nil
}

func (r *fakeTripRepo) AdvancePhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error) {
	r.advanceCalls = append(r.advanceCalls, phaseWrite{from: from, to: to})
	return r.advanceAffected, nil
}

func (r *fakeTripRepo) ReopenPhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error) {
	r.reopenCalls = append(r.reopenCalls, phaseWrite{from: from, to: to})
	return r.reopenAffected, nil
}

func (r *fakeTripRepo) SetDatesGuarded(ctx context.Context, tripID uuid.UUID, start, end *time.Time) (int64, error) {
	r.datesSet = true
	return 1, nil
}

type fakePropRepo struct {
	proposals.Repository
	includedCount int64
}

func (r *fakePropRepo) WithTx(tx *gorm.DB) proposals.Repository { return r }

func (r *fakePropRepo) CountIncluded(ctx context.Context, tripID uuid.UUID, isDestination bool) (int64, error) {
	return r.includedCount, nil
}

type fakeMemberRepo struct {
	memberships.Repository
	members []models.TripMembership
}

func (r *fakeMemberRepo) WithTx(tx *gorm.DB) memberships.Repository { return r }

func (r *fakeMemberRepo) ListActiveByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripMembership, error) {
	return r.members, nil
}

type fakeNotifier struct {
	notifications.Service
	sent []notifications.NotifyInput
}

func (n *fakeNotifier) NotifyTx(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) error {
	n.sent = append(n.sent, input)
	return nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (e *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

// fakeTx runs the transactional body directly. The fakes above ignore the
// tx handle, so nil stands in for it.
type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type noopMessages struct{}

func (noopMessages) Post(ctx context.Context, tripID, authorID uuid.UUID, body string) (*models.TripMessage, error) {
	return nil, nil
}

func (noopMessages) PostSystemTx(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, body string) error {
	return nil
}

func (noopMessages) List(ctx context.Context, tripID uuid.UUID, limit int, cursor string) (*messages.ListResult, error) {
	return nil, nil
}

type tripFixture struct {
	repo     *fakeTripRepo
	props    *fakePropRepo
	members  *fakeMemberRepo
	notifier *fakeNotifier
	emitter  *fakeEmitter
	svc      Service
}

func newTripFixture(t *testing.T, trip *models.Trip) *tripFixture {
	t.Helper()
	f := &tripFixture{
		repo:     &fakeTripRepo{trip: trip, advanceAffected: 1, reopenAffected: 1},
		props:    &fakePropRepo{},
		members:  &fakeMemberRepo{},
		notifier: &fakeNotifier{},
		emitter:  &fakeEmitter{},
	}
	svc, err := NewService(
		fakeTx{},
		f.repo,
		f.members,
		f.props,
		noopMessages{},
		f.notifier,
		f.emitter,
		logger.New(logger.Options{ServiceName: "trips-test"}),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func wantStateConflict(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAdvanceRequiresLockedDestination(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseDestination})

	_, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
	if len(f.repo.advanceCalls) != 0 {
		t.Fatal("no phase write may happen without a locked destination")
	}
}

func TestAdvanceRequiresIncludedItineraryItem(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseItinerary})
	f.props.includedCount = 0

	_, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
	if len(f.repo.advanceCalls) != 0 {
		t.Fatal("no phase write may happen with an empty itinerary")
	}

	f.props.includedCount = 2
	trip, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if trip.Phase != enums.TripPhaseTransportation {
		t.Fatalf("expected transportation, got %s", trip.Phase)
	}
}

func TestAdvanceFinalizeGoesThroughMarkReady(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseFinalize})

	_, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
	if len(f.repo.advanceCalls) != 0 {
		t.Fatal("finalize must only exit via mark ready")
	}
}

func TestAdvanceReadyTripRejected(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseReady})

	_, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
}

func TestAdvanceGuardedWriteAndEvent(t *testing.T) {
	tripID := uuid.New()
	lockedID := uuid.New()
	f := newTripFixture(t, &models.Trip{
		ID:                  tripID,
		Phase:               enums.TripPhaseDestination,
		LockedDestinationID: &lockedID,
	})

	trip, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if trip.Phase != enums.TripPhaseItinerary {
		t.Fatalf("expected itinerary, got %s", trip.Phase)
	}

	if len(f.repo.advanceCalls) != 1 {
		t.Fatalf("expected 1 guarded write, got %d", len(f.repo.advanceCalls))
	}
	write := f.repo.advanceCalls[0]
	if write.from != enums.TripPhaseDestination || write.to != enums.TripPhaseItinerary {
		t.Fatalf("wrong guarded write: %+v", write)
	}

	if len(f.emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.emitter.events))
	}
	event := f.emitter.events[0]
	if event.EventType != enums.EventPhaseChanged {
		t.Fatalf("expected phase changed event, got %s", event.EventType)
	}
}

func TestAdvanceLostGuardIsStateConflict(t *testing.T) {
	tripID := uuid.New()
	lockedID := uuid.New()
	f := newTripFixture(t, &models.Trip{
		ID:                  tripID,
		Phase:               enums.TripPhaseDestination,
		LockedDestinationID: &lockedID,
	})
	f.repo.advanceAffected = 0

	_, err := f.svc.Advance(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
	if len(f.emitter.events) != 0 {
		t.Fatal("a lost guard must not emit events")
	}
}

func TestReopenToDestinationClearsLock(t *testing.T) {
	tripID := uuid.New()
	lockedID := uuid.New()
	f := newTripFixture(t, &models.Trip{
		ID:                  tripID,
		Phase:               enums.TripPhaseItinerary,
		LockedDestinationID: &lockedID,
	})

	trip, err := f.svc.Reopen(context.Background(), tripID, uuid.New())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if trip.Phase != enums.TripPhaseDestination {
		t.Fatalf("expected destination, got %s", trip.Phase)
	}
	if trip.LockedDestinationID != nil {
		t.Fatal("reopening to destination must clear the locked destination")
	}

	if len(f.repo.reopenCalls) != 1 {
		t.Fatalf("expected 1 guarded write, got %d", len(f.repo.reopenCalls))
	}
	write := f.repo.reopenCalls[0]
	if write.from != enums.TripPhaseItinerary || write.to != enums.TripPhaseDestination {
		t.Fatalf("wrong guarded write: %+v", write)
	}
}

func TestReopenElsewhereKeepsLock(t *testing.T) {
	tripID := uuid.New()
	lockedID := uuid.New()
	f := newTripFixture(t, &models.Trip{
		ID:                  tripID,
		Phase:               enums.TripPhaseTransportation,
		LockedDestinationID: &lockedID,
	})

	trip, err := f.svc.Reopen(context.Background(), tripID, uuid.New())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if trip.Phase != enums.TripPhaseItinerary {
		t.Fatalf("expected itinerary, got %s", trip.Phase)
	}
	if trip.LockedDestinationID == nil || *trip.LockedDestinationID != lockedID {
		t.Fatal("reopening to itinerary must leave the destination lock in place")
	}
}

func TestReopenAtFirstPhaseRejected(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseDestination})

	_, err := f.svc.Reopen(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
	if len(f.repo.reopenCalls) != 0 {
		t.Fatal("no phase write may happen at the first phase")
	}
}

func TestReopenLostGuardIsStateConflict(t *testing.T) {
	tripID := uuid.New()
	f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseItinerary})
	f.repo.reopenAffected = 0

	_, err := f.svc.Reopen(context.Background(), tripID, uuid.New())
	wantStateConflict(t, err)
}

func TestMarkReadyNotifiesEveryActiveMember(t *testing.T) {
	tripID := uuid.New()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	f := newTripFixture(t, &models.Trip{
		ID:    tripID,
		Name:  "Lisbon getaway",
		Phase: enums.TripPhaseFinalize,
	})
	alice, bob, cara := uuid.New(), uuid.New(), uuid.New()
	f.members.members = []models.TripMembership{
		{UserID: alice}, {UserID: bob}, {UserID: cara},
	}

	trip, err := f.svc.MarkReady(context.Background(), tripID, alice, MarkReadyInput{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if trip.Phase != enums.TripPhaseReady {
		t.Fatalf("expected ready, got %s", trip.Phase)
	}
	if !f.repo.datesSet {
		t.Fatal("confirmed dates were not persisted")
	}

	write := f.repo.advanceCalls[len(f.repo.advanceCalls)-1]
	if write.from != enums.TripPhaseFinalize || write.to != enums.TripPhaseReady {
		t.Fatalf("wrong guarded write: %+v", write)
	}

	if len(f.notifier.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(f.notifier.sent))
	}
	notified := map[uuid.UUID]bool{}
	for _, input := range f.notifier.sent {
		if input.Type != enums.NotificationTypeTripReady {
			t.Fatalf("wrong notification type: %s", input.Type)
		}
		notified[input.UserID] = true
	}
	for _, userID := range []uuid.UUID{alice, bob, cara} {
		if !notified[userID] {
			t.Fatalf("member %s was not notified", userID)
		}
	}

	last := f.emitter.events[len(f.emitter.events)-1]
	if last.EventType != enums.EventTripReady {
		t.Fatalf("expected trip ready event, got %s", last.EventType)
	}
}

func TestMarkReadyValidation(t *testing.T) {
	tripID := uuid.New()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	t.Run("wrong phase", func(t *testing.T) {
		f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseItinerary})
		_, err := f.svc.MarkReady(context.Background(), tripID, uuid.New(), MarkReadyInput{
			StartDate: &start,
			EndDate:   &end,
		})
		wantStateConflict(t, err)
	})

	t.Run("missing dates", func(t *testing.T) {
		f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseFinalize})
		_, err := f.svc.MarkReady(context.Background(), tripID, uuid.New(), MarkReadyInput{})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		f := newTripFixture(t, &models.Trip{ID: tripID, Phase: enums.TripPhaseFinalize})
		_, err := f.svc.MarkReady(context.Background(), tripID, uuid.New(), MarkReadyInput{
			StartDate: &end,
			EndDate:   &start,
		})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestAdvanceMissingTrip(t *testing.T) {
	f := newTripFixture(t, nil)
	_, err := f.svc.Advance(context.Background(), uuid.New(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
