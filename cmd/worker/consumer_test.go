package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/internal/voting"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

type resolveCall struct {
	tripID  uuid.UUID
	trigger string
}

type fakeVotingService struct {
	calls []resolveCall
	errs  []error
}

func (s *fakeVotingService) Resolve(ctx context.Context, tripID uuid.UUID, trigger string) error {
	s.calls = append(s.calls, resolveCall{tripID: tripID, trigger: trigger})
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return err
	}
	return nil
}

func newTestConsumer(t *testing.T, votingSvc *fakeVotingService) (*Consumer, *voting.Scheduler) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "worker-test"})
	scheduler, err := voting.NewScheduler(config.VotingConfig{}, votingSvc, logg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(scheduler.Stop)

	consumer, err := NewConsumer(votingSvc, scheduler, logg)
	if err != nil {
		t.Fatal(err)
	}
	return consumer, scheduler
}

func eventAttributes(eventType enums.OutboxEventType, tripID uuid.UUID) map[string]string {
	return map[string]string{
		"event_type": string(eventType),
		"trip_id":    tripID.String(),
	}
}

func TestHandleResolvesVotingEvents(t *testing.T) {
	votingSvc := &fakeVotingService{}
	consumer, _ := newTestConsumer(t, votingSvc)
	tripID := uuid.New()

	err := consumer.Handle(context.Background(), eventAttributes(enums.EventVoteCast, tripID), nil)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(votingSvc.calls) != 1 {
		t.Fatalf("expected 1 resolve call, got %d", len(votingSvc.calls))
	}
	if votingSvc.calls[0].tripID != tripID {
		t.Fatal("wrong trip resolved")
	}
	if votingSvc.calls[0].trigger != triggerEvent {
		t.Fatalf("wrong trigger: %s", votingSvc.calls[0].trigger)
	}
}

func TestHandleRetriesTransientResolveFailures(t *testing.T) {
	votingSvc := &fakeVotingService{errs: []error{errors.New("deadlock"), errors.New("deadlock")}}
	consumer, _ := newTestConsumer(t, votingSvc)

	err := consumer.Handle(context.Background(), eventAttributes(enums.EventVoteCast, uuid.New()), nil)
	if err != nil {
		t.Fatalf("handle should succeed after retries: %v", err)
	}
	if len(votingSvc.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(votingSvc.calls))
	}
}

func TestHandleIgnoresInformationalEvents(t *testing.T) {
	votingSvc := &fakeVotingService{}
	consumer, _ := newTestConsumer(t, votingSvc)

	for _, eventType := range []enums.OutboxEventType{
		enums.EventPhaseChanged,
		enums.EventDestinationLocked,
		enums.EventTripReady,
		enums.EventExpenseCreated,
	} {
		if err := consumer.Handle(context.Background(), eventAttributes(eventType, uuid.New()), nil); err != nil {
			t.Fatalf("%s: %v", eventType, err)
		}
	}
	if len(votingSvc.calls) != 0 {
		t.Fatalf("informational events must not resolve, got %d calls", len(votingSvc.calls))
	}
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	votingSvc := &fakeVotingService{}
	consumer, _ := newTestConsumer(t, votingSvc)
	ctx := context.Background()

	// Unknown event types and bad trip ids are acked, not redelivered.
	if err := consumer.Handle(ctx, map[string]string{"event_type": "trip.bogus", "trip_id": uuid.NewString()}, nil); err != nil {
		t.Fatalf("unknown event type: %v", err)
	}
	if err := consumer.Handle(ctx, map[string]string{"event_type": string(enums.EventVoteCast), "trip_id": "not-a-uuid"}, nil); err != nil {
		t.Fatalf("bad trip id: %v", err)
	}
	if len(votingSvc.calls) != 0 {
		t.Fatal("malformed events must not resolve")
	}
}

func TestHandleDeadlineChangedArmsTimerAndResolves(t *testing.T) {
	votingSvc := &fakeVotingService{}
	consumer, _ := newTestConsumer(t, votingSvc)
	tripID := uuid.New()

	deadline := time.Now().Add(time.Hour).UTC()
	data, err := json.Marshal(map[string]any{
		"phase":    string(enums.TripPhaseDestination),
		"deadline": deadline,
	})
	if err != nil {
		t.Fatal(err)
	}
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := consumer.Handle(context.Background(), eventAttributes(enums.EventDeadlineChanged, tripID), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// Deadline changes are also voting-relevant and resolve immediately.
	if len(votingSvc.calls) != 1 {
		t.Fatalf("expected 1 resolve call, got %d", len(votingSvc.calls))
	}
}

func TestNewConsumerValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "worker-test"})
	votingSvc := &fakeVotingService{}
	scheduler, err := voting.NewScheduler(config.VotingConfig{}, votingSvc, logg)
	if err != nil {
		t.Fatal(err)
	}
	defer scheduler.Stop()

	if _, err := NewConsumer(nil, scheduler, logg); err == nil {
		t.Fatal("nil voting service must fail")
	}
	if _, err := NewConsumer(votingSvc, nil, logg); err == nil {
		t.Fatal("nil scheduler must fail")
	}
	if _, err := NewConsumer(votingSvc, scheduler, nil); err == nil {
		t.Fatal("nil logger must fail")
	}
}
