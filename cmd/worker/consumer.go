package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/TheRealPress1/roamiii-backend/internal/voting"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

const (
	triggerEvent    = "event"
	resolveAttempts = 3
	resolveBackoff  = 500 * time.Millisecond
)

// Consumer reacts to trip domain events: voting-relevant events re-run
// resolution, deadline changes re-arm the one-shot timer.
type Consumer struct {
	voting    voting.Service
	scheduler *voting.Scheduler
	logg      *logger.Logger
}

func NewConsumer(votingSvc voting.Service, scheduler *voting.Scheduler, logg *logger.Logger) (*Consumer, error) {
	if votingSvc == nil {
		return nil, errors.New("voting service is required")
	}
	if scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{voting: votingSvc, scheduler: scheduler, logg: logg}, nil
}

// Handle processes one published event. A returned error means the message
// should be redelivered.
func (c *Consumer) Handle(ctx context.Context, attributes map[string]string, payload []byte) error {
	eventType, err := enums.ParseOutboxEventType(attributes["event_type"])
	if err != nil {
		// Unknown events are dropped, not redelivered.
		c.logg.Warn(c.logg.WithField(ctx, "event_type", attributes["event_type"]), "skipping unknown event type")
		return nil
	}

	tripID, err := uuid.Parse(attributes["trip_id"])
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "trip_id", attributes["trip_id"]), "skipping event without trip id")
		return nil
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"event_type": string(eventType),
		"trip_id":    tripID.String(),
	})

	if eventType == enums.EventDeadlineChanged {
		c.rearmDeadline(ctx, tripID, payload)
	}

	if !eventType.TriggersResolution() {
		return nil
	}

	backoff := retry.WithMaxRetries(resolveAttempts, retry.NewExponential(resolveBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.voting.Resolve(ctx, tripID, triggerEvent); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

type deadlinePayload struct {
	Phase    string     `json:"phase"`
	Deadline *time.Time `json:"deadline"`
}

func (c *Consumer) rearmDeadline(ctx context.Context, tripID uuid.UUID, payload []byte) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logg.Error(ctx, "failed to decode event envelope", err)
		return
	}
	var data deadlinePayload
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logg.Error(ctx, "failed to decode deadline payload", err)
		return
	}

	if data.Deadline == nil {
		c.scheduler.Cancel(tripID)
		c.logg.Info(ctx, "voting deadline cleared, timer canceled")
		return
	}
	c.scheduler.Schedule(ctx, tripID, *data.Deadline)
	c.logg.Info(c.logg.WithField(ctx, "deadline", data.Deadline.Format(time.RFC3339)), "voting deadline timer armed")
}
