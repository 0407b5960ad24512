package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
	markErr   error
}

func (r *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	if limit < len(r.events) {
		return r.events[:limit], nil
	}
	return r.events, nil
}

func (r *fakeRepo) MarkPublished(id uuid.UUID) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.published = append(r.published, id)
	return nil
}

func (r *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakeResult struct {
	err error
}

func (r fakeResult) Get(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-id", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	errs     map[string]error
}

func (p *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if err, ok := p.errs[msg.Attributes["event_type"]]; ok {
		return fakeResult{err: err}
	}
	return fakeResult{}
}

func outboxEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateTrip,
		AggregateID:   uuid.New(),
		TripID:        uuid.New(),
		Payload:       []byte(`{"version":1}`),
		CreatedAt:     time.Now().UTC(),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:    &config.Config{},
		Logger:    logger.New(logger.Options{ServiceName: "outbox-test"}),
		Repo:      repo,
		Publisher: pub,
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishesEvents(t *testing.T) {
	voteCast := outboxEvent(enums.EventVoteCast)
	phaseChanged := outboxEvent(enums.EventPhaseChanged)
	repo := &fakeRepo{events: []models.OutboxEvent{voteCast, phaseChanged}}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []uuid.UUID{voteCast.ID, phaseChanged.ID}, repo.published)
	assert.Empty(t, repo.failed)

	require.Len(t, pub.messages, 2)
	msg := pub.messages[0]
	assert.Equal(t, []byte(`{"version":1}`), msg.Data)
	assert.Equal(t, string(enums.EventVoteCast), msg.Attributes["event_type"])
	assert.Equal(t, string(enums.AggregateTrip), msg.Attributes["aggregate_type"])
	assert.Equal(t, voteCast.TripID.String(), msg.Attributes["trip_id"])
	assert.NotEmpty(t, msg.Attributes["created_at"])
}

func TestProcessBatchMarksFailuresAndContinues(t *testing.T) {
	failing := outboxEvent(enums.EventVoteCast)
	healthy := outboxEvent(enums.EventPhaseChanged)
	repo := &fakeRepo{events: []models.OutboxEvent{failing, healthy}}
	pub := &fakePublisher{errs: map[string]error{
		string(enums.EventVoteCast): errors.New("topic unavailable"),
	}}

	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []uuid.UUID{failing.ID}, repo.failed)
	assert.Equal(t, []uuid.UUID{healthy.ID}, repo.published)
}

func TestProcessBatchEmpty(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db gone")}
	svc := newTestService(t, repo, &fakePublisher{})

	_, err := svc.processBatch(context.Background())
	require.Error(t, err)
}

func TestProcessBatchMarkPublishedError(t *testing.T) {
	repo := &fakeRepo{
		events:  []models.OutboxEvent{outboxEvent(enums.EventVoteCast)},
		markErr: errors.New("db gone"),
	}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	require.Error(t, err)
	assert.True(t, processed)
}

func TestNextBackoff(t *testing.T) {
	base := 500 * time.Millisecond
	assert.Equal(t, time.Second, nextBackoff(base, base, maxBackoff))
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second, base, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(8*time.Second, base, maxBackoff))
	assert.Equal(t, time.Second, nextBackoff(0, base, maxBackoff))
}

func TestNewServiceValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "outbox-test"})
	repo := &fakeRepo{}
	pub := &fakePublisher{}

	_, err := NewService(ServiceParams{Logger: logg, Repo: repo, Publisher: pub})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Config: &config.Config{}, Repo: repo, Publisher: pub})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Config: &config.Config{}, Logger: logg, Publisher: pub})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Config: &config.Config{}, Logger: logg, Repo: repo})
	assert.Error(t, err)
}
