package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// OutboxEvent is a transactional outbox row. API writes append these inside
// the same transaction as the domain change; the publisher drains them to
// Pub/Sub and the voting monitor consumes them as its change feed.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	TripID        uuid.UUID                 `gorm:"column:trip_id;type:uuid;not null;index"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error;type:text"`
	PublishedAt   *time.Time                `gorm:"column:published_at;type:timestamptz"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
