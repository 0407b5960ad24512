package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// TripMessage is an entry in a trip's message stream. System entries
// (AuthorID nil) record phase transitions and lock actions.
type TripMessage struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID    uuid.UUID         `gorm:"column:trip_id;type:uuid;not null;index"`
	AuthorID  *uuid.UUID        `gorm:"column:author_id;type:uuid"`
	Kind      enums.MessageKind `gorm:"column:kind;type:message_kind;not null;default:'user'"`
	Body      string            `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
