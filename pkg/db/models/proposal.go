package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal is a candidate destination or itinerary item members vote on.
// IsDestination is immutable after creation; Included marks the proposal as
// part of the finalized plan.
type Proposal struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID        uuid.UUID `gorm:"column:trip_id;type:uuid;not null;index"`
	CreatedBy     uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	Title         string    `gorm:"column:title;type:text;not null"`
	Notes         *string   `gorm:"column:notes;type:text"`
	IsDestination bool      `gorm:"column:is_destination;not null"`
	Included      bool      `gorm:"column:included;not null;default:false"`
	Votes         []Vote    `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
