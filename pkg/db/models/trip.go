package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Trip is one planning session. LockedDestinationID is set only once the
// destination phase resolves and must reference an is_destination proposal.
type Trip struct {
	ID                        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID                   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	Name                      string          `gorm:"column:name;type:text;not null"`
	Phase                     enums.TripPhase `gorm:"column:phase;type:trip_phase;not null;default:'destination'"`
	LockedDestinationID       *uuid.UUID      `gorm:"column:locked_destination_id;type:uuid"`
	DestinationVotingDeadline *time.Time      `gorm:"column:destination_voting_deadline;type:timestamptz"`
	ItineraryVotingDeadline   *time.Time      `gorm:"column:itinerary_voting_deadline;type:timestamptz"`
	StartDate                 *time.Time      `gorm:"column:start_date;type:date"`
	EndDate                   *time.Time      `gorm:"column:end_date;type:date"`
	CreatedAt                 time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
