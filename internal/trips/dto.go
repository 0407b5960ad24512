package trips

import (
	"time"
)

// CreateInput holds the fields required to start a new trip.
type CreateInput struct {
	Name      string     `json:"name" validate:"required,min=1,max=120"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// SetDeadlineInput configures the voting deadline for the trip's active phase.
type SetDeadlineInput struct {
	Phase    string     `json:"phase" validate:"required,oneof=destination itinerary"`
	Deadline *time.Time `json:"deadline"`
}

// MarkReadyInput carries the final confirmed dates persisted on finalize.
type MarkReadyInput struct {
	StartDate *time.Time `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date" validate:"required"`
}
