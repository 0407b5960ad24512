package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// TripMembership links a user with a trip and captures their role/status.
// Rows are never deleted; removal flips Status so historical votes and splits
// keep their attribution.
type TripMembership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID          uuid.UUID              `gorm:"column:trip_id;type:uuid;not null;uniqueIndex:ux_trip_memberships_trip_user"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_trip_memberships_trip_user"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
