package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// MemberView is the API shape for one trip member.
type MemberView struct {
	UserID      uuid.UUID              `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Email       string                 `json:"email"`
	Role        enums.MemberRole       `json:"role"`
	Status      enums.MembershipStatus `json:"status"`
	JoinedAt    time.Time              `json:"joined_at"`
}
