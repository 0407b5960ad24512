package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Vote is one member's position on one proposal. The unique index enforces a
// single live row per (proposal, user); re-voting updates in place. Either
// Kind or Score must be present; Score wins when both are set.
type Vote struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProposalID uuid.UUID       `gorm:"column:proposal_id;type:uuid;not null;uniqueIndex:ux_votes_proposal_user"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_votes_proposal_user"`
	Kind       *enums.VoteKind `gorm:"column:kind;type:vote_kind"`
	Score      *int16          `gorm:"column:score;type:smallint"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
