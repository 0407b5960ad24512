package proposals

// CreateInput holds the fields for a new proposal.
type CreateInput struct {
	Title         string  `json:"title" validate:"required,min=1,max=200"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
	IsDestination bool    `json:"is_destination"`
}

// VoteInput carries one member's position on a proposal. Kind and Score are
// both optional but at least one is required; Score overrides Kind.
type VoteInput struct {
	Kind  *string `json:"kind" validate:"omitempty,oneof=in maybe out"`
	Score *int16  `json:"score" validate:"omitempty,min=0,max=100"`
}
