package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// CreateInput holds the fields for a new shared expense. Participants are
// split equally in the given order; the first listed absorbs the rounding
// remainder.
type CreateInput struct {
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Description    string          `json:"description" validate:"required,min=1,max=500"`
	ExpenseDate    time.Time       `json:"expense_date" validate:"required"`
	ProposalID     *uuid.UUID      `json:"proposal_id"`
	ParticipantIDs []uuid.UUID     `json:"participant_ids" validate:"required,min=1"`
}

// ClaimBookingInput records that the caller booked an itinerary item and paid
// for it; the cost is split equally across the active roster.
type ClaimBookingInput struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Category    string          `json:"category"`
	ExpenseDate time.Time       `json:"expense_date"`
}

// SettleInput marks a batch of splits as settled.
type SettleInput struct {
	SplitIDs []uuid.UUID `json:"split_ids" validate:"required,min=1"`
}

// Summary is the trip ledger rollup.
type Summary struct {
	Total          decimal.Decimal                           `json:"total"`
	CategoryTotals map[enums.ExpenseCategory]decimal.Decimal `json:"category_totals"`
	Balances       map[uuid.UUID]decimal.Decimal             `json:"balances"`
	Transfers      []Transfer                                `json:"transfers"`
	Expenses       []models.Expense                          `json:"expenses"`
}
