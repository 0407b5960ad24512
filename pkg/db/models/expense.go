package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Expense is a shared cost paid by one member and split across participants.
// Splits are created in the same transaction as the expense; their amounts
// sum exactly to Amount.
type Expense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID      uuid.UUID             `gorm:"column:trip_id;type:uuid;not null;index"`
	PaidBy      uuid.UUID             `gorm:"column:paid_by;type:uuid;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Category    enums.ExpenseCategory `gorm:"column:category;type:expense_category;not null;default:'other'"`
	Description string                `gorm:"column:description;type:text;not null"`
	ExpenseDate time.Time             `gorm:"column:expense_date;type:date;not null"`
	ProposalID  *uuid.UUID            `gorm:"column:proposal_id;type:uuid"`
	Splits      []ExpenseSplit        `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
