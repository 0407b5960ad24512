package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseSplit is one participant's share of an expense. Position preserves
// the participant order the split was generated from; the first position
// absorbs any rounding remainder.
type ExpenseSplit struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExpenseID uuid.UUID       `gorm:"column:expense_id;type:uuid;not null;index"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Position  int             `gorm:"column:position;not null"`
	IsSettled bool            `gorm:"column:is_settled;not null;default:false"`
	SettledAt *time.Time      `gorm:"column:settled_at;type:timestamptz"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
