package expenses

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
)

// VerifySplitSums asserts that every expense's splits sum exactly to its
// amount. A violation means the stored data is corrupt upstream; it is
// surfaced as a data-integrity failure and never silently corrected.
func VerifySplitSums(expenses []models.Expense) error {
	for _, expense := range expenses {
		sum := decimal.Zero
		for _, split := range expense.Splits {
			sum = sum.Add(split.Amount)
		}
		if !sum.Equal(expense.Amount) {
			return pkgerrors.New(
				pkgerrors.CodeDataIntegrity,
				fmt.Sprintf("expense %s splits sum to %s, expected %s", expense.ID, sum, expense.Amount),
			)
		}
	}
	return nil
}

// TotalAmount sums all expense amounts.
func TotalAmount(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
	}
	return total
}

// CategoryTotals sums expense amounts per category. Settled splits still
// count here; settlement only affects outstanding balances.
func CategoryTotals(expenses []models.Expense) map[enums.ExpenseCategory]decimal.Decimal {
	totals := make(map[enums.ExpenseCategory]decimal.Decimal)
	for _, expense := range expenses {
		totals[expense.Category] = totals[expense.Category].Add(expense.Amount)
	}
	return totals
}

// BalanceFor computes one member's net position: everything they paid minus
// their own unsettled shares, including shares of expenses they paid
// themselves. Positive means the group owes them.
func BalanceFor(userID uuid.UUID, expenses []models.Expense) decimal.Decimal {
	balance := decimal.Zero
	for _, expense := range expenses {
		if expense.PaidBy == userID {
			balance = balance.Add(expense.Amount)
		}
		for _, split := range expense.Splits {
			if split.UserID == userID && !split.IsSettled {
				balance = balance.Sub(split.Amount)
			}
		}
	}
	return balance
}

// Balances computes the net position of every member that appears in the
// expense set, as payer or participant.
func Balances(expenses []models.Expense) map[uuid.UUID]decimal.Decimal {
	balances := make(map[uuid.UUID]decimal.Decimal)
	for _, expense := range expenses {
		balances[expense.PaidBy] = balances[expense.PaidBy].Add(expense.Amount)
		for _, split := range expense.Splits {
			if !split.IsSettled {
				balances[split.UserID] = balances[split.UserID].Sub(split.Amount)
			} else if _, seen := balances[split.UserID]; !seen {
				balances[split.UserID] = decimal.Zero
			}
		}
	}
	return balances
}
