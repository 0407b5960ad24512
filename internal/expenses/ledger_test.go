package expenses

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expenseWithSplits(paidBy uuid.UUID, amount string, splits ...models.ExpenseSplit) models.Expense {
	return models.Expense{
		ID:       uuid.New(),
		PaidBy:   paidBy,
		Amount:   dec(amount),
		Category: enums.ExpenseCategoryFood,
		Splits:   splits,
	}
}

func TestVerifySplitSums(t *testing.T) {
	payer := uuid.New()
	other := uuid.New()

	t.Run("valid", func(t *testing.T) {
		expense := expenseWithSplits(payer, "100.00",
			models.ExpenseSplit{UserID: payer, Amount: dec("33.34")},
			models.ExpenseSplit{UserID: other, Amount: dec("33.33")},
			models.ExpenseSplit{UserID: uuid.New(), Amount: dec("33.33")},
		)
		require.NoError(t, VerifySplitSums([]models.Expense{expense}))
	})

	t.Run("mismatch surfaces as data integrity error", func(t *testing.T) {
		expense := expenseWithSplits(payer, "100.00",
			models.ExpenseSplit{UserID: payer, Amount: dec("50.00")},
			models.ExpenseSplit{UserID: other, Amount: dec("49.99")},
		)
		err := VerifySplitSums([]models.Expense{expense})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeDataIntegrity, pkgerrors.As(err).Code())
	})
}

func TestBalances(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	cara := uuid.New()

	// Alice pays 90 split three ways; Bob pays 30 split between Bob and Cara.
	expenses := []models.Expense{
		expenseWithSplits(alice, "90.00",
			models.ExpenseSplit{UserID: alice, Amount: dec("30.00")},
			models.ExpenseSplit{UserID: bob, Amount: dec("30.00")},
			models.ExpenseSplit{UserID: cara, Amount: dec("30.00")},
		),
		expenseWithSplits(bob, "30.00",
			models.ExpenseSplit{UserID: bob, Amount: dec("15.00")},
			models.ExpenseSplit{UserID: cara, Amount: dec("15.00")},
		),
	}

	balances := Balances(expenses)
	require.Len(t, balances, 3)

	assert.True(t, balances[alice].Equal(dec("60.00")), "alice %s", balances[alice])
	assert.True(t, balances[bob].Equal(dec("-15.00")), "bob %s", balances[bob])
	assert.True(t, balances[cara].Equal(dec("-45.00")), "cara %s", balances[cara])

	t.Run("balances sum to zero", func(t *testing.T) {
		sum := decimal.Zero
		for _, balance := range balances {
			sum = sum.Add(balance)
		}
		assert.True(t, sum.IsZero(), "sum %s", sum)
	})

	t.Run("BalanceFor matches map", func(t *testing.T) {
		assert.True(t, BalanceFor(alice, expenses).Equal(balances[alice]))
		assert.True(t, BalanceFor(bob, expenses).Equal(balances[bob]))
	})
}

func TestBalancesSettledSplitsExcluded(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	expenses := []models.Expense{
		expenseWithSplits(alice, "50.00",
			models.ExpenseSplit{UserID: alice, Amount: dec("25.00")},
			models.ExpenseSplit{UserID: bob, Amount: dec("25.00"), IsSettled: true},
		),
	}

	balances := Balances(expenses)
	assert.True(t, balances[alice].Equal(dec("25.00")))
	// Bob settled his share but still appears in the ledger at zero.
	settled, ok := balances[bob]
	require.True(t, ok)
	assert.True(t, settled.IsZero())
}

func TestTotalsAndCategoryTotals(t *testing.T) {
	payer := uuid.New()
	lodging := models.Expense{PaidBy: payer, Amount: dec("200.00"), Category: enums.ExpenseCategoryLodging}
	food := models.Expense{PaidBy: payer, Amount: dec("45.50"), Category: enums.ExpenseCategoryFood}
	moreFood := models.Expense{PaidBy: payer, Amount: dec("4.50"), Category: enums.ExpenseCategoryFood}

	expenses := []models.Expense{lodging, food, moreFood}

	assert.True(t, TotalAmount(expenses).Equal(dec("250.00")))

	totals := CategoryTotals(expenses)
	assert.True(t, totals[enums.ExpenseCategoryLodging].Equal(dec("200.00")))
	assert.True(t, totals[enums.ExpenseCategoryFood].Equal(dec("50.00")))
}
