package expenses

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyTransfers replays transfers against the starting balances so tests can
// assert everyone ends up settled.
func applyTransfers(balances map[uuid.UUID]decimal.Decimal, transfers []Transfer) map[uuid.UUID]decimal.Decimal {
	result := make(map[uuid.UUID]decimal.Decimal, len(balances))
	for userID, balance := range balances {
		result[userID] = balance
	}
	for _, transfer := range transfers {
		result[transfer.From] = result[transfer.From].Add(transfer.Amount)
		result[transfer.To] = result[transfer.To].Sub(transfer.Amount)
	}
	return result
}

func TestSettle(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	cara := uuid.New()
	dave := uuid.New()

	t.Run("single debtor single creditor", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("40.00"),
			bob:   dec("-40.00"),
		}
		transfers := Settle(balances)
		require.Len(t, transfers, 1)
		assert.Equal(t, bob, transfers[0].From)
		assert.Equal(t, alice, transfers[0].To)
		assert.True(t, transfers[0].Amount.Equal(dec("40.00")))
	})

	t.Run("zeroes every balance", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("60.00"),
			bob:   dec("-15.00"),
			cara:  dec("-45.00"),
		}
		transfers := Settle(balances)
		remaining := applyTransfers(balances, transfers)
		for userID, balance := range remaining {
			assert.True(t, balance.Abs().LessThan(centEpsilon), "user %s left with %s", userID, balance)
		}
	})

	t.Run("at most n-1 transfers", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("70.00"),
			bob:   dec("30.00"),
			cara:  dec("-55.00"),
			dave:  dec("-45.00"),
		}
		transfers := Settle(balances)
		assert.LessOrEqual(t, len(transfers), 3)

		remaining := applyTransfers(balances, transfers)
		for _, balance := range remaining {
			assert.True(t, balance.Abs().LessThan(centEpsilon))
		}
	})

	t.Run("largest creditor paired with largest debtor first", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("70.00"),
			bob:   dec("30.00"),
			cara:  dec("-60.00"),
			dave:  dec("-40.00"),
		}
		transfers := Settle(balances)
		require.NotEmpty(t, transfers)
		assert.Equal(t, cara, transfers[0].From)
		assert.Equal(t, alice, transfers[0].To)
		assert.True(t, transfers[0].Amount.Equal(dec("60.00")))
	})

	t.Run("deterministic for equal amounts", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("25.00"),
			bob:   dec("25.00"),
			cara:  dec("-50.00"),
		}
		first := Settle(balances)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Settle(balances))
		}
	})

	t.Run("sub-cent residue is ignored", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: dec("0.005"),
			bob:   dec("-0.005"),
		}
		assert.Empty(t, Settle(balances))
	})

	t.Run("all settled already", func(t *testing.T) {
		balances := map[uuid.UUID]decimal.Decimal{
			alice: decimal.Zero,
			bob:   decimal.Zero,
		}
		assert.Empty(t, Settle(balances))
	})
}
