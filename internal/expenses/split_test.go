package expenses

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
)

func TestEqualSplitAmounts(t *testing.T) {
	t.Run("remainder goes to first participant", func(t *testing.T) {
		amounts, err := EqualSplitAmounts(decimal.RequireFromString("100.00"), 3)
		require.NoError(t, err)
		require.Len(t, amounts, 3)

		assert.True(t, amounts[0].Equal(decimal.RequireFromString("33.34")), "got %s", amounts[0])
		assert.True(t, amounts[1].Equal(decimal.RequireFromString("33.33")), "got %s", amounts[1])
		assert.True(t, amounts[2].Equal(decimal.RequireFromString("33.33")), "got %s", amounts[2])
	})

	t.Run("even division has no remainder", func(t *testing.T) {
		amounts, err := EqualSplitAmounts(decimal.RequireFromString("90.00"), 3)
		require.NoError(t, err)
		for _, amount := range amounts {
			assert.True(t, amount.Equal(decimal.RequireFromString("30.00")))
		}
	})

	t.Run("negative remainder from rounding up", func(t *testing.T) {
		// 100 / 6 = 16.666..., rounds to 16.67; 6 * 16.67 = 100.02, so the
		// first participant pays 2 cents less.
		amounts, err := EqualSplitAmounts(decimal.RequireFromString("100.00"), 6)
		require.NoError(t, err)
		assert.True(t, amounts[0].Equal(decimal.RequireFromString("16.65")), "got %s", amounts[0])
	})

	t.Run("sum always equals amount exactly", func(t *testing.T) {
		cases := []struct {
			amount string
			n      int
		}{
			{"100.00", 3},
			{"0.01", 2},
			{"99.99", 7},
			{"10.00", 1},
			{"1234.56", 13},
		}
		for _, tc := range cases {
			amount := decimal.RequireFromString(tc.amount)
			amounts, err := EqualSplitAmounts(amount, tc.n)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, a := range amounts {
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(amount), "%s / %d: sum %s", tc.amount, tc.n, sum)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := EqualSplitAmounts(decimal.RequireFromString("10.00"), 0)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

		_, err = EqualSplitAmounts(decimal.Zero, 2)
		require.Error(t, err)

		_, err = EqualSplitAmounts(decimal.RequireFromString("-5.00"), 2)
		require.Error(t, err)
	})
}
