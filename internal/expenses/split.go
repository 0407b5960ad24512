package expenses

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
)

// EqualSplitAmounts divides amount evenly across n participants, rounding to
// the cent. Every participant after the first pays the rounded per-person
// share; the first participant also absorbs the rounding remainder, so the
// returned amounts always sum to amount exactly. The remainder assignment
// must stay on the first-listed participant for compatibility with existing
// split data.
func EqualSplitAmounts(amount decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one participant required")
	}
	if amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	perPerson := amount.Div(decimal.NewFromInt(int64(n))).Round(2)
	remainder := amount.Sub(perPerson.Mul(decimal.NewFromInt(int64(n)))).Round(2)

	amounts := make([]decimal.Decimal, n)
	amounts[0] = perPerson.Add(remainder)
	for i := 1; i < n; i++ {
		amounts[i] = perPerson
	}
	return amounts, nil
}
