package expenses

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer is one suggested repayment.
type Transfer struct {
	From   uuid.UUID       `json:"from"`
	To     uuid.UUID       `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// centEpsilon guards against sub-cent residue from accumulated arithmetic.
var centEpsilon = decimal.New(1, -2)

type party struct {
	userID uuid.UUID
	amount decimal.Decimal
}

// Settle produces a minimal transfer set that zeroes all balances: the
// largest creditor is repeatedly matched against the largest debtor for
// min(|credit|, |debt|). For n members with nonzero balance this emits at
// most n-1 transfers.
func Settle(balances map[uuid.UUID]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for userID, balance := range balances {
		switch {
		case balance.GreaterThanOrEqual(centEpsilon):
			creditors = append(creditors, party{userID: userID, amount: balance})
		case balance.Neg().GreaterThanOrEqual(centEpsilon):
			debtors = append(debtors, party{userID: userID, amount: balance.Neg()})
		}
	}

	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := decimal.Min(creditor.amount, debtor.amount)
		transfers = append(transfers, Transfer{
			From:   debtor.userID,
			To:     creditor.userID,
			Amount: amount,
		})

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)
		if creditor.amount.LessThan(centEpsilon) {
			i++
		}
		if debtor.amount.LessThan(centEpsilon) {
			j++
		}
	}
	return transfers
}

// sortParties orders largest amount first, with the user ID as a stable
// tie-break so the suggested transfers are deterministic.
func sortParties(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		cmp := parties[a].amount.Cmp(parties[b].amount)
		if cmp != 0 {
			return cmp > 0
		}
		return parties[a].userID.String() < parties[b].userID.String()
	})
}
