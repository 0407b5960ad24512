package controllers

import (
	"net/http"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/api/validators"
	"github.com/TheRealPress1/roamiii-backend/internal/expenses"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// CreateExpense records a shared expense paid by the caller.
func CreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input expenses.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), tripID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ClaimBooking records a booking payment for an itinerary proposal as an
// expense split across the whole active roster.
func ClaimBooking(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		proposalID, err := uuidParam(r, "proposalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input expenses.ClaimBookingInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.ClaimBooking(r.Context(), tripID, proposalID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ListExpenses returns the trip's expenses.
func ListExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// ExpenseSummary returns the trip ledger: totals, balances, and the suggested
// settlement transfers.
func ExpenseSummary(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// MyExpenseBalance returns the caller's net position on the trip.
func MyExpenseBalance(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.BalanceFor(r.Context(), tripID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// SettleExpenses marks a batch of splits as settled.
func SettleExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input expenses.SettleInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settled, err := svc.Settle(r.Context(), tripID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"settled": settled})
	}
}
