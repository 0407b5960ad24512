package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/api/middleware"
	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/api/validators"
	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// CreateTrip starts a new trip with the caller as owner.
func CreateTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input trips.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, trip)
	}
}

func ListTrips(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

func GetTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, middleware.TripURLParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Get(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// AdvanceTripPhase moves the trip to the next planning phase.
func AdvanceTripPhase(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Advance(r.Context(), tripID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// ReopenTripPhase steps the trip back to the previous phase.
func ReopenTripPhase(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Reopen(r.Context(), tripID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

type lockDestinationRequest struct {
	ProposalID uuid.UUID `json:"proposal_id" validate:"required"`
}

// LockTripDestination locks the chosen destination and opens itinerary voting.
func LockTripDestination(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input lockDestinationRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.LockDestination(r.Context(), tripID, userID, input.ProposalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "locked"})
	}
}

// MarkTripReady confirms final dates and completes planning.
func MarkTripReady(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input trips.MarkReadyInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.MarkReady(r.Context(), tripID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// SetTripDeadline sets or clears the voting deadline for the active phase.
func SetTripDeadline(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input trips.SetDeadlineInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetDeadline(r.Context(), tripID, userID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deadline_set"})
	}
}

func tripActor(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	tripID, err := uuidParam(r, middleware.TripURLParam)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := actorID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tripID, userID, nil
}
