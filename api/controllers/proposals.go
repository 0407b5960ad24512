package controllers

import (
	"net/http"
	"strings"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/api/validators"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// CreateProposal adds a destination or itinerary proposal to the trip.
func CreateProposal(svc proposals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input proposals.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proposal, err := svc.Create(r.Context(), tripID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, proposal)
	}
}

// ListProposals returns the trip's proposals for one category, votes included.
// The category query parameter accepts "destination" (default) or "itinerary".
func ListProposals(svc proposals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isDestination := true
		switch strings.TrimSpace(r.URL.Query().Get("category")) {
		case "", "destination":
		case "itinerary":
			isDestination = false
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category must be destination or itinerary"))
			return
		}

		rows, err := svc.List(r.Context(), tripID, isDestination)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// CastVote records or updates the caller's vote on a proposal.
func CastVote(svc proposals.Service, logg *logger.Logger) http.HandlerFunc {
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

		proposal, err := svc.Get(r.Context(), proposalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if proposal.TripID != tripID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found"))
			return
		}

		var input proposals.VoteInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vote, err := svc.CastVote(r.Context(), proposalID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vote)
	}
}
