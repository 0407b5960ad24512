package controllers

import (
	"net/http"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/api/validators"
	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

type inviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InviteMember invites a registered user to the trip by email.
func InviteMember(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input inviteMemberRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		membership, err := svc.Invite(r.Context(), tripID, userID, input.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, membership)
	}
}

// AcceptInvite activates the caller's pending invite.
func AcceptInvite(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Accept(r.Context(), tripID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "active"})
	}
}

// LeaveTrip removes the caller from the trip roster.
func LeaveTrip(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Leave(r.Context(), tripID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "left"})
	}
}

// RemoveMember kicks another member off the trip.
func RemoveMember(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuidParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), tripID, userID, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// ChangeMemberRole promotes or demotes a member between admin and member.
func ChangeMemberRole(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuidParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input changeRoleRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseMemberRole(input.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		if err := svc.ChangeRole(r.Context(), tripID, targetID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "role_changed"})
	}
}

func ListMembers(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.List(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": members})
	}
}
