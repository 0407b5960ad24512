package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// TripURLParam is the chi route parameter naming the trip.
const TripURLParam = "tripId"

// RequireTripMember resolves the caller's active membership for the trip in
// the route and stashes it in the request context. Non-members get a 403.
func RequireTripMember(members memberships.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if members == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
				return
			}

			userID, err := uuid.Parse(UserIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			tripID, err := uuid.Parse(chi.URLParam(r, TripURLParam))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id"))
				return
			}

			membership, err := members.GetActive(ctx, tripID, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if membership == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this trip"))
				return
			}

			ctx = withMembership(ctx, membership)
			if logg != nil {
				ctx = logg.WithTripID(ctx, tripID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTripManager rejects callers whose membership role cannot manage the
// trip. Must run after RequireTripMember.
func RequireTripManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			membership := MembershipFromContext(ctx)
			if membership == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this trip"))
				return
			}
			if !membership.Role.CanManageTrip() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "requires an organizer role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
