package middleware

import (
	"context"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
)

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxAccessID   contextKey = "access_id"
	ctxMembership contextKey = "trip_membership"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// MembershipFromContext returns the caller's membership for the trip in the
// route, seeded by RequireTripMember.
func MembershipFromContext(ctx context.Context) *models.TripMembership {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxMembership).(*models.TripMembership); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func withMembership(ctx context.Context, membership *models.TripMembership) context.Context {
	return context.WithValue(ctx, ctxMembership, membership)
}
