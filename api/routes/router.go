package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TheRealPress1/roamiii-backend/api/controllers"
	"github.com/TheRealPress1/roamiii-backend/api/middleware"
	"github.com/TheRealPress1/roamiii-backend/internal/auth"
	"github.com/TheRealPress1/roamiii-backend/internal/expenses"
	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/pkg/auth/session"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth          auth.Service
	Trips         trips.Service
	Members       memberships.Service
	Proposals     proposals.Service
	Expenses      expenses.Service
	Notifications notifications.Service
	Messages      messages.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
			r.Get("/me", controllers.AuthMe(svcs.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", controllers.CreateTrip(svcs.Trips, logg))
			r.Get("/", controllers.ListTrips(svcs.Trips, logg))

			r.Route("/{tripId}", func(r chi.Router) {
				// Accepting an invite is the one trip route open to
				// non-active members.
				r.Post("/invite/accept", controllers.AcceptInvite(svcs.Members, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireTripMember(svcs.Members, logg))

					r.Get("/", controllers.GetTrip(svcs.Trips, logg))
					r.Post("/leave", controllers.LeaveTrip(svcs.Members, logg))

					r.Get("/members", controllers.ListMembers(svcs.Members, logg))
					r.Get("/messages", controllers.ListMessages(svcs.Messages, logg))
					r.Post("/messages", controllers.PostMessage(svcs.Messages, logg))

					r.Route("/proposals", func(r chi.Router) {
						r.Get("/", controllers.ListProposals(svcs.Proposals, logg))
						r.Post("/", controllers.CreateProposal(svcs.Proposals, logg))
						r.Post("/{proposalId}/vote", controllers.CastVote(svcs.Proposals, logg))
						r.Post("/{proposalId}/claim-booking", controllers.ClaimBooking(svcs.Expenses, logg))
					})

					r.Route("/expenses", func(r chi.Router) {
						r.Post("/", controllers.CreateExpense(svcs.Expenses, logg))
						r.Get("/", controllers.ListExpenses(svcs.Expenses, logg))
						r.Get("/summary", controllers.ExpenseSummary(svcs.Expenses, logg))
						r.Get("/balance", controllers.MyExpenseBalance(svcs.Expenses, logg))
						r.Post("/settle", controllers.SettleExpenses(svcs.Expenses, logg))
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireTripManager(logg))

						r.Post("/advance", controllers.AdvanceTripPhase(svcs.Trips, logg))
						r.Post("/reopen", controllers.ReopenTripPhase(svcs.Trips, logg))
						r.Post("/lock-destination", controllers.LockTripDestination(svcs.Trips, logg))
						r.Post("/ready", controllers.MarkTripReady(svcs.Trips, logg))
						r.Post("/deadline", controllers.SetTripDeadline(svcs.Trips, logg))

						r.Post("/members/invite", controllers.InviteMember(svcs.Members, logg))
						r.Delete("/members/{memberId}", controllers.RemoveMember(svcs.Members, logg))
						r.Patch("/members/{memberId}/role", controllers.ChangeMemberRole(svcs.Members, logg))
					})
				})
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
