package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/TheRealPress1/roamiii-backend/api"
	"github.com/TheRealPress1/roamiii-backend/api/routes"
	"github.com/TheRealPress1/roamiii-backend/internal/auth"
	"github.com/TheRealPress1/roamiii-backend/internal/expenses"
	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/internal/users"
	"github.com/TheRealPress1/roamiii-backend/pkg/auth/session"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/migrate"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
	"github.com/TheRealPress1/roamiii-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	tripRepo := trips.NewRepository(gormDB)
	memberRepo := memberships.NewRepository(gormDB)
	proposalRepo := proposals.NewRepository(gormDB)
	expenseRepo := expenses.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)
	messageRepo := messages.NewRepository(gormDB)

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	notifySvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		exitOnWiring(logg, "notifications", err)
	}
	messageSvc, err := messages.NewService(messageRepo)
	if err != nil {
		exitOnWiring(logg, "messages", err)
	}
	authSvc, err := auth.NewService(userRepo, sessionManager, cfg.JWT, logg)
	if err != nil {
		exitOnWiring(logg, "auth", err)
	}
	memberSvc, err := memberships.NewService(dbClient, memberRepo, userRepo, outboxSvc, notifySvc, logg)
	if err != nil {
		exitOnWiring(logg, "memberships", err)
	}
	tripSvc, err := trips.NewService(dbClient, tripRepo, memberRepo, proposalRepo, messageSvc, notifySvc, outboxSvc, logg)
	if err != nil {
		exitOnWiring(logg, "trips", err)
	}
	proposalSvc, err := proposals.NewService(dbClient, proposalRepo, tripRepo, outboxSvc, logg)
	if err != nil {
		exitOnWiring(logg, "proposals", err)
	}
	expenseSvc, err := expenses.NewService(dbClient, expenseRepo, memberRepo, proposalRepo, notifySvc, outboxSvc, logg)
	if err != nil {
		exitOnWiring(logg, "expenses", err)
	}

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
		Auth:          authSvc,
		Trips:         tripSvc,
		Members:       memberSvc,
		Proposals:     proposalSvc,
		Expenses:      expenseSvc,
		Notifications: notifySvc,
		Messages:      messageSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, router, logg)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

func exitOnWiring(logg *logger.Logger, name string, err error) {
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
