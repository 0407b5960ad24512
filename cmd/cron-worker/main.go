package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TheRealPress1/roamiii-backend/internal/cron"
	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/internal/trips"
	"github.com/TheRealPress1/roamiii-backend/internal/voting"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/metrics"
	"github.com/TheRealPress1/roamiii-backend/pkg/migrate"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
	"github.com/TheRealPress1/roamiii-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	gormDB := dbClient.DB()
	tripRepo := trips.NewRepository(gormDB)
	memberRepo := memberships.NewRepository(gormDB)
	proposalRepo := proposals.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)
	messageSvc, err := messages.NewService(messages.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}
	notifySvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	tripSvc, err := trips.NewService(dbClient, tripRepo, memberRepo, proposalRepo, messageSvc, notifySvc, outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create trips service", err)
		os.Exit(1)
	}

	votingMetrics := metrics.NewVotingMetrics(prometheus.DefaultRegisterer)
	votingSvc, err := voting.NewService(dbClient, tripRepo, tripSvc, proposalRepo, memberRepo, messageSvc, outboxSvc, votingMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create voting service", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()

	cleanupJob, err := cron.NewNotificationCleanupJob(notificationRepo, logg, cfg.Cron.NotificationMaxAge)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}
	registry.Register(cleanupJob)

	if cfg.Cron.DeadlineSweepEnabled {
		sweepJob, err := cron.NewDeadlineSweepJob(tripRepo, votingSvc, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create deadline sweep job", err)
			os.Exit(1)
		}
		registry.Register(sweepJob)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("maintenance-cycle"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
