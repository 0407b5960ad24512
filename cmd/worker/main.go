package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

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
	"github.com/TheRealPress1/roamiii-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	gormDB := dbClient.DB()
	tripRepo := trips.NewRepository(gormDB)
	memberRepo := memberships.NewRepository(gormDB)
	proposalRepo := proposals.NewRepository(gormDB)

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	messageSvc, err := messages.NewService(messages.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}
	notifySvc, err := notifications.NewService(notifications.NewRepository(gormDB))
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

	scheduler, err := voting.NewScheduler(cfg.Voting, votingSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create voting scheduler", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	consumer, err := NewConsumer(votingSvc, scheduler, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting trip events worker")

	// Pending deadline checks are lost on restart. Re-arm them before taking
	// traffic; the daily sweep remains the backstop if this pass fails.
	if err := rearmDeadlineTimers(ctx, tripRepo, scheduler, logg); err != nil {
		logg.Error(ctx, "failed to re-arm deadline timers", err)
	}

	sub := pubsubClient.TripSubscription()
	err = sub.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if err := consumer.Handle(msgCtx, msg.Attributes, msg.Data); err != nil {
			logg.Error(msgCtx, "event handling failed, nacking", err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}
