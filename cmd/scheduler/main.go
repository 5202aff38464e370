package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"leadcapture_backend/internal/bootstrap"
	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads"
	"leadcapture_backend/internal/notification"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/telemetry"
	"leadcapture_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "cron", cfg.GetSyncPendingCron())

	if !cfg.IsLeapSyncEnabled() {
		log.Error("ENABLE_LEAP_SYNC is false; the scheduler has nothing to do")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "leadcapture-scheduler", cfg)
	if err != nil {
		panic("failed to initialize tracing: " + err.Error())
	}

	pool, err := bootstrap.ConnectDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	rdb, err := scheduler.NewRedisClient(cfg)
	if err != nil || rdb == nil {
		log.Error("the scheduler requires REDIS_URL", "error", err)
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	eventBus := events.NewInMemoryBus(log)
	notification.New(email.NewSender(cfg), log).RegisterHandlers(eventBus)

	crmWiring, err := bootstrap.NewCRM(cfg, rdb, log)
	if err != nil {
		log.Error("invalid CRM configuration", "error", err)
		panic("invalid CRM configuration: " + err.Error())
	}

	// The worker only resyncs; it never books, so no appointment booker.
	leadsModule := leads.NewModule(pool, eventBus, validator.New(), bootstrap.LeadSettings(cfg), nil, crmWiring.LeadSyncer(), client, log)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	if err := worker.Run(ctx); err != nil {
		log.Error("scheduler stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	eventBus.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown incomplete", "error", err)
	}
}
