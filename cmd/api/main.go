package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"leadcapture_backend/internal/adapters"
	"leadcapture_backend/internal/appointments"
	"leadcapture_backend/internal/auth"
	"leadcapture_backend/internal/bootstrap"
	"leadcapture_backend/internal/crm"
	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/http/router"
	"leadcapture_backend/internal/leads"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/notification"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/migrations"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/db"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/telemetry"
	"leadcapture_backend/platform/validator"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	shutdownTracing, err := telemetry.Setup(ctx, "leadcapture-api", cfg)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		panic("failed to initialize tracing: " + err.Error())
	}

	pool, err := bootstrap.ConnectDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := bootstrap.WithRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	rdb, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	resyncScheduler, closeScheduler := initResyncScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	notification.New(email.NewSender(cfg), log).RegisterHandlers(eventBus)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	schedule, err := bootstrap.Schedule(cfg)
	if err != nil {
		log.Error("failed to load booking schedule", "error", err)
		panic("failed to load booking schedule: " + err.Error())
	}

	appointmentsModule, err := appointments.NewModule(pool, schedule, val, eventBus, log)
	if err != nil {
		panic("failed to initialize appointments module: " + err.Error())
	}

	crmWiring, err := bootstrap.NewCRM(cfg, rdb, log)
	if err != nil {
		log.Error("invalid CRM configuration", "error", err)
		panic("invalid CRM configuration: " + err.Error())
	}

	// Anti-corruption adapters: leads -> appointments, leads -> crmsync
	booker := adapters.NewAppointmentBooker(appointmentsModule.Service)
	leadsModule := leads.NewModule(pool, eventBus, val, bootstrap.LeadSettings(cfg), booker, crmWiring.LeadSyncer(), resyncScheduler, log)

	modules := []apphttp.Module{
		auth.NewModule(cfg, val, log),
		leadsModule,
		appointmentsModule,
	}
	if crmWiring != nil {
		modules = append(modules, crm.NewModule(crmWiring.Client, crmWiring.Lookups))
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router.New(app), "leadcapture-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http server shutdown incomplete", "error", err)
		}
		eventBus.Wait()
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initResyncScheduler returns an untyped nil port when no worker queue is
// configured, so the leads service sees "no scheduler".
func initResyncScheduler(cfg config.SchedulerConfig, log *logger.Logger) (ports.ResyncScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background resync disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize resync scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
