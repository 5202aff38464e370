// Package bootstrap holds the wiring shared by the API and worker binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcapture_backend/internal/adapters"
	"leadcapture_backend/internal/appointments/service"
	"leadcapture_backend/internal/crmsync"
	"leadcapture_backend/internal/leads"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leap"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/db"
	"leadcapture_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// CRMConfig combines the settings the CRM wiring reads.
type CRMConfig interface {
	config.LeapConfig
	config.SyncConfig
}

// CRM is the LEAP wiring. A nil *CRM means sync is disabled.
type CRM struct {
	Client  *leap.Client
	Lookups *leap.CachedLookups
	Syncer  *adapters.CRMSyncer
}

// NewCRM builds the CRM client, lookups and reconciler when sync is enabled.
// Without Redis the sync lock is a no-op and lookups are only coalesced.
func NewCRM(cfg CRMConfig, rdb *redis.Client, log *logger.Logger) (*CRM, error) {
	if !cfg.IsLeapSyncEnabled() {
		log.Info("CRM sync disabled")
		return nil, nil
	}

	client, err := leap.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	var locker crmsync.Locker = crmsync.NoopLocker{}
	if rdb != nil {
		locker = crmsync.NewRedisLocker(rdb)
	} else {
		log.Warn("REDIS_URL not configured; CRM sync runs without a per-lead lock")
	}

	reconciler := crmsync.NewReconciler(client, locker, Defaults(cfg), log)
	return &CRM{
		Client:  client,
		Lookups: leap.NewCachedLookups(client, rdb, cfg.GetLeapLookupCacheTTL(), log),
		Syncer:  adapters.NewCRMSyncer(reconciler),
	}, nil
}

// LeadSyncer returns the syncer as the leads port, nil when sync is disabled.
func (c *CRM) LeadSyncer() ports.CRMSyncer {
	if c == nil {
		return nil
	}
	return c.Syncer
}

// Defaults maps the configured routing values onto the reconciler defaults.
func Defaults(cfg config.SyncConfig) crmsync.Defaults {
	d := crmsync.DefaultDefaults()
	if v := cfg.GetDefaultTradeID(); v != 0 {
		d.TradeID = v
	}
	if v := cfg.GetDefaultWorkTypeID(); v != 0 {
		d.WorkTypeID = v
	}
	if v := cfg.GetDefaultRepID(); v != 0 {
		d.RepID = v
	}
	if v := cfg.GetDefaultDivisionID(); v != 0 {
		d.DivisionID = v
	}
	if v := cfg.GetDefaultEventName(); v != "" {
		d.EventName = v
	}
	return d
}

// LeadSettings derives the orchestrator switches from the sync config.
func LeadSettings(cfg config.SyncConfig) leads.Settings {
	return leads.Settings{
		SyncEnabled:      cfg.IsLeapSyncEnabled(),
		DefaultEventName: cfg.GetDefaultEventName(),
		ResyncDelay:      cfg.GetResyncDelay(),
	}
}

// Schedule loads the booking schedule in the configured time zone.
func Schedule(cfg config.BookingConfig) (service.Schedule, error) {
	loc, err := time.LoadLocation(cfg.GetBookingTimezone())
	if err != nil {
		return service.Schedule{}, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", cfg.GetBookingTimezone(), err)
	}
	if path := cfg.GetBookingScheduleFile(); path != "" {
		return service.LoadSchedule(path, loc)
	}
	return service.DefaultSchedule(loc), nil
}

// ConnectDatabase opens the pool, retrying while the database comes up.
func ConnectDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := WithRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

// WithRetry runs fn up to attempts times with quadratic backoff.
func WithRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
