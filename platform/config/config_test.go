package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadAppliesCRMDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GetDefaultTradeID() != 105 || cfg.GetDefaultWorkTypeID() != 91139 {
		t.Fatalf("expected trade 105 / work type 91139, got %d / %d", cfg.GetDefaultTradeID(), cfg.GetDefaultWorkTypeID())
	}
	if cfg.GetDefaultRepID() != 88443 || cfg.GetDefaultDivisionID() != 6496 {
		t.Fatalf("expected rep 88443 / division 6496, got %d / %d", cfg.GetDefaultRepID(), cfg.GetDefaultDivisionID())
	}
	if cfg.GetDefaultEventName() != "Web Form Submission" {
		t.Fatalf("unexpected default event name %q", cfg.GetDefaultEventName())
	}
	if cfg.GetLeapTimeout() != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.GetLeapTimeout())
	}
	if cfg.GetResyncDelay() != 500*time.Millisecond {
		t.Fatalf("expected 500ms resync delay, got %s", cfg.GetResyncDelay())
	}
	if cfg.IsLeapSyncEnabled() {
		t.Fatalf("expected sync to be disabled by default")
	}
}

func TestLoadRequiresTokenWhenSyncEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("ENABLE_LEAP_SYNC", "true")
	t.Setenv("LEAP_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when sync is enabled without a token")
	}

	t.Setenv("LEAP_API_TOKEN", "Bearer abc")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsLeapSyncEnabled() || cfg.GetLeapAPIToken() != "Bearer abc" {
		t.Fatalf("expected sync enabled with token, got %v %q", cfg.IsLeapSyncEnabled(), cfg.GetLeapAPIToken())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoadRejectsBadResyncDelay(t *testing.T) {
	for _, value := range []string{"half a second", "500", "0s", "-1s"} {
		t.Run(value, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SYNC_RESYNC_DELAY", value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected %q to be rejected", value)
			}
		})
	}

	setRequired(t)
	t.Setenv("SYNC_RESYNC_DELAY", "250ms")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetResyncDelay() != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.GetResyncDelay())
	}
}

func TestWildcardOriginEnablesAllowAll(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatalf("expected wildcard origin to enable allow-all")
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.GetCORSOrigins())
	}
}
