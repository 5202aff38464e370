package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadcapture_backend/platform/logger"
)

type syncConfig struct {
	enabled bool
	tradeID int64
	event   string
}

func (c syncConfig) IsLeapSyncEnabled() bool       { return c.enabled }
func (c syncConfig) GetDefaultTradeID() int64      { return c.tradeID }
func (c syncConfig) GetDefaultWorkTypeID() int64   { return 0 }
func (c syncConfig) GetDefaultRepID() int64        { return 0 }
func (c syncConfig) GetDefaultDivisionID() int64   { return 0 }
func (c syncConfig) GetDefaultEventName() string   { return c.event }
func (c syncConfig) GetResyncDelay() time.Duration { return 250 * time.Millisecond }

func (c syncConfig) GetLeapBaseURL() string               { return "" }
func (c syncConfig) GetLeapAPIToken() string              { return "" }
func (c syncConfig) GetLeapTimeout() time.Duration        { return 0 }
func (c syncConfig) GetLeapLookupCacheTTL() time.Duration { return 0 }

func TestDefaultsKeepBuiltInsForUnsetValues(t *testing.T) {
	d := Defaults(syncConfig{tradeID: 7, event: "Home Show"})
	if d.TradeID != 7 || d.EventName != "Home Show" {
		t.Fatalf("configured values not applied: %+v", d)
	}
	if d.WorkTypeID != 91139 || d.RepID != 88443 || d.DivisionID != 6496 {
		t.Fatalf("built-in defaults lost: %+v", d)
	}
}

func TestNewCRMDisabled(t *testing.T) {
	crm, err := NewCRM(syncConfig{}, nil, logger.Discard())
	if err != nil || crm != nil {
		t.Fatalf("expected no CRM wiring, got %v %v", crm, err)
	}
	if crm.LeadSyncer() != nil {
		t.Fatalf("expected a nil syncer interface")
	}
}

func TestNewCRMRequiresToken(t *testing.T) {
	if _, err := NewCRM(syncConfig{enabled: true}, nil, logger.Discard()); err == nil {
		t.Fatalf("expected configuration error without a token")
	}
}

type bookingConfig struct{ tz string }

func (c bookingConfig) GetBookingTimezone() string     { return c.tz }
func (c bookingConfig) GetBookingScheduleFile() string { return "" }

func TestScheduleRejectsUnknownZone(t *testing.T) {
	if _, err := Schedule(bookingConfig{tz: "Mars/Olympus"}); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
	if _, err := Schedule(bookingConfig{tz: "America/Chicago"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), logger.Discard(), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second call, got %v after %d", err, calls)
	}

	err = WithRetry(context.Background(), logger.Discard(), "op", 2, time.Millisecond, func() error {
		return errors.New("down")
	})
	if err == nil || err.Error() != "op: down" {
		t.Fatalf("unexpected error %v", err)
	}
}
