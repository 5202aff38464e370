package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	to   []string
	sent []email.AppointmentConfirmation
	err  error
}

func (s *testSender) SendAppointmentConfirmation(_ context.Context, to string, data email.AppointmentConfirmation) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, data)
	return nil
}

func bookedEvent(customerEmail string) events.AppointmentBooked {
	return events.AppointmentBooked{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: uuid.New(),
		CustomerName:  "Jane Q Public",
		CustomerEmail: customerEmail,
		Date:          time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot:      "10:30 AM",
		DurationMin:   90,
	}
}

func TestAppointmentBookedSendsConfirmation(t *testing.T) {
	sender := &testSender{}
	m := New(sender, logger.Discard())

	if err := m.Handle(context.Background(), bookedEvent("jane@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.to[0] != "jane@example.com" {
		t.Fatalf("expected one confirmation to the customer, got %v", sender.to)
	}
	if got := sender.sent[0].Date; got != "Friday, August 15, 2025" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestAppointmentBookedWithoutEmailIsSkipped(t *testing.T) {
	sender := &testSender{}
	m := New(sender, logger.Discard())

	if err := m.Handle(context.Background(), bookedEvent("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no e-mail, got %d", len(sender.sent))
	}
}

func TestAppointmentBookedSendFailureIsReturned(t *testing.T) {
	m := New(&testSender{err: errors.New("smtp send: connection refused")}, logger.Discard())
	if err := m.Handle(context.Background(), bookedEvent("jane@example.com")); err == nil {
		t.Fatalf("expected send error to be returned to the bus")
	}
}

func TestLeadSyncFailedIsLogged(t *testing.T) {
	var buf bytes.Buffer
	m := New(nil, logger.NewWithWriter("production", &buf))

	err := m.Handle(context.Background(), events.LeadSyncFailed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Reason:    "LEAP CRM Error: Bad Gateway",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "LEAP CRM Error: Bad Gateway") {
		t.Fatalf("expected warn log with the reason, got %s", out)
	}
}

func TestRegisterHandlersDeliversThroughBus(t *testing.T) {
	sender := &testSender{}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), bookedEvent("jane@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected confirmation through the bus, got %d", len(sender.sent))
	}
}
