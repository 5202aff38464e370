// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: domain modules
// no longer need to know about email providers or templates.
package notification

import (
	"context"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/platform/logger"
)

const confirmationDateLayout = "Monday, January 2, 2006"

// Module handles notification-related event subscriptions.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates a new notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.AppointmentBooked{}.EventName(), m)
	bus.Subscribe(events.LeadSyncFailed{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AppointmentBooked:
		return m.handleAppointmentBooked(ctx, e)
	case events.LeadSyncFailed:
		m.log.Warn("lead CRM sync failed", "leadId", e.LeadID, "error", e.Reason)
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleAppointmentBooked(ctx context.Context, e events.AppointmentBooked) error {
	if e.CustomerEmail == "" {
		m.log.Debug("skipping booking confirmation, no customer email", "appointmentId", e.AppointmentID)
		return nil
	}

	err := m.sender.SendAppointmentConfirmation(ctx, e.CustomerEmail, email.AppointmentConfirmation{
		CustomerName:    e.CustomerName,
		Date:            e.Date.Format(confirmationDateLayout),
		TimeSlot:        e.TimeSlot,
		DurationMinutes: e.DurationMin,
	})
	if err != nil {
		m.log.Error("failed to send booking confirmation", "appointmentId", e.AppointmentID, "error", err)
		return err
	}

	m.log.Info("booking confirmation sent", "appointmentId", e.AppointmentID)
	return nil
}

var _ events.Handler = (*Module)(nil)
