// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadcapture_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after intake persisted a new lead.
type LeadCreated struct {
	BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	FullName         string    `json:"fullName"`
	Source           string    `json:"eventName"`
	WantsAppointment bool      `json:"wantsAppointment"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadSynced is published when the CRM accepted the lead.
type LeadSynced struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	CustomerID string    `json:"customerId,omitempty"`
	JobID      string    `json:"jobId,omitempty"`
	ProspectID string    `json:"prospectId,omitempty"`
	Recreated  bool      `json:"recreated"`
}

func (e LeadSynced) EventName() string { return "leads.lead.synced" }

// LeadSyncFailed is published when a sync attempt ended in error status.
type LeadSyncFailed struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Reason string    `json:"reason"`
}

func (e LeadSyncFailed) EventName() string { return "leads.lead.sync_failed" }

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentBooked is published after a slot was reserved.
type AppointmentBooked struct {
	BaseEvent
	AppointmentID uuid.UUID  `json:"appointmentId"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Date          time.Time  `json:"date"`
	TimeSlot      string     `json:"timeSlot"`
	DurationMin   int        `json:"durationMinutes"`
}

func (e AppointmentBooked) EventName() string { return "appointments.appointment.booked" }

// AppointmentCancelled is published after an appointment moved to cancelled.
type AppointmentCancelled struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	Date          time.Time `json:"date"`
	TimeSlot      string    `json:"timeSlot"`
	CancelledBy   string    `json:"cancelledBy,omitempty"`
}

func (e AppointmentCancelled) EventName() string { return "appointments.appointment.cancelled" }
