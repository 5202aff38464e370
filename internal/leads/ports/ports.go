// Package ports defines what the leads module needs from other modules.
// Implementations live in internal/adapters and are wired in cmd/.
package ports

import (
	"context"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// BookingParams is what leads knows when it books on a lead's behalf.
type BookingParams struct {
	LeadID             uuid.UUID
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Address            domain.Address
	ServicesOfInterest []string
	TradeIDs           []int64
	SalesRepID         *int64
	EventName          string
	Date               string
	TimeSlot           string
	StaffMemberID      *string
	Notes              string
}

// BookedAppointment is the part of a booking leads reports back.
type BookedAppointment struct {
	ID       uuid.UUID
	Date     string
	TimeSlot string
	Status   string
}

// AppointmentBooker books or reschedules the appointment of a lead.
type AppointmentBooker interface {
	// BookForLead updates the lead's live appointment when it has one and
	// creates one otherwise.
	BookForLead(ctx context.Context, params BookingParams) (*BookedAppointment, error)
}

// SyncOutcome is what a CRM sync produced. IDs are valid even on failure.
type SyncOutcome struct {
	IDs       domain.RemoteIDs
	Recreated bool
}

// CRMSyncer reconciles a lead with the external CRM.
type CRMSyncer interface {
	Sync(ctx context.Context, lead domain.Lead) (SyncOutcome, error)
	SyncTemperature(ctx context.Context, lead domain.Lead) (SyncOutcome, error)
	TemperatureOnlyChange(prev, next domain.Lead) bool
}

// ResyncScheduler hands resync work to the background worker.
type ResyncScheduler interface {
	EnqueueSyncPending(ctx context.Context) error
	// EnqueueResyncLead schedules a single lead for a later resync.
	EnqueueResyncLead(ctx context.Context, leadID uuid.UUID) error
}
