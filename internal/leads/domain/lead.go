// Package domain holds the lead aggregate and its sync state rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the CRM reconciliation state of a lead.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

const fallbackSyncError = "CRM sync failed"

// Address is a lead's postal address.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// AppointmentDetails are the lead's appointment preferences.
type AppointmentDetails struct {
	StaffMemberID *string
	PreferredDate string
	PreferredTime string
	Notes         string
}

// RemoteIDs are the CRM identifiers of a lead. Empty means unset.
type RemoteIDs struct {
	ProspectID    string
	CustomerID    string
	JobID         string
	AppointmentID string
}

// IsZero reports whether no remote identifier is set.
func (r RemoteIDs) IsZero() bool {
	return r == RemoteIDs{}
}

// Lead is a captured prospective customer.
type Lead struct {
	ID                 uuid.UUID
	FullName           string
	Email              string
	Phone              string
	Address            Address
	ServicesOfInterest []string
	TradeIDs           []int64
	WorkTypeIDs        []int64
	SalesRepID         *int64
	CallCenterRepID    *int64
	DivisionID         *int64
	TempRating         *int
	Notes              string
	WantsAppointment   bool
	Appointment        *AppointmentDetails
	EventID            *uuid.UUID
	EventName          string
	ReferredBy         string
	ReferralType       string
	ReferralID         *int64
	ReferralNote       string
	Remote             RemoteIDs
	SyncStatus         SyncStatus
	SyncError          string
	LastSyncedAt       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Linked reports whether the lead has been synced to a remote customer or job.
func (l *Lead) Linked() bool {
	return l.Remote.CustomerID != "" || l.Remote.JobID != ""
}

// MarkSynced records a successful sync.
func (l *Lead) MarkSynced(ids RemoteIDs, at time.Time) {
	l.Remote = ids
	l.SyncStatus = SyncSynced
	l.SyncError = ""
	l.LastSyncedAt = &at
}

// MarkSyncFailed records a failed sync. The status never ends in error
// without a message.
func (l *Lead) MarkSyncFailed(ids RemoteIDs, reason string) {
	if reason == "" {
		reason = fallbackSyncError
	}
	l.Remote = ids
	l.SyncStatus = SyncError
	l.SyncError = reason
}

// Event is a grouping label (trade show, campaign) leads are captured under.
type Event struct {
	ID        uuid.UUID
	Name      string
	Location  string
	StartsOn  *time.Time
	EndsOn    *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
