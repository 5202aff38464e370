// Package crmsync keeps a lead's remote customer and job in the LEAP CRM
// consistent with the local record. It creates them on first sync, updates
// them afterwards and recreates them once when the stored ids went stale.
package crmsync

import (
	"github.com/google/uuid"
)

// Address is the postal address sent to the CRM.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// AppointmentDetails are the lead's appointment preferences. PreferredDate is
// a calendar date (YYYY-MM-DD) or empty.
type AppointmentDetails struct {
	PreferredDate string
	PreferredTime string
	Notes         string
}

// RemoteIDs are the CRM identifiers stored on a lead.
type RemoteIDs struct {
	ProspectID    string
	CustomerID    string
	JobID         string
	AppointmentID string
}

// IsZero reports whether the lead has never been linked to a customer or a job.
func (ids RemoteIDs) IsZero() bool {
	return ids.CustomerID == "" && ids.JobID == ""
}

// Lead is the reconciler's view of a lead. It carries no timestamps or sync
// status.
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
	EventName          string
	ReferredBy         string
	ReferralType       string
	ReferralID         *int64
	ReferralNote       string
	IDs                RemoteIDs
}

// Defaults are the routing values applied when a lead carries none.
type Defaults struct {
	TradeID    int64
	WorkTypeID int64
	RepID      int64
	DivisionID int64
	StateID    int
	EventName  string
}

// DefaultDefaults returns the routing values the intake has always used.
func DefaultDefaults() Defaults {
	return Defaults{
		TradeID:    105,
		WorkTypeID: 91139,
		RepID:      88443,
		DivisionID: 6496,
		StateID:    defaultStateID,
		EventName:  "Web Form Submission",
	}
}

func (d Defaults) withFallbacks() Defaults {
	base := DefaultDefaults()
	if d.TradeID == 0 {
		d.TradeID = base.TradeID
	}
	if d.WorkTypeID == 0 {
		d.WorkTypeID = base.WorkTypeID
	}
	if d.RepID == 0 {
		d.RepID = base.RepID
	}
	if d.DivisionID == 0 {
		d.DivisionID = base.DivisionID
	}
	if d.StateID == 0 {
		d.StateID = base.StateID
	}
	if d.EventName == "" {
		d.EventName = base.EventName
	}
	return d
}

// Action names what a sync did to the remote records.
type Action string

const (
	ActionNone        Action = ""
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionRecreated   Action = "recreated"
	ActionTemperature Action = "temperature"
)

// Result is the outcome of a sync. IDs are the identifiers to persist on the
// lead whether or not the sync succeeded.
type Result struct {
	IDs    RemoteIDs
	Action Action
}

// Recreated reports whether stale ids were replaced by new remote records.
func (r Result) Recreated() bool {
	return r.Action == ActionRecreated
}
