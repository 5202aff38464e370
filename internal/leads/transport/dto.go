package transport

import (
	"time"

	"github.com/google/uuid"
)

// Address is the lead's postal address.
type Address struct {
	Street  string `json:"street" validate:"max=200"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=50"`
	ZipCode string `json:"zipCode" validate:"max=20"`
}

// AppointmentDetails are the lead's appointment preferences.
type AppointmentDetails struct {
	StaffMemberID *string `json:"staffMemberId,omitempty" validate:"omitempty,max=100"`
	PreferredDate string  `json:"preferredDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PreferredTime string  `json:"preferredTime,omitempty" validate:"omitempty,max=20"`
	Notes         string  `json:"notes,omitempty" validate:"max=2000"`
}

// CreateLeadRequest is the public intake form.
type CreateLeadRequest struct {
	FullName           string              `json:"fullName" validate:"required,min=1,max=200"`
	Email              string              `json:"email" validate:"required,email,max=254"`
	Phone              string              `json:"phone" validate:"required,min=7,max=40"`
	Address            Address             `json:"address"`
	ServicesOfInterest []string            `json:"servicesOfInterest,omitempty" validate:"max=20,dive,max=100"`
	TradeIDs           []int64             `json:"tradeIds,omitempty" validate:"max=20"`
	WorkTypeIDs        []int64             `json:"workTypeIds,omitempty" validate:"max=20"`
	SalesRepID         *int64              `json:"salesRepId,omitempty"`
	CallCenterRepID    *int64              `json:"callCenterRepId,omitempty"`
	DivisionID         *int64              `json:"divisionId,omitempty"`
	TempRating         *int                `json:"tempRating,omitempty" validate:"omitempty,min=1,max=10"`
	Notes              string              `json:"notes,omitempty" validate:"max=5000"`
	WantsAppointment   bool                `json:"wantsAppointment"`
	AppointmentDetails *AppointmentDetails `json:"appointmentDetails,omitempty"`
	EventName          string              `json:"eventName,omitempty" validate:"max=200"`
	ReferredBy         string              `json:"referredBy,omitempty" validate:"max=200"`
	ReferralType       string              `json:"referralType,omitempty" validate:"max=50"`
	ReferralID         *int64              `json:"referralId,omitempty"`
	ReferralNote       string              `json:"referralNote,omitempty" validate:"max=1000"`
}

// UpdateLeadRequest patches a lead. Only non-nil fields change.
type UpdateLeadRequest struct {
	FullName           *string             `json:"fullName,omitempty" validate:"omitempty,min=1,max=200"`
	Email              *string             `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone              *string             `json:"phone,omitempty" validate:"omitempty,min=7,max=40"`
	Address            *Address            `json:"address,omitempty"`
	ServicesOfInterest []string            `json:"servicesOfInterest,omitempty" validate:"omitempty,max=20,dive,max=100"`
	TradeIDs           []int64             `json:"tradeIds,omitempty" validate:"omitempty,max=20"`
	WorkTypeIDs        []int64             `json:"workTypeIds,omitempty" validate:"omitempty,max=20"`
	SalesRepID         *int64              `json:"salesRepId,omitempty"`
	CallCenterRepID    *int64              `json:"callCenterRepId,omitempty"`
	DivisionID         *int64              `json:"divisionId,omitempty"`
	TempRating         *int                `json:"tempRating,omitempty" validate:"omitempty,min=1,max=10"`
	Notes              *string             `json:"notes,omitempty" validate:"omitempty,max=5000"`
	WantsAppointment   *bool               `json:"wantsAppointment,omitempty"`
	AppointmentDetails *AppointmentDetails `json:"appointmentDetails,omitempty"`
	ReferredBy         *string             `json:"referredBy,omitempty" validate:"omitempty,max=200"`
	ReferralType       *string             `json:"referralType,omitempty" validate:"omitempty,max=50"`
	ReferralID         *int64              `json:"referralId,omitempty"`
	ReferralNote       *string             `json:"referralNote,omitempty" validate:"omitempty,max=1000"`
}

// SetAppointmentPreferencesRequest books or moves the lead's appointment.
type SetAppointmentPreferencesRequest struct {
	PreferredDate string  `json:"preferredDate" validate:"required,datetime=2006-01-02"`
	PreferredTime string  `json:"preferredTime" validate:"required,timeslot"`
	StaffMemberID *string `json:"staffMemberId,omitempty" validate:"omitempty,max=100"`
	Notes         string  `json:"notes,omitempty" validate:"max=2000"`
}

// ListLeadsRequest is the query for listing leads.
type ListLeadsRequest struct {
	SyncStatus *string `form:"syncStatus" validate:"omitempty,oneof=pending synced error"`
	Search     string  `form:"search" validate:"max=100"`
	Page       int     `form:"page" validate:"omitempty,min=1"`
	PageSize   int     `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CRMIDs are the lead's identifiers in the CRM.
type CRMIDs struct {
	ProspectID    string `json:"prospectId,omitempty"`
	CustomerID    string `json:"customerId,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	AppointmentID string `json:"appointmentId,omitempty"`
}

// LeadResponse is a lead as the API returns it.
type LeadResponse struct {
	ID                 uuid.UUID           `json:"id"`
	FullName           string              `json:"fullName"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Address            Address             `json:"address"`
	ServicesOfInterest []string            `json:"servicesOfInterest"`
	TradeIDs           []int64             `json:"tradeIds"`
	WorkTypeIDs        []int64             `json:"workTypeIds"`
	SalesRepID         *int64              `json:"salesRepId,omitempty"`
	CallCenterRepID    *int64              `json:"callCenterRepId,omitempty"`
	DivisionID         *int64              `json:"divisionId,omitempty"`
	TempRating         *int                `json:"tempRating,omitempty"`
	Notes              string              `json:"notes"`
	WantsAppointment   bool                `json:"wantsAppointment"`
	AppointmentDetails *AppointmentDetails `json:"appointmentDetails,omitempty"`
	EventID            *uuid.UUID          `json:"eventId,omitempty"`
	EventName          string              `json:"eventName"`
	ReferredBy         string              `json:"referredBy,omitempty"`
	ReferralType       string              `json:"referralType,omitempty"`
	ReferralID         *int64              `json:"referralId,omitempty"`
	ReferralNote       string              `json:"referralNote,omitempty"`
	CRM                CRMIDs              `json:"crm"`
	SyncStatus         string              `json:"syncStatus"`
	SyncError          string              `json:"syncError,omitempty"`
	LastSyncedAt       *time.Time          `json:"lastSyncedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// AppointmentSummary is the appointment booked alongside a lead.
type AppointmentSummary struct {
	ID       uuid.UUID `json:"id"`
	Date     string    `json:"date"`
	TimeSlot string    `json:"timeSlot"`
	Status   string    `json:"status"`
}

// CreateLeadResponse is the intake result. Appointment is absent when
// none was requested or booking failed.
type CreateLeadResponse struct {
	Lead        LeadResponse        `json:"lead"`
	Appointment *AppointmentSummary `json:"appointment,omitempty"`
}

// LeadListResponse is the paginated lead list.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// ResyncResponse is the result of a manual resync.
type ResyncResponse struct {
	Lead   LeadResponse `json:"lead"`
	Synced bool         `json:"synced"`
	Error  string       `json:"error,omitempty"`
}

// BulkOutcome summarizes a bulk resync.
type BulkOutcome string

const (
	BulkOutcomeNone    BulkOutcome = "none"
	BulkOutcomeSuccess BulkOutcome = "success"
	BulkOutcomePartial BulkOutcome = "partial"
	BulkOutcomeFailure BulkOutcome = "failure"
)

// BulkResyncItem is the result for one lead of a bulk resync.
type BulkResyncItem struct {
	LeadID  uuid.UUID `json:"leadId"`
	Synced  bool      `json:"synced"`
	Skipped bool      `json:"skipped,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// BulkResyncResponse tallies a bulk resync of pending leads.
type BulkResyncResponse struct {
	Outcome   BulkOutcome      `json:"outcome"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Results   []BulkResyncItem `json:"results"`
}

// CreateEventRequest creates a grouping event.
type CreateEventRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location,omitempty" validate:"max=200"`
	StartsOn string `json:"startsOn,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndsOn   string `json:"endsOn,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// EventResponse is an event as the API returns it.
type EventResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	StartsOn  string    `json:"startsOn,omitempty"`
	EndsOn    string    `json:"endsOn,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
