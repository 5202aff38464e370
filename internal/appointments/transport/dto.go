package transport

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus defines the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// IsLive reports whether the status holds a seat in its slot.
func (s AppointmentStatus) IsLive() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Address is the customer's service address.
type Address struct {
	Street  string `json:"street" validate:"max=200"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=50"`
	ZipCode string `json:"zipCode" validate:"max=20"`
}

// CreateAppointmentRequest is the request body for creating an appointment
type CreateAppointmentRequest struct {
	LeadID             *uuid.UUID        `json:"leadId,omitempty"`
	CustomerName       string            `json:"customerName" validate:"required,min=1,max=200"`
	CustomerEmail      string            `json:"customerEmail" validate:"omitempty,email,max=254"`
	CustomerPhone      string            `json:"customerPhone" validate:"omitempty,max=40"`
	Address            Address           `json:"address"`
	ServicesOfInterest []string          `json:"servicesOfInterest,omitempty" validate:"max=20,dive,max=100"`
	TradeIDs           []int64           `json:"tradeIds,omitempty"`
	SalesRepID         *int64            `json:"salesRepId,omitempty"`
	EventName          string            `json:"eventName,omitempty" validate:"max=200"`
	Date               string            `json:"date" validate:"required"`
	TimeSlot           string            `json:"timeSlot" validate:"required,timeslot"`
	Status             AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed"`
	StaffMemberID      *string           `json:"staffMemberId,omitempty" validate:"omitempty,max=100"`
	Notes              string            `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateAppointmentRequest is the request body for updating an appointment.
// Only non-nil fields change.
type UpdateAppointmentRequest struct {
	CustomerName  *string            `json:"customerName,omitempty" validate:"omitempty,min=1,max=200"`
	CustomerEmail *string            `json:"customerEmail,omitempty" validate:"omitempty,email,max=254"`
	CustomerPhone *string            `json:"customerPhone,omitempty" validate:"omitempty,max=40"`
	Date          *string            `json:"date,omitempty"`
	TimeSlot      *string            `json:"timeSlot,omitempty" validate:"omitempty,timeslot"`
	Status        *AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	StaffMemberID *string            `json:"staffMemberId,omitempty" validate:"omitempty,max=100"`
	Notes         *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CancelAppointmentRequest optionally names who cancelled.
type CancelAppointmentRequest struct {
	CancelledBy string `json:"cancelledBy,omitempty" validate:"max=200"`
}

// LeadBookingRequest carries what the lead module knows when it books on a lead's behalf.
type LeadBookingRequest struct {
	LeadID             uuid.UUID
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Address            Address
	ServicesOfInterest []string
	TradeIDs           []int64
	SalesRepID         *int64
	EventName          string
	Date               string
	TimeSlot           string
	StaffMemberID      *string
	Notes              string
}

// ListAppointmentsRequest is the query parameters for listing appointments
type ListAppointmentsRequest struct {
	LeadID   *uuid.UUID         `form:"leadId"`
	Status   *AppointmentStatus `form:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	From     string             `form:"from"`
	To       string             `form:"to"`
	Page     int                `form:"page" validate:"omitempty,min=1"`
	PageSize int                `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// AvailabilityQuery is the query for a multi-day availability check.
type AvailabilityQuery struct {
	Start string `form:"start" validate:"required"`
	End   string `form:"end" validate:"required"`
	Slots string `form:"slots"`
}

// NextAvailableQuery is the query for the next open slot search.
type NextAvailableQuery struct {
	From    string `form:"from"`
	Slots   string `form:"slots"`
	MaxDays int    `form:"maxDays" validate:"omitempty,min=1,max=90"`
}

// StatsQuery bounds the stats aggregation.
type StatsQuery struct {
	From string `form:"from" validate:"required"`
	To   string `form:"to" validate:"required"`
}

// AppointmentResponse is the response body for an appointment
type AppointmentResponse struct {
	ID                 uuid.UUID         `json:"id"`
	LeadID             *uuid.UUID        `json:"leadId,omitempty"`
	CustomerName       string            `json:"customerName"`
	CustomerEmail      string            `json:"customerEmail"`
	CustomerPhone      string            `json:"customerPhone"`
	Address            Address           `json:"address"`
	ServicesOfInterest []string          `json:"servicesOfInterest"`
	TradeIDs           []int64           `json:"tradeIds"`
	SalesRepID         *int64            `json:"salesRepId,omitempty"`
	EventName          string            `json:"eventName"`
	Date               string            `json:"date"`
	TimeSlot           string            `json:"timeSlot"`
	DurationMinutes    int               `json:"duration"`
	Status             AppointmentStatus `json:"status"`
	StaffMemberID      *string           `json:"staffMemberId,omitempty"`
	Notes              string            `json:"notes"`
	LastModifiedBy     *string           `json:"lastModifiedBy,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// AppointmentListResponse is the paginated response for listing appointments
type AppointmentListResponse struct {
	Items      []AppointmentResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// SlotAvailability is the booking state of one labeled slot on one day.
type SlotAvailability struct {
	TimeSlot       string `json:"timeSlot"`
	BookedCount    int    `json:"bookedCount"`
	Capacity       int    `json:"capacity"`
	AvailableSlots int    `json:"availableSlots"`
	Available      bool   `json:"available"`
	Reason         string `json:"reason,omitempty"`
}

// DayAvailability is the booking state of one calendar day.
type DayAvailability struct {
	Date            string             `json:"date"`
	DayOfWeek       string             `json:"dayOfWeek"`
	Closed          bool               `json:"closed"`
	Reason          string             `json:"reason,omitempty"`
	Slots           []SlotAvailability `json:"availability"`
	TotalAvailable  int                `json:"totalAvailable"`
	HasAvailability bool               `json:"hasAvailability"`
}

// NextAvailableResponse is the result of a forward search. Found is false
// when nothing opened up within the search window.
type NextAvailableResponse struct {
	Found          bool   `json:"found"`
	Date           string `json:"date,omitempty"`
	DayOfWeek      string `json:"dayOfWeek,omitempty"`
	TimeSlot       string `json:"timeSlot,omitempty"`
	AvailableSlots int    `json:"availableSlots,omitempty"`
	DaysSearched   int    `json:"daysSearched"`
}

// StatsResponse aggregates appointments by status over a date range.
type StatsResponse struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// ScheduleResponse describes the booking rules clients render forms from.
type ScheduleResponse struct {
	TimeSlots       []string `json:"timeSlots"`
	Capacity        int      `json:"capacityPerSlot"`
	ClosedWeekdays  []string `json:"closedWeekdays"`
	DurationMinutes int      `json:"durationMinutes"`
	MaxScanDays     int      `json:"maxScanDays"`
	Timezone        string   `json:"timezone"`
}
