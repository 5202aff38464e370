package adapters

import (
	"context"

	"leadcapture_backend/internal/appointments/service"
	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/internal/leads/ports"
)

// AppointmentBooker adapts the appointments service for use by the leads domain.
// It implements the leads/ports.AppointmentBooker interface.
type AppointmentBooker struct {
	apptService *service.Service
}

// NewAppointmentBooker creates a new adapter that wraps the appointments service.
func NewAppointmentBooker(apptService *service.Service) *AppointmentBooker {
	return &AppointmentBooker{apptService: apptService}
}

// BookForLead translates the leads domain's BookingParams into the
// appointments domain's LeadBookingRequest. The appointments service moves
// the lead's live appointment when it has one and books a new one otherwise.
func (a *AppointmentBooker) BookForLead(ctx context.Context, params ports.BookingParams) (*ports.BookedAppointment, error) {
	resp, err := a.apptService.UpsertForLead(ctx, transport.LeadBookingRequest{
		LeadID:        params.LeadID,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		CustomerPhone: params.CustomerPhone,
		Address: transport.Address{
			Street:  params.Address.Street,
			City:    params.Address.City,
			State:   params.Address.State,
			ZipCode: params.Address.ZipCode,
		},
		ServicesOfInterest: params.ServicesOfInterest,
		TradeIDs:           params.TradeIDs,
		SalesRepID:         params.SalesRepID,
		EventName:          params.EventName,
		Date:               params.Date,
		TimeSlot:           params.TimeSlot,
		StaffMemberID:      params.StaffMemberID,
		Notes:              params.Notes,
	})
	if err != nil {
		return nil, err
	}

	return &ports.BookedAppointment{
		ID:       resp.ID,
		Date:     resp.Date,
		TimeSlot: resp.TimeSlot,
		Status:   string(resp.Status),
	}, nil
}

var _ ports.AppointmentBooker = (*AppointmentBooker)(nil)
