package service

import (
	"strings"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/sanitize"
)

func toDomainAddress(a transport.Address) domain.Address {
	return domain.Address{
		Street:  sanitize.Text(a.Street),
		City:    sanitize.Text(a.City),
		State:   strings.ToUpper(strings.TrimSpace(a.State)),
		ZipCode: strings.TrimSpace(a.ZipCode),
	}
}

func toDomainAppointment(d *transport.AppointmentDetails) *domain.AppointmentDetails {
	if d == nil {
		return nil
	}
	return &domain.AppointmentDetails{
		StaffMemberID: sanitize.TextPtr(d.StaffMemberID),
		PreferredDate: strings.TrimSpace(d.PreferredDate),
		PreferredTime: strings.TrimSpace(d.PreferredTime),
		Notes:         sanitize.Text(d.Notes),
	}
}

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:       l.ID,
		FullName: l.FullName,
		Email:    l.Email,
		Phone:    l.Phone,
		Address: transport.Address{
			Street:  l.Address.Street,
			City:    l.Address.City,
			State:   l.Address.State,
			ZipCode: l.Address.ZipCode,
		},
		ServicesOfInterest: nonNil(l.ServicesOfInterest),
		TradeIDs:           nonNil(l.TradeIDs),
		WorkTypeIDs:        nonNil(l.WorkTypeIDs),
		SalesRepID:         l.SalesRepID,
		CallCenterRepID:    l.CallCenterRepID,
		DivisionID:         l.DivisionID,
		TempRating:         l.TempRating,
		Notes:              l.Notes,
		WantsAppointment:   l.WantsAppointment,
		EventID:            l.EventID,
		EventName:          l.EventName,
		ReferredBy:         l.ReferredBy,
		ReferralType:       l.ReferralType,
		ReferralID:         l.ReferralID,
		ReferralNote:       l.ReferralNote,
		CRM: transport.CRMIDs{
			ProspectID:    l.Remote.ProspectID,
			CustomerID:    l.Remote.CustomerID,
			JobID:         l.Remote.JobID,
			AppointmentID: l.Remote.AppointmentID,
		},
		SyncStatus:   string(l.SyncStatus),
		SyncError:    l.SyncError,
		LastSyncedAt: l.LastSyncedAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if a := l.Appointment; a != nil {
		resp.AppointmentDetails = &transport.AppointmentDetails{
			StaffMemberID: a.StaffMemberID,
			PreferredDate: a.PreferredDate,
			PreferredTime: a.PreferredTime,
			Notes:         a.Notes,
		}
	}
	return resp
}

func toAppointmentSummary(b *ports.BookedAppointment) *transport.AppointmentSummary {
	if b == nil {
		return nil
	}
	return &transport.AppointmentSummary{
		ID:       b.ID,
		Date:     b.Date,
		TimeSlot: b.TimeSlot,
		Status:   b.Status,
	}
}

func toEventResponse(ev domain.Event) transport.EventResponse {
	resp := transport.EventResponse{
		ID:        ev.ID,
		Name:      ev.Name,
		Location:  ev.Location,
		IsActive:  ev.IsActive,
		CreatedAt: ev.CreatedAt,
		UpdatedAt: ev.UpdatedAt,
	}
	if ev.StartsOn != nil {
		resp.StartsOn = ev.StartsOn.Format(dateLayout)
	}
	if ev.EndsOn != nil {
		resp.EndsOn = ev.EndsOn.Format(dateLayout)
	}
	return resp
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
