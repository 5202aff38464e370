package adapters

import (
	"context"

	"leadcapture_backend/internal/crmsync"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/ports"
)

// CRMSyncer adapts the crmsync reconciler for use by the leads domain.
// It implements the leads/ports.CRMSyncer interface.
type CRMSyncer struct {
	reconciler *crmsync.Reconciler
}

// NewCRMSyncer wraps a reconciler.
func NewCRMSyncer(reconciler *crmsync.Reconciler) *CRMSyncer {
	return &CRMSyncer{reconciler: reconciler}
}

// Sync runs the full reconciliation for a lead.
func (s *CRMSyncer) Sync(ctx context.Context, lead domain.Lead) (ports.SyncOutcome, error) {
	result, err := s.reconciler.Sync(ctx, toCRMLead(lead))
	return toOutcome(result), err
}

// SyncTemperature patches only the job description of a linked lead.
func (s *CRMSyncer) SyncTemperature(ctx context.Context, lead domain.Lead) (ports.SyncOutcome, error) {
	result, err := s.reconciler.SyncTemperature(ctx, toCRMLead(lead))
	return toOutcome(result), err
}

// TemperatureOnlyChange compares the two leads as the CRM sees them.
func (s *CRMSyncer) TemperatureOnlyChange(prev, next domain.Lead) bool {
	return crmsync.TemperatureOnlyChange(toCRMLead(prev), toCRMLead(next))
}

// toCRMLead drops timestamps and sync status. Appointment preferences only
// reach the CRM when the lead asked for an appointment.
func toCRMLead(l domain.Lead) crmsync.Lead {
	out := crmsync.Lead{
		ID:       l.ID,
		FullName: l.FullName,
		Email:    l.Email,
		Phone:    l.Phone,
		Address: crmsync.Address{
			Street:  l.Address.Street,
			City:    l.Address.City,
			State:   l.Address.State,
			ZipCode: l.Address.ZipCode,
		},
		ServicesOfInterest: l.ServicesOfInterest,
		TradeIDs:           l.TradeIDs,
		WorkTypeIDs:        l.WorkTypeIDs,
		SalesRepID:         l.SalesRepID,
		CallCenterRepID:    l.CallCenterRepID,
		DivisionID:         l.DivisionID,
		TempRating:         l.TempRating,
		Notes:              l.Notes,
		WantsAppointment:   l.WantsAppointment,
		EventName:          l.EventName,
		ReferredBy:         l.ReferredBy,
		ReferralType:       l.ReferralType,
		ReferralID:         l.ReferralID,
		ReferralNote:       l.ReferralNote,
		IDs: crmsync.RemoteIDs{
			ProspectID:    l.Remote.ProspectID,
			CustomerID:    l.Remote.CustomerID,
			JobID:         l.Remote.JobID,
			AppointmentID: l.Remote.AppointmentID,
		},
	}
	if l.WantsAppointment && l.Appointment != nil {
		out.Appointment = &crmsync.AppointmentDetails{
			PreferredDate: l.Appointment.PreferredDate,
			PreferredTime: l.Appointment.PreferredTime,
			Notes:         l.Appointment.Notes,
		}
	}
	return out
}

func toOutcome(r crmsync.Result) ports.SyncOutcome {
	return ports.SyncOutcome{
		IDs: domain.RemoteIDs{
			ProspectID:    r.IDs.ProspectID,
			CustomerID:    r.IDs.CustomerID,
			JobID:         r.IDs.JobID,
			AppointmentID: r.IDs.AppointmentID,
		},
		Recreated: r.Recreated(),
	}
}

var _ ports.CRMSyncer = (*CRMSyncer)(nil)
