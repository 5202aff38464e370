package adapters

import (
	"testing"
	"time"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func syncedLead() domain.Lead {
	rating := 5
	synced := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	return domain.Lead{
		ID:                 uuid.MustParse("0b8c6f0e-5d7a-4c1b-9a59-1f0a4c1d2e3f"),
		FullName:           "Jane Q Public",
		Email:              "jane@example.com",
		Phone:              "+13127824100",
		ServicesOfInterest: []string{"Kitchen"},
		TempRating:         &rating,
		Notes:              "Call after 5",
		EventName:          "Home Show",
		Remote:             domain.RemoteIDs{CustomerID: "77", JobID: "42"},
		SyncStatus:         domain.SyncSynced,
		LastSyncedAt:       &synced,
		CreatedAt:          synced,
		UpdatedAt:          synced,
	}
}

func TestTemperatureOnlyChangeIgnoresBookkeeping(t *testing.T) {
	syncer := NewCRMSyncer(nil)
	prev := syncedLead()

	next := syncedLead()
	rating := 8
	next.TempRating = &rating
	next.UpdatedAt = next.UpdatedAt.Add(time.Hour)
	next.SyncStatus = domain.SyncError
	next.SyncError = "LEAP CRM Error: Bad Gateway"
	if !syncer.TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected timestamps and sync status to be ignored")
	}

	next.Address.City = "Evanston"
	if syncer.TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected address change to need a full sync")
	}
}

func TestTemperatureOnlyChangeIgnoresUnrequestedAppointment(t *testing.T) {
	syncer := NewCRMSyncer(nil)
	prev := syncedLead()

	next := syncedLead()
	rating := 9
	next.TempRating = &rating
	next.Appointment = &domain.AppointmentDetails{PreferredDate: "2025-08-15", PreferredTime: "10:30 AM"}
	if !syncer.TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected preferences without a requested appointment to stay local")
	}

	next.WantsAppointment = true
	if syncer.TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected requested appointment to change the CRM view")
	}
}

func TestToCRMLeadCarriesRemoteIDs(t *testing.T) {
	lead := syncedLead()
	lead.Remote.ProspectID = "900"
	got := toCRMLead(lead)
	if got.IDs.ProspectID != "900" || got.IDs.JobID != "42" || got.IDs.CustomerID != "77" {
		t.Fatalf("unexpected ids %+v", got.IDs)
	}
	if got.Appointment != nil {
		t.Fatalf("expected no appointment details without a request")
	}
}
