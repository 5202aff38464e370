package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadcapture_backend/internal/appointments/repository"
	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateFormat, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return d
}

func newTestService(t *testing.T) (*Service, *memoryStore, *events.InMemoryBus) {
	t.Helper()
	store := newMemoryStore()
	bus := events.NewInMemoryBus(logger.Discard())
	return New(store, DefaultSchedule(chicago(t)), bus, logger.Discard()), store, bus
}

func bookingRequest(date, slot string) transport.CreateAppointmentRequest {
	return transport.CreateAppointmentRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "Jane@Example.com",
		CustomerPhone: "(312) 555-0147",
		Date:          date,
		TimeSlot:      slot,
	}
}

func TestCreateFillsSlotThenRejects(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, bookingRequest("2025-08-15", "10:30 AM")); err != nil {
			t.Fatalf("booking %d: unexpected error %v", i+1, err)
		}
	}

	avail, err := svc.AvailabilityForDate(ctx, "2025-08-15")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	for _, slot := range avail.Slots {
		if slot.TimeSlot == "10:30 AM" && (slot.BookedCount != 2 || slot.Available) {
			t.Fatalf("expected full slot with 2 bookings, got %+v", slot)
		}
	}

	_, err = svc.Create(ctx, bookingRequest("2025-08-15", "10:30 AM"))
	if apperr.GetKind(err) != apperr.KindSlotFull {
		t.Fatalf("expected SlotFull on third booking, got %v", err)
	}
}

func TestCreateNormalizesCustomerFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, err := svc.Create(context.Background(), bookingRequest("2025-08-15", "9:00 AM"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if resp.CustomerEmail != "jane@example.com" || resp.CustomerPhone != "+13125550147" {
		t.Fatalf("unexpected normalized contact %q %q", resp.CustomerEmail, resp.CustomerPhone)
	}
	if resp.Status != transport.AppointmentStatusScheduled || resp.DurationMinutes != 90 {
		t.Fatalf("unexpected defaults %+v", resp)
	}
}

func TestConcurrentBookingsNeverOverfill(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var ok, full int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, bookingRequest("2025-08-15", "1:30 PM"))
			if err == nil {
				atomic.AddInt32(&ok, 1)
			} else if apperr.GetKind(err) == apperr.KindSlotFull {
				atomic.AddInt32(&full, 1)
			}
		}()
	}
	wg.Wait()

	if ok != 2 || full != 8 {
		t.Fatalf("expected 2 bookings and 8 rejections, got %d and %d", ok, full)
	}
	counts, _ := store.CountLiveBySlot(ctx, day(t, "2025-08-15"), day(t, "2025-08-15"))
	for key, n := range counts {
		if n > 2 {
			t.Fatalf("slot %v overbooked with %d", key, n)
		}
	}
}

func TestClosedDayReportsEverySlotClosed(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	sunday := day(t, "2025-08-17")
	store.seed(sunday, "9:00 AM", 1)

	avail, err := svc.AvailabilityForDate(ctx, "2025-08-17")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !avail.Closed || avail.Reason != "closed" || avail.HasAvailability {
		t.Fatalf("expected closed day, got %+v", avail)
	}
	if len(avail.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(avail.Slots))
	}
	for _, slot := range avail.Slots {
		if slot.Available || slot.Reason != "closed" {
			t.Fatalf("expected closed slot, got %+v", slot)
		}
	}

	_, err = svc.Create(ctx, bookingRequest("2025-08-17", "3:00 PM"))
	if apperr.GetKind(err) != apperr.KindSlotFull {
		t.Fatalf("expected SlotFull for closed day, got %v", err)
	}
}

func TestUnknownSlotIsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), bookingRequest("2025-08-15", "10:00 AM"))
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for unknown label, got %v", err)
	}
}

func TestMalformedDateIsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), bookingRequest("15th of August", "9:00 AM"))
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for malformed date, got %v", err)
	}
	if _, err := svc.FindNextAvailable(context.Background(), "not-a-date", nil, 0); apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request from search, got %v", err)
	}
}

func TestFindNextAvailableSkipsFullDaysAndSunday(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	slots := DefaultSchedule(time.UTC).Slots

	// Monday 11th through Thursday 14th fully booked.
	for _, d := range []string{"2025-08-11", "2025-08-12", "2025-08-13", "2025-08-14"} {
		for _, s := range slots {
			store.seed(day(t, d), s, 2)
		}
	}
	// Friday 15th: only 1:30 PM keeps a seat.
	for _, s := range slots {
		if s == "1:30 PM" {
			store.seed(day(t, "2025-08-15"), s, 1)
			continue
		}
		store.seed(day(t, "2025-08-15"), s, 2)
	}

	next, err := svc.FindNextAvailable(ctx, "2025-08-11", nil, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !next.Found || next.Date != "2025-08-15" || next.TimeSlot != "1:30 PM" || next.AvailableSlots != 1 {
		t.Fatalf("unexpected result %+v", next)
	}

	// Saturday 16th full, Sunday closed, Monday 18th wide open.
	for _, s := range slots {
		store.seed(day(t, "2025-08-16"), s, 2)
	}
	next, err = svc.FindNextAvailable(ctx, "2025-08-16", nil, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if next.Date != "2025-08-18" || next.TimeSlot != "9:00 AM" {
		t.Fatalf("expected Monday 9:00 AM, got %+v", next)
	}
}

func TestFindNextAvailableHonoursSlotFilterAndExhaustion(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.seed(day(t, "2025-08-18"), "4:30 PM", 2)
	next, err := svc.FindNextAvailable(ctx, "2025-08-18", []string{"4:30 PM"}, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if next.Date != "2025-08-19" || next.TimeSlot != "4:30 PM" {
		t.Fatalf("expected Tuesday 4:30 PM, got %+v", next)
	}

	store.seed(day(t, "2025-08-19"), "4:30 PM", 2)
	next, err = svc.FindNextAvailable(ctx, "2025-08-18", []string{"4:30 PM"}, 2)
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if next.Found || next.DaysSearched != 2 {
		t.Fatalf("expected nothing found after 2 days, got %+v", next)
	}
}

func TestCheckAvailabilitySkipsClosedDayAndFilters(t *testing.T) {
	svc, _, _ := newTestService(t)
	days, err := svc.CheckAvailability(context.Background(), "2025-08-15", "2025-08-18", []string{"9:00 AM", "3:00 PM"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 open days, got %d", len(days))
	}
	for _, d := range days {
		if d.Date == "2025-08-17" {
			t.Fatalf("closed Sunday must be skipped")
		}
		if len(d.Slots) != 2 || !d.HasAvailability || d.TotalAvailable != 4 {
			t.Fatalf("unexpected filtered day %+v", d)
		}
	}

	if _, err := svc.CheckAvailability(context.Background(), "2025-08-18", "2025-08-15", nil); apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for reversed range, got %v", err)
	}
}

func TestUpdateSameSlotSkipsCapacityCheck(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bookingRequest("2025-08-15", "9:00 AM"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.seed(day(t, "2025-08-15"), "9:00 AM", 1)

	notes := "bring samples"
	updated, err := svc.Update(ctx, created.ID, transport.UpdateAppointmentRequest{Notes: &notes}, "admin")
	if err != nil {
		t.Fatalf("same-slot edit on a full slot must succeed, got %v", err)
	}
	if updated.Notes != notes || updated.LastModifiedBy == nil || *updated.LastModifiedBy != "admin" {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestUpdateIntoFullSlotFails(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bookingRequest("2025-08-15", "9:00 AM"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.seed(day(t, "2025-08-15"), "12:00 PM", 2)

	slot := "12:00 PM"
	_, err = svc.Update(ctx, created.ID, transport.UpdateAppointmentRequest{TimeSlot: &slot}, "")
	if apperr.GetKind(err) != apperr.KindSlotFull {
		t.Fatalf("expected SlotFull, got %v", err)
	}

	_, err = svc.Update(ctx, uuid.New(), transport.UpdateAppointmentRequest{TimeSlot: &slot}, "")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound for unknown id, got %v", err)
	}
}

func TestCancelFreesSeat(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	var cancelled int32
	bus.Subscribe(events.AppointmentCancelled{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		atomic.AddInt32(&cancelled, 1)
		return nil
	}))

	first, _ := svc.Create(ctx, bookingRequest("2025-08-15", "4:30 PM"))
	if _, err := svc.Create(ctx, bookingRequest("2025-08-15", "4:30 PM")); err != nil {
		t.Fatalf("second booking: %v", err)
	}

	resp, err := svc.Cancel(ctx, first.ID, "front desk")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.Status != transport.AppointmentStatusCancelled || *resp.LastModifiedBy != "front desk" {
		t.Fatalf("unexpected cancel result %+v", resp)
	}

	if _, err := svc.Create(ctx, bookingRequest("2025-08-15", "4:30 PM")); err != nil {
		t.Fatalf("seat should be free after cancel, got %v", err)
	}

	bus.Wait()
	if cancelled != 1 {
		t.Fatalf("expected one cancellation event, got %d", cancelled)
	}
}

func TestUpsertForLeadReschedulesExisting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	leadID := uuid.New()

	first, err := svc.UpsertForLead(ctx, transport.LeadBookingRequest{
		LeadID: leadID, CustomerName: "Jane Doe", Date: "2025-08-15", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := svc.UpsertForLead(ctx, transport.LeadBookingRequest{
		LeadID: leadID, CustomerName: "Jane Doe", Date: "2025-08-16", TimeSlot: "3:00 PM", Notes: "gate code 1234",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID || second.Date != "2025-08-16" || second.TimeSlot != "3:00 PM" {
		t.Fatalf("expected rescheduled appointment %s, got %+v", first.ID, second)
	}
}

func TestUpsertForLeadBooksAfresh(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	leadID := uuid.New()

	for _, status := range []transport.AppointmentStatus{
		transport.AppointmentStatusCompleted,
		transport.AppointmentStatusNoShow,
		transport.AppointmentStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			first, err := svc.UpsertForLead(ctx, transport.LeadBookingRequest{
				LeadID: leadID, CustomerName: "Jane Doe", Date: "2025-08-15", TimeSlot: "9:00 AM",
			})
			if err != nil {
				t.Fatalf("first upsert: %v", err)
			}
			finished := status
			if _, err := svc.Update(ctx, first.ID, transport.UpdateAppointmentRequest{Status: &finished}, "admin"); err != nil {
				t.Fatalf("mark %s: %v", status, err)
			}

			second, err := svc.UpsertForLead(ctx, transport.LeadBookingRequest{
				LeadID: leadID, CustomerName: "Jane Doe", Date: "2025-08-18", TimeSlot: "9:00 AM",
			})
			if err != nil {
				t.Fatalf("second upsert: %v", err)
			}
			if second.ID == first.ID {
				t.Fatalf("%s appointment %s was reused", status, first.ID)
			}
			if second.Status != transport.AppointmentStatusScheduled {
				t.Fatalf("expected a scheduled booking, got %s", second.Status)
			}

			old, err := svc.GetByID(ctx, first.ID)
			if err != nil {
				t.Fatalf("get first: %v", err)
			}
			if old.Status != status || old.Date != "2025-08-15" {
				t.Fatalf("finished appointment changed: %+v", old)
			}

			store.mu.Lock()
			booked := store.liveCount(repository.NewSlotKey(day(t, "2025-08-18"), "9:00 AM"))
			store.mu.Unlock()
			if booked != 1 {
				t.Fatalf("expected the new booking to hold a seat, got %d", booked)
			}

			if _, err := svc.Cancel(ctx, second.ID, ""); err != nil {
				t.Fatalf("reset: %v", err)
			}
		})
	}
}

func TestGetStatsCountsByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, bookingRequest("2025-08-15", "9:00 AM"))
	_, _ = svc.Create(ctx, bookingRequest("2025-08-16", "9:00 AM"))
	_, _ = svc.Create(ctx, bookingRequest("2025-09-01", "9:00 AM"))
	if _, err := svc.Cancel(ctx, a.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stats, err := svc.GetStats(ctx, "2025-08-01", "2025-08-31")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus["cancelled"] != 1 || stats.ByStatus["scheduled"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestParseDayUsesCalendarDate(t *testing.T) {
	loc := chicago(t)
	a, err := ParseDay("2025-08-15 10:00 AM", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := ParseDay("2025-08-15 11:59 PM", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected same day, got %v and %v", a, b)
	}

	c, err := ParseDay("2025-08-16T03:30:00Z", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Format(dateFormat) != "2025-08-15" {
		t.Fatalf("expected UTC timestamp to land on the 15th in Chicago, got %s", c.Format(dateFormat))
	}
}
