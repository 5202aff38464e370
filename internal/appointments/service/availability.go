package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"leadcapture_backend/internal/appointments/repository"
	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/platform/apperr"
)

const (
	reasonClosed = "closed"
	reasonFull   = "full"

	// maxRangeDays bounds a single availability query.
	maxRangeDays = 92
)

// SlotCounter counts live appointments per slot over a day range.
type SlotCounter interface {
	CountLiveBySlot(ctx context.Context, from, to time.Time) (map[repository.SlotKey]int, error)
}

// AvailabilityEngine answers whether a slot is bookable and where the next
// open slot is. Days are calendar dates at midnight UTC.
type AvailabilityEngine struct {
	schedule Schedule
	counts   SlotCounter
	now      func() time.Time
}

// NewAvailabilityEngine creates an engine over the given schedule.
func NewAvailabilityEngine(schedule Schedule, counts SlotCounter) *AvailabilityEngine {
	return &AvailabilityEngine{schedule: schedule, counts: counts, now: time.Now}
}

// SlotsForDay returns the daily slot labels in declared order.
func (e *AvailabilityEngine) SlotsForDay() []string {
	return slices.Clone(e.schedule.Slots)
}

// Today is the current calendar day in the schedule's location.
func (e *AvailabilityEngine) Today() time.Time {
	return CalendarDay(e.now(), e.schedule.Location)
}

// Availability reports every slot on day. On a closed weekday every slot is
// unavailable with reason "closed" whatever is booked.
func (e *AvailabilityEngine) Availability(ctx context.Context, day time.Time) (transport.DayAvailability, error) {
	counts, err := e.counts.CountLiveBySlot(ctx, day, day)
	if err != nil {
		return transport.DayAvailability{}, err
	}
	return e.dayAvailability(day, counts, nil), nil
}

// RangeAvailability walks [start, end] day by day, skipping closed days.
// A non-empty filter restricts each day to those slot labels.
func (e *AvailabilityEngine) RangeAvailability(ctx context.Context, start, end time.Time, filter []string) ([]transport.DayAvailability, error) {
	if end.Before(start) {
		return nil, apperr.BadRequest("end date must not be before start date")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxRangeDays {
		return nil, apperr.BadRequest(fmt.Sprintf("date range must not exceed %d days", maxRangeDays))
	}
	if err := e.checkFilter(filter); err != nil {
		return nil, err
	}

	counts, err := e.counts.CountLiveBySlot(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := make([]transport.DayAvailability, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if e.schedule.IsClosed(day) {
			continue
		}
		result = append(result, e.dayAvailability(day, counts, filter))
	}
	return result, nil
}

// FindNextAvailable scans forward from the given day for at most maxDays
// days (the schedule's horizon when maxDays <= 0) and returns the first
// open slot in declared order. Running out of days is not an error.
func (e *AvailabilityEngine) FindNextAvailable(ctx context.Context, from time.Time, filter []string, maxDays int) (transport.NextAvailableResponse, error) {
	if maxDays <= 0 {
		maxDays = e.schedule.MaxScanDays
	}
	if err := e.checkFilter(filter); err != nil {
		return transport.NextAvailableResponse{}, err
	}

	end := from.AddDate(0, 0, maxDays-1)
	counts, err := e.counts.CountLiveBySlot(ctx, from, end)
	if err != nil {
		return transport.NextAvailableResponse{}, err
	}

	searched := 0
	for day := from; !day.After(end); day = day.AddDate(0, 0, 1) {
		searched++
		if e.schedule.IsClosed(day) {
			continue
		}
		avail := e.dayAvailability(day, counts, filter)
		if !avail.HasAvailability {
			continue
		}
		for _, slot := range avail.Slots {
			if slot.Available {
				return transport.NextAvailableResponse{
					Found:          true,
					Date:           avail.Date,
					DayOfWeek:      avail.DayOfWeek,
					TimeSlot:       slot.TimeSlot,
					AvailableSlots: slot.AvailableSlots,
					DaysSearched:   searched,
				}, nil
			}
		}
	}

	return transport.NextAvailableResponse{Found: false, DaysSearched: searched}, nil
}

// CheckBookable returns nil when one more appointment fits in (day, slot).
func (e *AvailabilityEngine) CheckBookable(ctx context.Context, day time.Time, timeSlot string) error {
	if !e.schedule.HasSlot(timeSlot) {
		return apperr.BadRequest(fmt.Sprintf("unknown time slot %q", timeSlot))
	}
	if e.schedule.IsClosed(day) {
		return apperr.SlotFull(fmt.Sprintf("appointments are not available on %s", day.Weekday())).
			WithDetails(map[string]string{"reason": reasonClosed})
	}

	avail, err := e.Availability(ctx, day)
	if err != nil {
		return err
	}
	for _, slot := range avail.Slots {
		if slot.TimeSlot == timeSlot && !slot.Available {
			return apperr.SlotFull("time slot is fully booked").
				WithDetails(map[string]string{"reason": reasonFull})
		}
	}
	return nil
}

func (e *AvailabilityEngine) dayAvailability(day time.Time, counts map[repository.SlotKey]int, filter []string) transport.DayAvailability {
	closed := e.schedule.IsClosed(day)
	out := transport.DayAvailability{
		Date:      day.Format(dateFormat),
		DayOfWeek: day.Weekday().String(),
		Closed:    closed,
		Slots:     make([]transport.SlotAvailability, 0, len(e.schedule.Slots)),
	}
	if closed {
		out.Reason = reasonClosed
	}

	for _, label := range e.schedule.Slots {
		if len(filter) > 0 && !slices.Contains(filter, label) {
			continue
		}
		booked := counts[repository.NewSlotKey(day, label)]
		slot := transport.SlotAvailability{
			TimeSlot:    label,
			BookedCount: booked,
			Capacity:    e.schedule.Capacity,
		}
		switch {
		case closed:
			slot.Reason = reasonClosed
		case booked >= e.schedule.Capacity:
			slot.Reason = reasonFull
		default:
			slot.Available = true
			slot.AvailableSlots = e.schedule.Capacity - booked
		}

		if slot.Available {
			out.HasAvailability = true
			out.TotalAvailable += slot.AvailableSlots
		}
		out.Slots = append(out.Slots, slot)
	}
	return out
}

func (e *AvailabilityEngine) checkFilter(filter []string) error {
	for _, label := range filter {
		if !e.schedule.HasSlot(label) {
			return apperr.BadRequest(fmt.Sprintf("unknown time slot %q", label))
		}
	}
	return nil
}
