package repository

import (
	"testing"
	"time"
)

func appt(day string, slot, status string) Appointment {
	d, _ := time.Parse(dateLayout, day)
	return Appointment{Date: d, TimeSlot: slot, Status: status}
}

func TestSlotChange(t *testing.T) {
	cases := []struct {
		name             string
		prev, next       Appointment
		release, reserve bool
	}{
		{"notes edit in same slot", appt("2025-08-15", "9:00 AM", "scheduled"), appt("2025-08-15", "9:00 AM", "scheduled"), false, false},
		{"confirm in same slot", appt("2025-08-15", "9:00 AM", "scheduled"), appt("2025-08-15", "9:00 AM", "confirmed"), false, false},
		{"move to another slot", appt("2025-08-15", "9:00 AM", "scheduled"), appt("2025-08-15", "1:30 PM", "scheduled"), true, true},
		{"move to another day", appt("2025-08-15", "9:00 AM", "confirmed"), appt("2025-08-16", "9:00 AM", "confirmed"), true, true},
		{"cancel", appt("2025-08-15", "9:00 AM", "scheduled"), appt("2025-08-15", "9:00 AM", "cancelled"), true, false},
		{"complete", appt("2025-08-15", "9:00 AM", "confirmed"), appt("2025-08-15", "9:00 AM", "completed"), true, false},
		{"reinstate", appt("2025-08-15", "9:00 AM", "cancelled"), appt("2025-08-15", "9:00 AM", "scheduled"), false, true},
		{"edit cancelled", appt("2025-08-15", "9:00 AM", "cancelled"), appt("2025-08-16", "3:00 PM", "cancelled"), false, false},
	}

	for _, tc := range cases {
		release, reserve := SlotChange(tc.prev, tc.next)
		if release != tc.release || reserve != tc.reserve {
			t.Fatalf("%s: got release=%v reserve=%v, want release=%v reserve=%v",
				tc.name, release, reserve, tc.release, tc.reserve)
		}
	}
}

func TestSlotKeyUsesCalendarDay(t *testing.T) {
	loc, _ := time.LoadLocation("America/Chicago")
	a := NewSlotKey(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), "9:00 AM")
	b := NewSlotKey(time.Date(2025, 8, 15, 0, 0, 0, 0, loc), "9:00 AM")
	if a != b {
		t.Fatalf("expected equal keys, got %v and %v", a, b)
	}
}
