package service

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Schedule holds the booking rules: the daily slot labels in display order,
// seats per slot, closed weekdays and how far ahead searches look.
type Schedule struct {
	Slots          []string
	Capacity       int
	ClosedWeekdays []time.Weekday
	SlotDuration   time.Duration
	MaxScanDays    int
	Location       *time.Location
}

// DefaultSchedule returns six 90 minute slots a day, two seats each, closed
// on Sundays, searching up to 30 days ahead.
func DefaultSchedule(loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{
		Slots:          []string{"9:00 AM", "10:30 AM", "12:00 PM", "1:30 PM", "3:00 PM", "4:30 PM"},
		Capacity:       2,
		ClosedWeekdays: []time.Weekday{time.Sunday},
		SlotDuration:   90 * time.Minute,
		MaxScanDays:    30,
		Location:       loc,
	}
}

type scheduleFile struct {
	TimeSlots           []string `yaml:"timeSlots"`
	CapacityPerSlot     *int     `yaml:"capacityPerSlot"`
	ClosedWeekdays      []string `yaml:"closedWeekdays"`
	SlotDurationMinutes *int     `yaml:"slotDurationMinutes"`
	MaxScanDays         *int     `yaml:"maxScanDays"`
}

// LoadSchedule reads a YAML schedule file. Keys left out keep the defaults.
func LoadSchedule(path string, loc *time.Location) (Schedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("read schedule file: %w", err)
	}
	return ParseSchedule(raw, loc)
}

// ParseSchedule decodes YAML schedule bytes on top of DefaultSchedule.
func ParseSchedule(raw []byte, loc *time.Location) (Schedule, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Schedule{}, fmt.Errorf("parse schedule file: %w", err)
	}

	s := DefaultSchedule(loc)
	if file.TimeSlots != nil {
		s.Slots = file.TimeSlots
	}
	if file.CapacityPerSlot != nil {
		s.Capacity = *file.CapacityPerSlot
	}
	if file.ClosedWeekdays != nil {
		s.ClosedWeekdays = s.ClosedWeekdays[:0]
		for _, name := range file.ClosedWeekdays {
			day, ok := parseWeekday(name)
			if !ok {
				return Schedule{}, fmt.Errorf("unknown weekday %q", name)
			}
			s.ClosedWeekdays = append(s.ClosedWeekdays, day)
		}
	}
	if file.SlotDurationMinutes != nil {
		s.SlotDuration = time.Duration(*file.SlotDurationMinutes) * time.Minute
	}
	if file.MaxScanDays != nil {
		s.MaxScanDays = *file.MaxScanDays
	}

	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate checks the schedule can actually take bookings.
func (s Schedule) Validate() error {
	if len(s.Slots) == 0 {
		return fmt.Errorf("schedule needs at least one time slot")
	}
	seen := make(map[string]struct{}, len(s.Slots))
	for _, label := range s.Slots {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("schedule has a blank time slot")
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("duplicate time slot %q", label)
		}
		seen[label] = struct{}{}
	}
	if s.Capacity < 1 {
		return fmt.Errorf("capacity per slot must be positive")
	}
	if len(s.ClosedWeekdays) >= 7 {
		return fmt.Errorf("schedule closes every weekday")
	}
	if s.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	if s.MaxScanDays < 1 {
		return fmt.Errorf("max scan days must be positive")
	}
	return nil
}

// HasSlot reports whether label is one of the daily slots.
func (s Schedule) HasSlot(label string) bool {
	return slices.Contains(s.Slots, label)
}

// IsClosed reports whether the calendar day falls on a closed weekday.
func (s Schedule) IsClosed(day time.Time) bool {
	return slices.Contains(s.ClosedWeekdays, day.Weekday())
}

// DurationMinutes is the slot length in whole minutes.
func (s Schedule) DurationMinutes() int {
	return int(s.SlotDuration / time.Minute)
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(name), d.String()) {
			return d, true
		}
	}
	return 0, false
}
