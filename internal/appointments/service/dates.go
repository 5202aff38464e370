package service

import (
	"strings"
	"time"

	"leadcapture_backend/platform/apperr"
)

const dateFormat = "2006-01-02"

// Wall-clock layouts read in the schedule's location. Only the calendar day survives.
var localDateLayouts = []string{
	dateFormat,
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseDay turns user input into the calendar day it names in loc,
// represented as midnight UTC. Timestamps with an offset are first moved
// into loc, so "2025-08-15T23:30:00-05:00" is the 15th in Chicago.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.BadRequest("date is required")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return CalendarDay(t, loc), nil
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return CalendarDay(t, loc), nil
		}
	}
	return time.Time{}, apperr.BadRequest("invalid date: " + value)
}

// CalendarDay returns the local calendar date of t in loc at midnight UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
