package crmsync

import (
	"fmt"
	"strings"
	"time"
)

const preferredDateLayout = "Monday, January 2, 2006"

// JobDescription renders the free-text job description: the lead notes, the
// appointment request block and the temperature annotation.
func JobDescription(lead Lead, defaults Defaults) string {
	var b strings.Builder

	if notes := strings.TrimSpace(lead.Notes); notes != "" {
		b.WriteString(notes)
	} else {
		b.WriteString("Lead from " + eventName(lead, defaults))
	}

	if appt := lead.Appointment; appt != nil {
		notes := strings.TrimSpace(appt.Notes)
		switch {
		case appt.PreferredDate != "" || appt.PreferredTime != "":
			b.WriteString("\n\n--- APPOINTMENT REQUEST ---")
			if appt.PreferredDate != "" {
				b.WriteString("\nPreferred Date: " + formatPreferredDate(appt.PreferredDate))
			}
			if appt.PreferredTime != "" {
				b.WriteString("\nPreferred Time: " + appt.PreferredTime)
			}
			if notes != "" {
				b.WriteString("\nAppointment Notes: " + notes)
			}
		case notes != "":
			b.WriteString("\n\n--- APPOINTMENT NOTES ---\n" + notes)
		}
	}

	if t := lead.TempRating; t != nil && *t >= 1 && *t <= 10 {
		fmt.Fprintf(&b, "\n\nTemp: %d/10", *t)
	}

	return b.String()
}

// formatPreferredDate renders a calendar date as "Friday, August 15, 2025".
// Values that are not dates are passed through.
func formatPreferredDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= len(time.DateOnly) {
		if d, err := time.Parse(time.DateOnly, value[:len(time.DateOnly)]); err == nil {
			return d.Format(preferredDateLayout)
		}
	}
	return value
}

func eventName(lead Lead, defaults Defaults) string {
	if lead.EventName != "" {
		return lead.EventName
	}
	return defaults.EventName
}
