// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NationalDigits returns the 10-digit national significant number the CRM
// expects. Unparseable input falls back to its digits, keeping the last ten
// and left-padding shorter values with zeros. Empty input stays empty.
func NationalDigits(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if number, err := phonenumbers.Parse(trimmed, defaultRegion); err == nil {
		national := phonenumbers.GetNationalSignificantNumber(number)
		if len(national) == 10 {
			return national
		}
	}

	digits := onlyDigits(trimmed)
	if digits == "" {
		return ""
	}
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return strings.Repeat("0", 10-len(digits)) + digits
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
