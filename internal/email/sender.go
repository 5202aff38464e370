package email

import (
	"context"
)

// AppointmentConfirmation is what the booking confirmation shows the customer.
type AppointmentConfirmation struct {
	CustomerName    string
	Date            string
	TimeSlot        string
	DurationMinutes int
}

// Sender delivers transactional e-mail.
type Sender interface {
	SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentConfirmation) error
}

// NoopSender drops every message. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendAppointmentConfirmation(context.Context, string, AppointmentConfirmation) error {
	return nil
}
