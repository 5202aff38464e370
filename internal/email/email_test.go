package email

import (
	"strings"
	"testing"
)

type smtpTestConfig struct{ host string }

func (c smtpTestConfig) GetSMTPHost() string        { return c.host }
func (c smtpTestConfig) GetSMTPPort() int           { return 587 }
func (c smtpTestConfig) GetSMTPUsername() string    { return "" }
func (c smtpTestConfig) GetSMTPPassword() string    { return "" }
func (c smtpTestConfig) GetSMTPFromAddress() string { return "bookings@example.com" }
func (c smtpTestConfig) GetSMTPFromName() string    { return "EventCollect" }
func (c smtpTestConfig) IsSMTPEnabled() bool        { return c.host != "" }

func TestRenderAppointmentConfirmation(t *testing.T) {
	subject, body, err := renderAppointmentConfirmation(AppointmentConfirmation{
		CustomerName:    "Jane <Public>",
		Date:            "Friday, August 15, 2025",
		TimeSlot:        "10:30 AM",
		DurationMinutes: 90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Your appointment on Friday, August 15, 2025 is confirmed" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Jane &lt;Public&gt;", "10:30 AM", "about 90 minutes", "<title>Appointment confirmed</title>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestNewSenderWithoutHostIsNoop(t *testing.T) {
	if _, ok := NewSender(smtpTestConfig{}).(NoopSender); !ok {
		t.Fatalf("expected noop sender without SMTP host")
	}
	if _, ok := NewSender(smtpTestConfig{host: "smtp.example.com"}).(*SMTPSender); !ok {
		t.Fatalf("expected SMTP sender")
	}
}

func TestNewMessageRejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(smtpTestConfig{host: "smtp.example.com"})
	if _, err := s.newMessage("not an address", "subject", "<p>x</p>"); err == nil {
		t.Fatalf("expected invalid recipient to fail")
	}
}
