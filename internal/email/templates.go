package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type appointmentConfirmationEmailData struct {
	baseEmailData
	AppointmentConfirmation
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderAppointmentConfirmation(data AppointmentConfirmation) (subject, body string, err error) {
	body, err = renderEmailTemplate("appointment_confirmation.html", appointmentConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:      "Appointment confirmed",
			Heading:    "Your appointment is confirmed",
			Subheading: "We look forward to seeing you.",
		},
		AppointmentConfirmation: data,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectAppointmentConfirmedFmt, data.Date), body, nil
}
