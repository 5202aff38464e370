package email

const (
	subjectAppointmentConfirmedFmt = "Your appointment on %s is confirmed"
)
