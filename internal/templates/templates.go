// Package templates renders customer notifications for appointments.
package templates

import (
	"fmt"
	"html"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
)

const (
	dateLayout = "Mon, Jan 2 2006"
	timeLayout = "3:04 PM"

	defaultStaff = "our team"
)

// Vars are the values substituted into a template.
type Vars struct {
	Name     string
	Service  string
	Date     string
	Time     string
	Business string
	Staff    string
}

// ForReservation fills Vars from a reservation, rendering the start time in loc.
func ForReservation(r *models.Reservation, business string, loc *time.Location) Vars {
	if loc == nil {
		loc = time.UTC
	}
	start := r.Start.In(loc)

	v := Vars{
		Service:  r.Service,
		Date:     start.Format(dateLayout),
		Time:     start.Format(timeLayout),
		Business: business,
		Staff:    defaultStaff,
	}
	if r.Staff != nil && *r.Staff != "" {
		v.Staff = *r.Staff
	}
	if r.Customer != nil && r.Customer.Name != nil {
		v.Name = *r.Customer.Name
	}
	return v
}

func SMSConfirmation(v Vars) string {
	return fmt.Sprintf("Hi %s, your %s is booked for %s at %s with %s. Reply YES to confirm or CANCEL to reschedule.",
		v.Name, v.Service, v.Date, v.Time, v.Staff)
}

func SMSReminder(v Vars) string {
	return fmt.Sprintf("Reminder: You have a %s appointment tomorrow at %s with %s. See you soon!",
		v.Service, v.Time, v.Staff)
}

func SMSCancellation(v Vars) string {
	return fmt.Sprintf("Your %s appointment on %s at %s has been cancelled. Reply to reschedule.",
		v.Service, v.Date, v.Time)
}

func SMSReschedule(v Vars) string {
	return fmt.Sprintf("Your %s appointment has been rescheduled to %s at %s. Reply YES to confirm.",
		v.Service, v.Date, v.Time)
}

// Email is a rendered HTML email.
type Email struct {
	Subject string
	Body    string
}

func EmailConfirmation(v Vars) Email {
	e := escape(v)
	return Email{
		Subject: fmt.Sprintf("Appointment Confirmed: %s", v.Service),
		Body: fmt.Sprintf(`
		<html>
		<body>
			<h2>Appointment Confirmed</h2>
			<p>Hi %s,</p>
			<p>Your appointment has been confirmed:</p>
			<p><strong>Service:</strong> %s<br>
			<strong>Date:</strong> %s<br>
			<strong>Time:</strong> %s<br>
			<strong>Staff:</strong> %s</p>
			<p>We look forward to seeing you!</p>
			<p>Best regards,<br>%s</p>
		</body>
		</html>
	`, e.Name, e.Service, e.Date, e.Time, e.Staff, e.Business),
	}
}

func EmailReminder(v Vars) Email {
	e := escape(v)
	return Email{
		Subject: fmt.Sprintf("Reminder: %s Tomorrow", v.Service),
		Body: fmt.Sprintf(`
		<html>
		<body>
			<h2>Appointment Reminder</h2>
			<p>Hi %s,</p>
			<p>This is a friendly reminder about your upcoming appointment:</p>
			<p><strong>Service:</strong> %s<br>
			<strong>Date:</strong> %s<br>
			<strong>Time:</strong> %s</p>
			<p>See you soon!</p>
			<p>Best regards,<br>%s</p>
		</body>
		</html>
	`, e.Name, e.Service, e.Date, e.Time, e.Business),
	}
}

func EmailCancellation(v Vars) Email {
	e := escape(v)
	return Email{
		Subject: "Appointment Cancelled",
		Body: fmt.Sprintf(`
		<html>
		<body>
			<h2>Appointment Cancelled</h2>
			<p>Hi %s,</p>
			<p>Your appointment has been cancelled:</p>
			<p><strong>Service:</strong> %s<br>
			<strong>Date:</strong> %s<br>
			<strong>Time:</strong> %s</p>
			<p>Please contact us if you'd like to reschedule.</p>
			<p>Best regards,<br>%s</p>
		</body>
		</html>
	`, e.Name, e.Service, e.Date, e.Time, e.Business),
	}
}

func escape(v Vars) Vars {
	return Vars{
		Name:     html.EscapeString(v.Name),
		Service:  html.EscapeString(v.Service),
		Date:     html.EscapeString(v.Date),
		Time:     html.EscapeString(v.Time),
		Business: html.EscapeString(v.Business),
		Staff:    html.EscapeString(v.Staff),
	}
}
