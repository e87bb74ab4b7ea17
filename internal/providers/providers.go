// Package providers defines the external systems a workspace can connect:
// a calendar, a spreadsheet mirror and an SMS gateway. Credentials travel
// with each call as the workspace's integration row.
package providers

import (
	"context"
	"errors"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
)

var ErrNotConfigured = errors.New("integration not found or not configured")

const EventStatusCancelled = "cancelled"

// AppointmentsTab is the sheet tab reservations are mirrored into.
const AppointmentsTab = "Appointments"

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

type Event struct {
	ID          string
	CalendarID  string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
	AllDay      bool
}

func (e Event) Cancelled() bool {
	return e.Status == EventStatusCancelled
}

// HasTimes is false for cancelled instances the calendar returns without
// start or end.
func (e Event) HasTimes() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

type NewEvent struct {
	CalendarID  string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// EventPatch holds the event fields to change. Nil fields are left alone.
type EventPatch struct {
	Summary     *string
	Description *string
	Start       *time.Time
	End         *time.Time
}

type SendResult struct {
	MessageID string
	Status    string
}

type Calendar interface {
	ListEvents(ctx context.Context, integ *models.Integration, calendarIDs []string, timeMin, timeMax time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, integ *models.Integration, ev NewEvent) (*Event, error)
	UpdateEvent(ctx context.Context, integ *models.Integration, calendarID, eventID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, integ *models.Integration, calendarID, eventID string) error
}

type Sheets interface {
	AppendRow(ctx context.Context, integ *models.Integration, sheetURL, tab string, values []any) error
	// UpsertRowByKey rewrites the row whose first column equals key, or
	// appends one when none does.
	UpsertRowByKey(ctx context.Context, integ *models.Integration, sheetURL, tab, key string, values []any) error
}

type SMS interface {
	Send(ctx context.Context, integ *models.Integration, to, body string) (*SendResult, error)
}

// AppointmentRow is the spreadsheet row for a reservation:
// event id, status, service, staff, source, start, end, customer name,
// phone, email, updated at.
func AppointmentRow(r *models.Reservation, now time.Time) []any {
	var name, phone, email string
	if r.Customer != nil {
		name = deref(r.Customer.Name)
		phone = deref(r.Customer.Phone)
		email = deref(r.Customer.Email)
	}
	return []any{
		r.EventID,
		r.Status,
		r.Service,
		deref(r.Staff),
		r.Source,
		r.Start.UTC().Format(isoLayout),
		r.End.UTC().Format(isoLayout),
		name,
		phone,
		email,
		now.UTC().Format(isoLayout),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
