package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/metrics"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"github.com/dimitrije/relayo-api/internal/templates"
	"github.com/google/uuid"
)

var ErrGoogleNotConnected = errors.New("google calendar not connected")

const (
	NotifyBySMS   = "SMS"
	NotifyByEmail = "EMAIL"
)

// ReminderWindow is how far ahead SendReminders looks for appointments.
const ReminderWindow = 24 * time.Hour

type BookingInput struct {
	CustomerName  string
	CustomerPhone *string
	CustomerEmail *string
	Service       string
	Staff         *string
	Start         time.Time
	End           time.Time
	Notes         *string
	NotifyBy      string
	CalendarID    string
}

// BookingService keeps reservations and the workspace's Google calendar in
// step. The calendar write is the primary action of a booking; the sheet
// mirror and customer notifications are best-effort.
type BookingService struct {
	integrations *IntegrationService
	customers    *CustomerService
	reservations *ReservationService
	workspaces   *WorkspaceService
	sms          *SMSService
	email        *EmailService
	calendar     providers.Calendar
	sheets       providers.Sheets
	logger       *logging.Logger
	location     *time.Location
}

type BookingDeps struct {
	Integrations *IntegrationService
	Customers    *CustomerService
	Reservations *ReservationService
	Workspaces   *WorkspaceService
	SMS          *SMSService
	Email        *EmailService
	Calendar     providers.Calendar
	Sheets       providers.Sheets
	Logger       *logging.Logger
	// Location renders appointment times in notifications. Defaults to UTC.
	Location *time.Location
}

func NewBookingService(deps BookingDeps) *BookingService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		integrations: deps.Integrations,
		customers:    deps.Customers,
		reservations: deps.Reservations,
		workspaces:   deps.Workspaces,
		sms:          deps.SMS,
		email:        deps.Email,
		calendar:     deps.Calendar,
		sheets:       deps.Sheets,
		logger:       deps.Logger,
		location:     loc,
	}
}

func (s *BookingService) Book(ctx context.Context, workspaceID uuid.UUID, in BookingInput) (*models.Reservation, error) {
	integ, err := s.integrations.GetByWorkspaceAndProvider(ctx, workspaceID, models.ProviderGoogle)
	if errors.Is(err, ErrIntegrationNotFound) {
		return nil, ErrGoogleNotConnected
	}
	if err != nil {
		return nil, err
	}

	name := in.CustomerName
	customer, err := s.customers.FindOrCreate(ctx, workspaceID, CustomerInput{
		Name:  &name,
		Phone: in.CustomerPhone,
		Email: in.CustomerEmail,
	})
	if err != nil {
		return nil, err
	}

	calendarID := in.CalendarID
	if calendarID == "" {
		calendarID = integ.PrimaryCalendarID()
	}
	title := fmt.Sprintf("%s - %s", in.Service, in.CustomerName)

	newEvent := providers.NewEvent{
		CalendarID: calendarID,
		Summary:    title,
		Start:      in.Start,
		End:        in.End,
	}
	if in.Notes != nil {
		newEvent.Description = *in.Notes
	}
	if in.CustomerEmail != nil {
		newEvent.Attendees = []string{*in.CustomerEmail}
	}

	event, err := s.calendar.CreateEvent(ctx, integ, newEvent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	reservation, err := s.reservations.Create(ctx, &models.Reservation{
		WorkspaceID:   workspaceID,
		IntegrationID: &integ.ID,
		CustomerID:    &customer.ID,
		EventID:       event.ID,
		CalendarID:    &calendarID,
		Title:         &title,
		Service:       in.Service,
		Staff:         in.Staff,
		Notes:         in.Notes,
		Status:        models.StatusConfirmed,
		Source:        models.SourceWeb,
		Start:         in.Start,
		End:           in.End,
	})
	if err != nil {
		return nil, err
	}
	reservation.Customer = customer

	s.mirror(ctx, integ, reservation)
	s.notify(ctx, workspaceID, reservation, in.NotifyBy)

	return reservation, nil
}

// Update applies a manual edit. A time change is written to the calendar
// first and aborts the update when the calendar rejects it. With NotifyBy
// set, the customer hears about a cancellation or a new time.
func (s *BookingService) Update(ctx context.Context, workspaceID, reservationID uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	existing, err := s.reservations.GetByID(ctx, workspaceID, reservationID)
	if err != nil {
		return nil, err
	}

	integ, err := s.linkedIntegration(ctx, existing)
	if err != nil {
		return nil, err
	}

	if integ != nil && timesChanged(existing, patch) {
		_, err := s.calendar.UpdateEvent(ctx, integ, calendarIDOf(existing, integ), existing.EventID, providers.EventPatch{
			Start: patch.Start,
			End:   patch.End,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}

	updated, err := s.reservations.Update(ctx, workspaceID, reservationID, patch)
	if err != nil {
		return nil, err
	}
	updated.Customer = existing.Customer

	if integ != nil {
		s.mirror(ctx, integ, updated)
	}
	s.notifyChange(ctx, workspaceID, existing, updated, patch.NotifyBy)
	return updated, nil
}

// Delete removes the reservation. Removing the calendar event is
// best-effort.
func (s *BookingService) Delete(ctx context.Context, workspaceID, reservationID uuid.UUID) error {
	existing, err := s.reservations.GetByID(ctx, workspaceID, reservationID)
	if err != nil {
		return err
	}

	integ, err := s.linkedIntegration(ctx, existing)
	if err != nil {
		return err
	}

	if integ != nil {
		if err := s.calendar.DeleteEvent(ctx, integ, calendarIDOf(existing, integ), existing.EventID); err != nil {
			s.logger.Warnw("failed to delete calendar event",
				"reservation_id", existing.ID, "event_id", existing.EventID, "error", err)
		}
	}

	return s.reservations.Delete(ctx, workspaceID, reservationID)
}

func (s *BookingService) linkedIntegration(ctx context.Context, r *models.Reservation) (*models.Integration, error) {
	if r.IntegrationID == nil {
		return nil, nil
	}
	integ, err := s.integrations.GetByWorkspaceAndProvider(ctx, r.WorkspaceID, models.ProviderGoogle)
	if errors.Is(err, ErrIntegrationNotFound) {
		return nil, nil
	}
	return integ, err
}

func (s *BookingService) mirror(ctx context.Context, integ *models.Integration, r *models.Reservation) {
	if !integ.HasSheet() {
		return
	}
	row := providers.AppointmentRow(r, r.UpdatedAt)
	if err := s.sheets.UpsertRowByKey(ctx, integ, *integ.SheetsURL, providers.AppointmentsTab, r.EventID, row); err != nil {
		metrics.SheetMirrorFailuresTotal.Inc()
		s.logger.Warnw("failed to mirror reservation to sheet",
			"reservation_id", r.ID, "event_id", r.EventID, "error", err)
	}
}

// notice is one customer-facing message in its SMS and email renditions.
type notice struct {
	kind  string
	sms   func(templates.Vars) string
	email func(to string, vars templates.Vars) error
}

func (s *BookingService) notify(ctx context.Context, workspaceID uuid.UUID, r *models.Reservation, notifyBy string) {
	s.deliver(ctx, workspaceID, r, notifyBy, notice{
		kind:  "confirmation",
		sms:   templates.SMSConfirmation,
		email: s.email.SendConfirmation,
	})
}

// notifyChange tells the customer about a cancellation or a new time. Other
// edits send nothing.
func (s *BookingService) notifyChange(ctx context.Context, workspaceID uuid.UUID, before, after *models.Reservation, notifyBy string) {
	switch {
	case after.Status == models.StatusCancelled && before.Status != models.StatusCancelled:
		s.deliver(ctx, workspaceID, after, notifyBy, notice{
			kind:  "cancellation",
			sms:   templates.SMSCancellation,
			email: s.email.SendCancellation,
		})
	case after.Status != models.StatusCancelled && (!after.Start.Equal(before.Start) || !after.End.Equal(before.End)):
		s.deliver(ctx, workspaceID, after, notifyBy, notice{
			kind:  "reschedule",
			sms:   templates.SMSReschedule,
			email: s.email.SendConfirmation,
		})
	}
}

func (s *BookingService) deliver(ctx context.Context, workspaceID uuid.UUID, r *models.Reservation, notifyBy string, n notice) {
	customer := r.Customer
	switch {
	case notifyBy == NotifyBySMS && customer != nil && customer.Phone != nil:
		body := n.sms(s.templateVars(ctx, workspaceID, r))
		_, err := s.sms.Send(ctx, workspaceID, OutboundSMS{To: *customer.Phone, Body: body, CustomerID: &customer.ID})
		if errors.Is(err, ErrTwilioNotConnected) {
			return
		}
		if err != nil {
			s.logger.Warnw("failed to send "+n.kind+" sms", "reservation_id", r.ID, "error", err)
		}
	case notifyBy == NotifyByEmail && customer != nil && customer.Email != nil:
		if err := n.email(*customer.Email, s.templateVars(ctx, workspaceID, r)); err != nil {
			s.logger.Warnw("failed to send "+n.kind+" email", "reservation_id", r.ID, "error", err)
		}
	}
}

// SendReminders notifies customers of confirmed appointments starting within
// ReminderWindow after now. SMS is used when the customer has a phone and
// the workspace has Twilio connected, email otherwise. A reservation is
// marked reminded only once a reminder went out.
func (s *BookingService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reservations.ListDueReminders(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		r := &due[i]
		channel, ok := s.remind(ctx, r)
		if !ok {
			continue
		}
		metrics.RemindersSentTotal.WithLabelValues(channel).Inc()
		if err := s.reservations.MarkReminded(ctx, r.ID, now); err != nil {
			s.logger.Warnw("failed to mark reservation reminded", "reservation_id", r.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *BookingService) remind(ctx context.Context, r *models.Reservation) (string, bool) {
	customer := r.Customer
	if customer == nil {
		return "", false
	}
	vars := s.templateVars(ctx, r.WorkspaceID, r)

	if customer.Phone != nil && *customer.Phone != "" {
		_, err := s.sms.Send(ctx, r.WorkspaceID, OutboundSMS{
			To:         *customer.Phone,
			Body:       templates.SMSReminder(vars),
			CustomerID: &customer.ID,
		})
		if err == nil {
			return models.ChannelSMS, true
		}
		if !errors.Is(err, ErrTwilioNotConnected) {
			s.logger.Warnw("failed to send reminder sms", "reservation_id", r.ID, "error", err)
			return "", false
		}
	}

	if customer.Email != nil && *customer.Email != "" && s.email.IsConfigured() {
		if err := s.email.SendReminder(*customer.Email, vars); err != nil {
			s.logger.Warnw("failed to send reminder email", "reservation_id", r.ID, "error", err)
			return "", false
		}
		return models.ChannelEmail, true
	}
	return "", false
}

func (s *BookingService) templateVars(ctx context.Context, workspaceID uuid.UUID, r *models.Reservation) templates.Vars {
	business := ""
	if ws, err := s.workspaces.GetByID(ctx, workspaceID); err == nil {
		business = ws.Name
	}
	return templates.ForReservation(r, business, s.location)
}

func timesChanged(r *models.Reservation, patch models.ReservationPatch) bool {
	return (patch.Start != nil && !patch.Start.Equal(r.Start)) || (patch.End != nil && !patch.End.Equal(r.End))
}

func calendarIDOf(r *models.Reservation, integ *models.Integration) string {
	if r.CalendarID != nil && *r.CalendarID != "" {
		return *r.CalendarID
	}
	return integ.PrimaryCalendarID()
}
