// Package syncer reconciles workspace reservations with their connected
// Google calendars and mirrors the result into the workspace spreadsheet.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/metrics"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/google/uuid"
)

const (
	lookBack  = 7 * 24 * time.Hour
	lookAhead = 30 * 24 * time.Hour

	serviceSeparator = " - "
	defaultService   = "Service"
)

type IntegrationStore interface {
	ListCalendarIntegrations(ctx context.Context) ([]models.Integration, error)
}

type ReservationStore interface {
	GetByEventID(ctx context.Context, eventID string) (*models.Reservation, error)
	Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	UpdateFromEvent(ctx context.Context, reservationID uuid.UUID, u models.EventUpdate) error
}

type Orchestrator struct {
	integrations IntegrationStore
	reservations ReservationStore
	calendar     providers.Calendar
	sheets       providers.Sheets
	logger       *logging.Logger
	now          func() time.Time
}

type Option func(*Orchestrator)

// WithClock replaces time.Now as the anchor of the sync window.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(
	integrations IntegrationStore,
	reservations ReservationStore,
	calendar providers.Calendar,
	sheets providers.Sheets,
	logger *logging.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		integrations: integrations,
		reservations: reservations,
		calendar:     calendar,
		sheets:       sheets,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run syncs every Google integration that has calendars configured and
// returns how many were attempted. A failing integration is logged and does
// not stop the others; only failing to list integrations is an error.
func (o *Orchestrator) Run(ctx context.Context) (int, error) {
	metrics.SyncRunsTotal.Inc()

	integrations, err := o.integrations.ListCalendarIntegrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list calendar integrations: %w", err)
	}

	for i := range integrations {
		integ := &integrations[i]

		synced, err := o.syncIntegration(ctx, integ)
		if err != nil {
			metrics.SyncIntegrationsTotal.WithLabelValues("failure").Inc()
			o.logger.Errorw("failed to sync integration",
				"integration_id", integ.ID, "workspace_id", integ.WorkspaceID, "error", err)
			continue
		}

		metrics.SyncIntegrationsTotal.WithLabelValues("success").Inc()
		metrics.SyncEventsTotal.Add(float64(synced))
		o.logger.Infow(fmt.Sprintf("synced %d events for workspace %s", synced, integ.WorkspaceID),
			"integration_id", integ.ID, "events", synced)
	}

	return len(integrations), nil
}

func (o *Orchestrator) syncIntegration(ctx context.Context, integ *models.Integration) (int, error) {
	now := o.now()
	events, err := o.calendar.ListEvents(ctx, integ, integ.CalendarIDs, now.Add(-lookBack), now.Add(lookAhead))
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	for _, ev := range events {
		stored, err := o.reconcile(ctx, integ, ev)
		if err != nil {
			return 0, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		if stored && integ.HasSheet() {
			o.mirror(ctx, integ, ev.ID)
		}
	}
	return len(events), nil
}

// reconcile writes one event onto its reservation, creating the reservation
// when the event is new. It reports whether a reservation exists afterwards.
func (o *Orchestrator) reconcile(ctx context.Context, integ *models.Integration, ev providers.Event) (bool, error) {
	existing, err := o.reservations.GetByEventID(ctx, ev.ID)
	if err != nil && !errors.Is(err, services.ErrReservationNotFound) {
		return false, err
	}

	if existing != nil {
		update := models.EventUpdate{
			Title:  ev.Summary,
			Start:  ev.Start,
			End:    ev.End,
			Status: existing.Status,
		}
		if ev.Cancelled() {
			update.Status = models.StatusCancelled
		}
		if !ev.HasTimes() {
			update.Start, update.End = existing.Start, existing.End
		}
		return true, o.reservations.UpdateFromEvent(ctx, existing.ID, update)
	}

	// Cancelled or deleted events never become reservations.
	if ev.Cancelled() || !ev.HasTimes() {
		return false, nil
	}

	title := ev.Summary
	calendarID := integ.PrimaryCalendarID()
	_, err = o.reservations.Create(ctx, &models.Reservation{
		WorkspaceID:   integ.WorkspaceID,
		IntegrationID: &integ.ID,
		EventID:       ev.ID,
		CalendarID:    &calendarID,
		Title:         &title,
		Service:       ServiceFromSummary(ev.Summary),
		Status:        models.StatusConfirmed,
		Source:        models.SourceCalendarSync,
		Start:         ev.Start,
		End:           ev.End,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// mirror re-reads the reservation with its customer and upserts its sheet
// row. Failures are logged and never retried.
func (o *Orchestrator) mirror(ctx context.Context, integ *models.Integration, eventID string) {
	r, err := o.reservations.GetByEventID(ctx, eventID)
	if err == nil {
		row := providers.AppointmentRow(r, o.now())
		err = o.sheets.UpsertRowByKey(ctx, integ, *integ.SheetsURL, providers.AppointmentsTab, eventID, row)
	}
	if err != nil {
		metrics.SheetMirrorFailuresTotal.Inc()
		o.logger.Warnw("failed to mirror reservation to sheet",
			"integration_id", integ.ID, "event_id", eventID, "error", err)
	}
}

// ServiceFromSummary takes the service name from an event title of the form
// "<service> - <customer>".
func ServiceFromSummary(summary string) string {
	service, _, _ := strings.Cut(summary, serviceSeparator)
	if service == "" {
		return defaultService
	}
	return service
}
