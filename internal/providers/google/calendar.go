package google

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"google.golang.org/api/calendar/v3"
)

const (
	untitledEvent = "Untitled"
	dateLayout    = "2006-01-02"
)

var _ providers.Calendar = (*Client)(nil)

func (c *Client) calendarService(ctx context.Context, integ *models.Integration) (*calendar.Service, error) {
	opts, err := c.clientOptions(ctx, integ)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return svc, nil
}

// ListEvents merges the events of every calendar in [timeMin, timeMax].
// A calendar that cannot be read is logged and skipped. Cancelled events are
// included so callers can mirror cancellations.
func (c *Client) ListEvents(ctx context.Context, integ *models.Integration, calendarIDs []string, timeMin, timeMax time.Time) ([]providers.Event, error) {
	svc, err := c.calendarService(ctx, integ)
	if err != nil {
		return nil, err
	}

	var events []providers.Event
	for _, calendarID := range calendarIDs {
		calEvents, err := c.listCalendar(ctx, svc, calendarID, timeMin, timeMax)
		if err != nil {
			c.logger.Errorw("failed to fetch calendar events",
				"integration_id", integ.ID, "calendar_id", calendarID, "error", err)
			continue
		}
		events = append(events, calEvents...)
	}
	return events, nil
}

func (c *Client) listCalendar(ctx context.Context, svc *calendar.Service, calendarID string, timeMin, timeMax time.Time) ([]providers.Event, error) {
	var events []providers.Event
	pageToken := ""
	for {
		call := svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			ev, err := toEvent(calendarID, item)
			if err != nil {
				c.logger.Warnw("skipping malformed calendar event",
					"calendar_id", calendarID, "event_id", item.Id, "error", err)
				continue
			}
			events = append(events, ev)
		}

		if resp.NextPageToken == "" {
			return events, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *Client) CreateEvent(ctx context.Context, integ *models.Integration, ev providers.NewEvent) (*providers.Event, error) {
	svc, err := c.calendarService(ctx, integ)
	if err != nil {
		return nil, err
	}

	body := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
	for _, email := range ev.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert(ev.CalendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	out, err := toEvent(ev.CalendarID, created)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, integ *models.Integration, calendarID, eventID string, patch providers.EventPatch) (*providers.Event, error) {
	svc, err := c.calendarService(ctx, integ)
	if err != nil {
		return nil, err
	}

	body := &calendar.Event{}
	if patch.Summary != nil {
		body.Summary = *patch.Summary
	}
	if patch.Description != nil {
		body.Description = *patch.Description
	}
	if patch.Start != nil {
		body.Start = &calendar.EventDateTime{DateTime: patch.Start.Format(time.RFC3339)}
	}
	if patch.End != nil {
		body.End = &calendar.EventDateTime{DateTime: patch.End.Format(time.RFC3339)}
	}

	updated, err := svc.Events.Patch(calendarID, eventID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update calendar event: %w", err)
	}

	out, err := toEvent(calendarID, updated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, integ *models.Integration, calendarID, eventID string) error {
	svc, err := c.calendarService(ctx, integ)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// toEvent converts an API event. All-day events carry a date instead of a
// date-time and are read as UTC midnight. Only cancelled events may lack times.
func toEvent(calendarID string, item *calendar.Event) (providers.Event, error) {
	ev := providers.Event{
		ID:          item.Id,
		CalendarID:  calendarID,
		Summary:     item.Summary,
		Description: item.Description,
		Status:      item.Status,
	}
	if ev.Summary == "" {
		ev.Summary = untitledEvent
	}

	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return ev, fmt.Errorf("invalid start: %w", err)
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return ev, fmt.Errorf("invalid end: %w", err)
	}
	ev.Start, ev.End, ev.AllDay = start, end, allDay

	if !ev.HasTimes() && !ev.Cancelled() {
		return ev, fmt.Errorf("event %s has no start or end", item.Id)
	}
	return ev, nil
}

func parseEventTime(t *calendar.EventDateTime) (time.Time, bool, error) {
	if t == nil {
		return time.Time{}, false, nil
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		return parsed, false, err
	}
	if t.Date != "" {
		parsed, err := time.Parse(dateLayout, t.Date)
		return parsed, true, err
	}
	return time.Time{}, false, nil
}
