package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"casatorpe/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	pageSize       = 2500
	requestTimeout = 10 * time.Second
)

// StatusError is a calendar API response with a non-2xx status.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gcal: unexpected status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client reads events from one public Google Calendar using an API key.
type Client struct {
	service    *calendar.Service
	calendarID string
}

// New builds a read-only client. Extra options are applied after the API
// key, so tests can redirect the endpoint.
func New(ctx context.Context, calendarID, apiKey string, opts ...option.ClientOption) (*Client, error) {
	calendarID = strings.TrimSpace(calendarID)
	if calendarID == "" {
		return nil, errors.New("gcal: calendar id must not be empty")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gcal: api key must not be empty")
	}

	srv, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gcal: create service: %w", err)
	}
	return &Client{service: srv, calendarID: calendarID}, nil
}

// ListEvents returns the single (expanded) events intersecting [from, to),
// ordered by start time. All pages are read.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	call := c.service.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)

	var out []domain.CalendarEvent
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			ev, ok := convertEvent(item)
			if !ok {
				slog.Warn("gcal: skipping event with unreadable bounds", "event_id", item.Id)
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &StatusError{StatusCode: gerr.Code, Err: err}
		}
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}
	return out, nil
}

func convertEvent(item *calendar.Event) (domain.CalendarEvent, bool) {
	if item == nil || item.Start == nil || item.End == nil {
		return domain.CalendarEvent{}, false
	}
	start, startAllDay, err := parseEventTime(item.Start)
	if err != nil {
		return domain.CalendarEvent{}, false
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return domain.CalendarEvent{}, false
	}
	return domain.CalendarEvent{Start: start, End: end, AllDay: startAllDay}, true
}

// parseEventTime reads either the all-day date or the timed dateTime form.
// All-day dates are returned as midnight UTC.
func parseEventTime(et *calendar.EventDateTime) (time.Time, bool, error) {
	if et.Date != "" {
		t, err := time.Parse(dateLayout, et.Date)
		return t, true, err
	}
	if et.DateTime != "" {
		t, err := time.Parse(time.RFC3339, et.DateTime)
		return t, false, err
	}
	return time.Time{}, false, errors.New("gcal: event time has neither date nor dateTime")
}
