package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"casatorpe/internal/domain"
)

// User-facing availability messages.
const (
	msgCalendarNotConfigured = "Calendario non configurato. La disponibilità verrà mostrata appena il calendario sarà collegato."
	msgCalendarNotPublic     = "Il calendario non è pubblico. Rendilo disponibile pubblicamente nelle impostazioni di Google Calendar."
	msgCalendarNotFound      = "Calendario non trovato. Verifica l'ID del calendario."
	msgCalendarRetry         = "Impossibile caricare la disponibilità. Riprova più tardi."
	msgCalendarConnection    = "Errore di connessione. Controlla la tua connessione e riprova."
)

// EventLister lists calendar events whose window intersects [from, to).
type EventLister interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

type AvailabilityService struct {
	events EventLister
	loc    *time.Location
}

// NewAvailabilityService builds the month calculator. A nil lister means the
// calendar is not configured: every month then resolves to the unconfigured
// phase without any request.
func NewAvailabilityService(events EventLister, loc *time.Location) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{events: events, loc: loc}
}

// Configured reports whether a calendar source is wired.
func (s *AvailabilityService) Configured() bool {
	return s.events != nil
}

// MonthGrid returns the displayed dates for a month: from the Monday on or
// before the 1st through the Sunday on or after the last day. month0 is
// zero-based and normalises like calendar arithmetic. Dates are midnight UTC.
func MonthGrid(year, month0 int) []time.Time {
	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	back := (int(first.Weekday()) + 6) % 7
	forward := 0
	if last.Weekday() != time.Sunday {
		forward = 7 - int(last.Weekday())
	}

	start := first.AddDate(0, 0, -back)
	end := last.AddDate(0, 0, forward)

	days := make([]time.Time, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Month computes the occupancy grid for one month with a single calendar
// query. On failure the returned view carries the error phase, a user-facing
// message and no days.
func (s *AvailabilityService) Month(ctx context.Context, year, month0 int) (domain.MonthView, error) {
	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	view := domain.MonthView{
		Year:  first.Year(),
		Month: int(first.Month()) - 1,
		Days:  []domain.CalendarDay{},
	}

	if s.events == nil {
		view.Phase = domain.PhaseUnconfigured
		view.Message = msgCalendarNotConfigured
		return view, newError(ErrorNotConfigured, "calendar_not_configured", nil)
	}

	grid := MonthGrid(year, month0)
	from := s.inZone(grid[0])
	to := s.inZone(grid[len(grid)-1]).AddDate(0, 0, 1)

	events, err := s.events.ListEvents(ctx, from, to)
	if err != nil {
		ue, msg := classifyCalendarError(err)
		slog.Error("availability: list events failed", "err", err, "code", ue.Code, "year", view.Year, "month", view.Month)
		view.Phase = domain.PhaseError
		view.Message = msg
		return view, ue
	}

	spans := occupiedSpans(events, s.loc)
	days := make([]domain.CalendarDay, 0, len(grid))
	for _, d := range grid {
		days = append(days, domain.CalendarDay{
			Date:           d,
			IsOccupied:     spans.covers(d),
			IsCurrentMonth: d.Month() == first.Month(),
		})
	}

	view.Phase = domain.PhaseReady
	view.Days = days
	return view, nil
}

func (s *AvailabilityService) inZone(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

func classifyCalendarError(err error) (*Error, string) {
	status, ok := upstreamStatusCode(err)
	if !ok {
		return newError(ErrorNetwork, "calendar_connection_error", err), msgCalendarConnection
	}
	switch status {
	case http.StatusForbidden:
		return newError(ErrorCalendarNotPublic, "calendar_forbidden", err), msgCalendarNotPublic
	case http.StatusNotFound:
		return newError(ErrorCalendarNotFound, "calendar_not_found", err), msgCalendarNotFound
	default:
		return newError(ErrorUpstream, "calendar_unexpected_status", err), msgCalendarRetry
	}
}

// span is a half-open range of calendar dates [start, end).
type span struct {
	start time.Time
	end   time.Time
}

type spans []span

func (ss spans) covers(d time.Time) bool {
	for _, s := range ss {
		if !d.Before(s.start) && d.Before(s.end) {
			return true
		}
	}
	return false
}

// occupiedSpans converts events into date ranges. All-day events keep their
// exclusive end date. Timed events use the local calendar date of their
// bounds; an event that starts and ends on the same date occupies that date.
func occupiedSpans(events []domain.CalendarEvent, loc *time.Location) spans {
	out := make(spans, 0, len(events))
	for _, ev := range events {
		var start, end time.Time
		if ev.AllDay {
			start, end = civilDate(ev.Start), civilDate(ev.End)
		} else {
			start, end = civilDate(ev.Start.In(loc)), civilDate(ev.End.In(loc))
		}
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		out = append(out, span{start: start, end: end})
	}
	return out
}

// civilDate drops the time of day and zone, keeping the wall-clock date.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
