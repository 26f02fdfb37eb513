// Package icsfeed renders occupied periods as an iCalendar feed that channel
// managers can subscribe to. Events carry no guest details.
package icsfeed

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	ics "github.com/arran4/golang-ical"

	"casatorpe/internal/domain"
)

const (
	productID = "-//Casa Torpe//Disponibilita//IT"
	calName   = "Casa Torpè - Occupato"
	summary   = "Occupato"
)

// Build returns a VCALENDAR with one opaque VEVENT per occupied period.
// All-day events stay date-valued; timed events are emitted in UTC.
func Build(events []domain.CalendarEvent, loc *time.Location, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calName)
	if loc != nil {
		cal.SetXWRTimezone(loc.String())
	}

	for _, ev := range events {
		vev := cal.AddEvent(eventUID(ev))
		vev.SetDtStampTime(now.UTC())
		vev.SetSummary(summary)
		vev.SetTimeTransparency(ics.TransparencyOpaque)
		if ev.AllDay {
			vev.SetAllDayStartAt(ev.Start)
			vev.SetAllDayEndAt(ev.End)
			continue
		}
		vev.SetStartAt(ev.Start.UTC())
		vev.SetEndAt(ev.End.UTC())
	}
	return cal.Serialize()
}

// eventUID is stable for a given period so subscribers update in place.
func eventUID(ev domain.CalendarEvent) string {
	sum := sha1.Sum([]byte(ev.Start.UTC().Format(time.RFC3339) + "/" + ev.End.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:8]) + "@casatorpe"
}
