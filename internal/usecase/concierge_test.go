package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"casatorpe/internal/domain"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
	last  domain.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func withFixedNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestBuildCalendarNoteEmpty(t *testing.T) {
	note := BuildCalendarNote(nil, time.UTC)

	require.Contains(t, note, "Nessun periodo occupato noto")
	require.NotContains(t, note, "Dal ")
}

func TestBuildCalendarNoteListsEveryRange(t *testing.T) {
	events := []domain.CalendarEvent{
		{Start: date(2025, time.March, 10), End: date(2025, time.March, 13), AllDay: true},
		{Start: date(2025, time.April, 1), End: date(2025, time.April, 8), AllDay: true},
		{Start: time.Date(2025, time.May, 2, 15, 0, 0, 0, time.UTC), End: time.Date(2025, time.May, 4, 10, 0, 0, 0, time.UTC)},
	}

	note := BuildCalendarNote(events, time.UTC)

	require.Equal(t, 3, strings.Count(note, "Dal "))
	require.Contains(t, note, "Dal 2025-03-10 al 2025-03-13, Dal 2025-04-01 al 2025-04-08, Dal 2025-05-02 al 2025-05-04.")
	require.Contains(t, note, "Conferma la disponibilità solo se tutti i giorni richiesti sono liberi.")
}

func TestBuildCalendarNoteTimedEventsUsePropertyZone(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	events := []domain.CalendarEvent{
		{Start: time.Date(2025, time.May, 2, 23, 30, 0, 0, time.UTC), End: time.Date(2025, time.May, 4, 22, 30, 0, 0, time.UTC)},
	}

	note := BuildCalendarNote(events, rome)

	require.Contains(t, note, "Dal 2025-05-03 al 2025-05-05.")
}

func TestReplyNotConfigured(t *testing.T) {
	lister := &fakeLister{}
	svc := NewConciergeService(nil, WithCalendarContext(lister, time.UTC))

	require.False(t, svc.Configured())
	require.Equal(t, ReplyNotConfigured, svc.Reply(context.Background(), "Ciao"))
	require.Zero(t, lister.calls)
}

func TestReplyWithoutEnrichmentForwardsMessage(t *testing.T) {
	gen := &fakeGenerator{reply: "Benvenuto!"}
	svc := NewConciergeService(gen, WithContactEmail("host@example.com"))

	reply := svc.Reply(context.Background(), "C'è il WiFi?")

	require.Equal(t, "Benvenuto!", reply)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, "C'è il WiFi?", gen.last.Prompt)
	require.InDelta(t, 0.7, gen.last.Temperature, 1e-6)
	require.Contains(t, gen.last.SystemInstruction, "Laura")
	require.Contains(t, gen.last.SystemInstruction, "host@example.com")
}

func TestReplyUsesConfiguredTemperature(t *testing.T) {
	gen := &fakeGenerator{reply: "Ciao!"}
	svc := NewConciergeService(gen, WithTemperature(0.2))

	svc.Reply(context.Background(), "Ciao")

	require.InDelta(t, 0.2, gen.last.Temperature, 1e-6)
}

func TestReplyWithEnrichment(t *testing.T) {
	withFixedNow(t, time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC))
	lister := &fakeLister{events: []domain.CalendarEvent{
		{Start: date(2025, time.March, 10), End: date(2025, time.March, 13), AllDay: true},
	}}
	gen := &fakeGenerator{reply: "Purtroppo quelle date sono occupate."}
	svc := NewConciergeService(gen, WithCalendarContext(lister, time.UTC))

	reply := svc.Reply(context.Background(), "Siete liberi dall'11 al 12 marzo?")

	require.Equal(t, "Purtroppo quelle date sono occupate.", reply)
	require.Equal(t, 1, lister.calls)
	require.Equal(t, date(2025, time.March, 1), lister.from)
	require.Equal(t, date(2025, time.September, 1), lister.to)
	require.True(t, strings.HasPrefix(gen.last.Prompt, "INFORMAZIONI CALENDARIO:"))
	require.Contains(t, gen.last.Prompt, "Dal 2025-03-10 al 2025-03-13")
	require.True(t, strings.HasSuffix(gen.last.Prompt, "\n\nMESSAGGIO UTENTE: Siete liberi dall'11 al 12 marzo?"))
}

func TestReplyCalendarFailureDegradesToEmptyNote(t *testing.T) {
	lister := &fakeLister{err: errors.New("timeout")}
	gen := &fakeGenerator{reply: "Certo!"}
	svc := NewConciergeService(gen, WithCalendarContext(lister, time.UTC))

	require.Equal(t, "Certo!", svc.Reply(context.Background(), "Disponibilità ad agosto?"))
	require.Contains(t, gen.last.Prompt, "Nessun periodo occupato noto")
}

func TestReplyEnrichmentWithoutCalendar(t *testing.T) {
	gen := &fakeGenerator{reply: "Certo!"}
	svc := NewConciergeService(gen, WithCalendarContext(nil, time.UTC))

	svc.Reply(context.Background(), "Ciao")
	require.Contains(t, gen.last.Prompt, "Nessun periodo occupato noto")
}

func TestReplyGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: &statusErr{status: 429}}
	svc := NewConciergeService(gen)

	require.Equal(t, ReplyApology, svc.Reply(context.Background(), "Ciao"))
}

func TestReplyEmptyResponse(t *testing.T) {
	for _, reply := range []string{"", "   \n"} {
		gen := &fakeGenerator{reply: reply}
		svc := NewConciergeService(gen)

		require.Equal(t, ReplyNotUnderstood, svc.Reply(context.Background(), "Ciao"))
	}
}
