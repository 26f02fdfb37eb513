package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"casatorpe/internal/domain"
)

const (
	defaultTemperature      = 0.7
	enrichmentHorizonMonths = 6

	ReplyNotConfigured = "Il servizio di assistenza non è al momento configurato. Contattaci via email o Telegram."
	ReplyApology       = "C'è stato un problema tecnico momentaneo. Per favore riprova più tardi."
	ReplyNotUnderstood = "Mi dispiace, non ho capito. Puoi ripetere?"
)

type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (string, error)
}

type ConciergeOption func(*ConciergeService)

// WithCalendarContext enables the occupied-period note. A nil lister keeps
// enrichment on but yields the "no known periods" note.
func WithCalendarContext(events EventLister, loc *time.Location) ConciergeOption {
	return func(s *ConciergeService) {
		s.enrich = true
		s.events = events
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithContactEmail(email string) ConciergeOption {
	return func(s *ConciergeService) {
		if email = strings.TrimSpace(email); email != "" {
			s.contactEmail = email
		}
	}
}

func WithTemperature(t float32) ConciergeOption {
	return func(s *ConciergeService) {
		s.temperature = t
	}
}

// ConciergeService answers guest questions. It keeps no conversation state;
// each Reply is independent.
type ConciergeService struct {
	gen          Generator
	events       EventLister
	enrich       bool
	loc          *time.Location
	contactEmail string
	temperature  float32
}

// NewConciergeService builds the pipeline. A nil generator is allowed and
// means the assistant is not configured.
func NewConciergeService(gen Generator, opts ...ConciergeOption) *ConciergeService {
	s := &ConciergeService{
		gen:          gen,
		loc:          time.UTC,
		contactEmail: "info@casatorpe.it",
		temperature:  defaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ConciergeService) Configured() bool {
	return s.gen != nil
}

// Reply never fails: every error path degrades to a fixed Italian string.
func (s *ConciergeService) Reply(ctx context.Context, message string) string {
	if s.gen == nil {
		return ReplyNotConfigured
	}

	prompt := message
	if s.enrich {
		prompt = buildPrompt(BuildCalendarNote(s.upcomingEvents(ctx), s.loc), message)
	}

	reply, err := s.gen.Generate(ctx, domain.GenerateRequest{
		SystemInstruction: buildSystemInstruction(s.contactEmail),
		Prompt:            prompt,
		Temperature:       s.temperature,
	})
	if err != nil {
		attrs := []any{"err", err}
		if status, ok := upstreamStatusCode(err); ok {
			attrs = append(attrs, "status", status)
		}
		slog.Error("concierge: generation failed", attrs...)
		return ReplyApology
	}
	if strings.TrimSpace(reply) == "" {
		return ReplyNotUnderstood
	}
	return reply
}

// upcomingEvents lists events from today to today+6 months. Failures are
// logged and treated as an empty calendar.
func (s *ConciergeService) upcomingEvents(ctx context.Context) []domain.CalendarEvent {
	if s.events == nil {
		return nil
	}
	t := now().In(s.loc)
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, enrichmentHorizonMonths, 0)

	events, err := s.events.ListEvents(ctx, from, to)
	if err != nil {
		slog.Warn("concierge: calendar context unavailable", "err", err)
		return nil
	}
	return events
}

var now = time.Now
