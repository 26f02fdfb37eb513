package usecase

import (
	"context"
	"log/slog"
	"strings"

	"casatorpe/internal/domain"
)

// FormRelay forwards a booking inquiry to the hosted form backend.
type FormRelay interface {
	Submit(ctx context.Context, in domain.Inquiry) error
}

// LeadRecorder keeps a copy of relayed inquiries.
type LeadRecorder interface {
	RecordLead(ctx context.Context, in domain.Inquiry) (string, error)
}

type InquiryService struct {
	relay FormRelay
	leads LeadRecorder
}

// NewInquiryService accepts a nil relay (form endpoint not configured) and a
// nil recorder (lead log disabled).
func NewInquiryService(relay FormRelay, leads LeadRecorder) *InquiryService {
	return &InquiryService{relay: relay, leads: leads}
}

func (s *InquiryService) Configured() bool {
	return s.relay != nil
}

// Submit validates and relays one inquiry. Filled honeypots are accepted
// without forwarding.
func (s *InquiryService) Submit(ctx context.Context, in domain.Inquiry) error {
	in = normalizeInquiry(in)
	if in.Honeypot != "" {
		slog.Info("inquiry: honeypot filled, dropping submission")
		return nil
	}
	if err := validateInquiry(in); err != nil {
		return err
	}
	if s.relay == nil {
		return newError(ErrorNotConfigured, "form_endpoint_not_configured", nil)
	}

	if err := s.relay.Submit(ctx, in); err != nil {
		if _, ok := upstreamStatusCode(err); ok {
			return newError(ErrorUpstream, "form_relay_rejected", err)
		}
		return newError(ErrorNetwork, "form_relay_unreachable", err)
	}

	if s.leads != nil {
		leadID, err := s.leads.RecordLead(ctx, in)
		if err != nil {
			slog.Warn("inquiry: lead log write failed", "err", err)
		} else {
			slog.Info("inquiry: lead recorded", "lead_id", leadID)
		}
	}
	return nil
}

func normalizeInquiry(in domain.Inquiry) domain.Inquiry {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.CheckIn = strings.TrimSpace(in.CheckIn)
	in.CheckOut = strings.TrimSpace(in.CheckOut)
	in.Message = strings.TrimSpace(in.Message)
	in.Honeypot = strings.TrimSpace(in.Honeypot)
	return in
}

func validateInquiry(in domain.Inquiry) error {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"check_in", in.CheckIn},
		{"check_out", in.CheckOut},
		{"message", in.Message},
	}
	for _, r := range required {
		if r.value == "" {
			return newError(ErrorInvalidInput, "missing_"+r.field, nil)
		}
	}
	if !strings.Contains(in.Email, "@") {
		return newError(ErrorInvalidInput, "invalid_email", nil)
	}
	return nil
}
