package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"

	"casatorpe/internal/domain"
	"casatorpe/internal/icsfeed"
	"casatorpe/internal/usecase"
)

const (
	maxMessageRunes  = 2000
	feedHorizonMonth = 6

	msgInvalidMonth = "Mese non valido."
)

type dayResponse struct {
	Date         string `json:"date"`
	Occupied     bool   `json:"occupied"`
	CurrentMonth bool   `json:"currentMonth"`
}

// availabilityResponse echoes seq so the widget can drop responses to
// requests it has already superseded.
type availabilityResponse struct {
	Seq     int64         `json:"seq"`
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Phase   domain.Phase  `json:"phase"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Days    []dayResponse `json:"days"`
}

type inquiryRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Message  string `json:"message"`
	Honeypot string `json:"_gotcha"`
}

type inquiryResponse struct {
	Status string `json:"status"`
}

func (h *Handler) serveAvailability(ctx context.Context, req events.APIGatewayProxyRequest, log *slog.Logger) events.APIGatewayProxyResponse {
	today := now().In(h.deps.Location)
	year, month0 := today.Year(), int(today.Month())-1

	q := req.QueryStringParameters
	var (
		seq int64
		err error
	)
	if v := strings.TrimSpace(q["seq"]); v != "" {
		if seq, err = strconv.ParseInt(v, 10, 64); err != nil {
			return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_seq"})
		}
	}
	invalid := func(reason string) events.APIGatewayProxyResponse {
		return jsonResponse(http.StatusBadRequest, availabilityResponse{
			Seq:     seq,
			Phase:   domain.PhaseError,
			Message: msgInvalidMonth,
			Error:   string(usecase.ErrorInvalidInput),
			Reason:  reason,
			Days:    []dayResponse{},
		})
	}
	if v := strings.TrimSpace(q["year"]); v != "" {
		if year, err = strconv.Atoi(v); err != nil || year < 1970 || year > 9999 {
			return invalid("invalid_year")
		}
	}
	if v := strings.TrimSpace(q["month"]); v != "" {
		if month0, err = strconv.Atoi(v); err != nil || month0 < 0 || month0 > 11 {
			return invalid("invalid_month")
		}
	}

	view, err := h.deps.Availability.Month(ctx, year, month0)
	out := availabilityResponse{
		Seq:     seq,
		Year:    view.Year,
		Month:   view.Month,
		Phase:   view.Phase,
		Message: view.Message,
		Days:    make([]dayResponse, 0, len(view.Days)),
	}
	for _, d := range view.Days {
		out.Days = append(out.Days, dayResponse{
			Date:         d.Date.Format("2006-01-02"),
			Occupied:     d.IsOccupied,
			CurrentMonth: d.IsCurrentMonth,
		})
	}
	if err != nil {
		status, body := errorFor(err)
		log.Warn("availability unavailable", "err", err, "code", body.Error)
		out.Error = body.Error
		return jsonResponse(status, out)
	}
	return jsonResponse(http.StatusOK, out)
}

func (h *Handler) serveConcierge(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_body"})
	}
	var in domain.ConciergeRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_json"})
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "empty_message"})
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "message_too_long"})
	}

	return jsonResponse(http.StatusOK, domain.ConciergeReply{Reply: h.deps.Concierge.Reply(ctx, message)})
}

func (h *Handler) serveInquiry(ctx context.Context, req events.APIGatewayProxyRequest, log *slog.Logger) events.APIGatewayProxyResponse {
	in, err := parseInquiry(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_body"})
	}
	if err := h.deps.Inquiries.Submit(ctx, in); err != nil {
		status, body := errorFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("inquiry relay failed", "err", err, "code", body.Error)
		}
		return jsonResponse(status, body)
	}
	return jsonResponse(http.StatusOK, inquiryResponse{Status: "sent"})
}

// parseInquiry accepts the contact form either form-encoded, with the relay's
// field names, or as JSON.
func parseInquiry(req events.APIGatewayProxyRequest) (domain.Inquiry, error) {
	body, err := requestBody(req)
	if err != nil {
		return domain.Inquiry{}, err
	}

	mediaType, _, _ := mime.ParseMediaType(header(req.Headers, "Content-Type"))
	if mediaType == "application/json" {
		var in inquiryRequest
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			return domain.Inquiry{}, err
		}
		return domain.Inquiry(in), nil
	}

	form, err := url.ParseQuery(body)
	if err != nil {
		return domain.Inquiry{}, err
	}
	return domain.Inquiry{
		Name:     form.Get("nome_completo"),
		Email:    form.Get("email"),
		CheckIn:  form.Get("data_checkin"),
		CheckOut: form.Get("data_checkout"),
		Message:  form.Get("messaggio"),
		Honeypot: form.Get("_gotcha"),
	}, nil
}

func (h *Handler) serveFeed(ctx context.Context, log *slog.Logger) events.APIGatewayProxyResponse {
	if h.deps.Occupancy == nil {
		return textResponse(http.StatusServiceUnavailable, "calendar not configured")
	}
	t := now().In(h.deps.Location)
	from := t.AddDate(0, 0, -1)
	to := t.AddDate(0, feedHorizonMonth, 0)

	evs, err := h.deps.Occupancy.ListEvents(ctx, from, to)
	if err != nil {
		log.Error("occupancy feed: list events failed", "err", err)
		return textResponse(http.StatusBadGateway, "calendar unavailable")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  "text/calendar; charset=utf-8",
			"Cache-Control": "no-store",
		},
		Body: icsfeed.Build(evs, h.deps.Location, t),
	}
}
