package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"casatorpe/internal/content"
	"casatorpe/internal/domain"
	"casatorpe/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type AvailabilityReader interface {
	Month(ctx context.Context, year, month0 int) (domain.MonthView, error)
	Configured() bool
}

type ConciergeReplier interface {
	Reply(ctx context.Context, message string) string
	Configured() bool
}

type InquirySubmitter interface {
	Submit(ctx context.Context, in domain.Inquiry) error
	Configured() bool
}

// Links are the outbound contact channels shown on the page.
type Links struct {
	Telegram     string
	WhatsApp     string
	ContactEmail string
}

// Deps groups what the handler serves. Occupancy may be nil when no calendar
// is configured; the feed then answers 503.
type Deps struct {
	Availability AvailabilityReader
	Concierge    ConciergeReplier
	Inquiries    InquirySubmitter
	Occupancy    usecase.EventLister
	Site         *content.Site
	Payments     []content.PaymentOption
	Links        Links
	Location     *time.Location
}

type Handler struct {
	deps Deps
	page *template.Template
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func NewHandler(deps Deps) (*Handler, error) {
	if deps.Availability == nil {
		return nil, errors.New("handler: availability service must not be nil")
	}
	if deps.Concierge == nil {
		return nil, errors.New("handler: concierge service must not be nil")
	}
	if deps.Inquiries == nil {
		return nil, errors.New("handler: inquiry service must not be nil")
	}
	if deps.Site == nil {
		return nil, errors.New("handler: site content must not be nil")
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	return &Handler{deps: deps, page: page}, nil
}

// Handle serves one API Gateway proxy request. It never returns an error;
// failures are encoded in the response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := header(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newUUID()
	}
	log := slog.With("correlation_id", correlationID, "method", req.HTTPMethod, "path", req.Path)

	resp := h.route(ctx, req, log)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers[correlationHeader] = correlationID

	log.Info("request handled", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (h *Handler) route(ctx context.Context, req events.APIGatewayProxyRequest, log *slog.Logger) events.APIGatewayProxyResponse {
	path := strings.TrimSuffix(req.Path, "/")
	if path == "" {
		path = "/"
	}

	type route struct {
		method string
		serve  func() events.APIGatewayProxyResponse
	}
	routes := map[string]route{
		"/":                 {http.MethodGet, func() events.APIGatewayProxyResponse { return h.servePage(req, log) }},
		"/api/availability": {http.MethodGet, func() events.APIGatewayProxyResponse { return h.serveAvailability(ctx, req, log) }},
		"/api/concierge":    {http.MethodPost, func() events.APIGatewayProxyResponse { return h.serveConcierge(ctx, req) }},
		"/api/inquiry":      {http.MethodPost, func() events.APIGatewayProxyResponse { return h.serveInquiry(ctx, req, log) }},
		"/availability.ics": {http.MethodGet, func() events.APIGatewayProxyResponse { return h.serveFeed(ctx, log) }},
		"/static/app.js":    {http.MethodGet, h.serveScript},
		"/health":           {http.MethodGet, func() events.APIGatewayProxyResponse { return textResponse(http.StatusOK, "ok") }},
	}

	r, ok := routes[path]
	if !ok {
		return jsonResponse(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	}
	if req.HTTPMethod != r.method {
		resp := jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED"})
		resp.Headers["Allow"] = r.method
		return resp
	}
	return r.serve()
}

// errorFor maps a usecase error to its HTTP status and body.
func errorFor(err error) (int, errorResponse) {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		return http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}
	}
	return statusForCode(ue.Code), errorResponse{Error: string(ue.Code), Reason: ue.Reason}
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotConfigured:
		return http.StatusServiceUnavailable
	case usecase.ErrorCalendarNotPublic, usecase.ErrorCalendarNotFound, usecase.ErrorUpstream:
		return http.StatusBadGateway
	case usecase.ErrorNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}

// header looks up a request header case-insensitively.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func requestBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	raw, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var (
	newUUID = func() string { return uuid.NewString() }
	now     = time.Now
)
