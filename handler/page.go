package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"casatorpe/internal/content"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static/app.js
var appJS string

var weekdays = []string{"Lun", "Mar", "Mer", "Gio", "Ven", "Sab", "Dom"}

type pageData struct {
	Site *content.Site

	Gallery           []content.GalleryImage
	GalleryCategories []string
	GalleryCategory   string

	Excursions          []content.Excursion
	ExcursionCategories []string
	ExcursionCategory   string

	Payments []content.PaymentOption
	Links    Links
	Weekdays []string

	CalendarConfigured  bool
	ConciergeConfigured bool
	InquiryConfigured   bool
	Year                int
}

func parsePage() (*template.Template, error) {
	tpl, err := template.New("index.html").Funcs(template.FuncMap{
		"categoryQuery": categoryQuery,
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("handler: parse templates: %w", err)
	}
	return tpl, nil
}

func (h *Handler) servePage(req events.APIGatewayProxyRequest, log *slog.Logger) events.APIGatewayProxyResponse {
	site := h.deps.Site
	galleryCat := selectedCategory(req.QueryStringParameters["gallery"])
	excursionCat := selectedCategory(req.QueryStringParameters["excursions"])

	data := pageData{
		Site:                site,
		Gallery:             site.FilterGallery(galleryCat),
		GalleryCategories:   site.GalleryCategories(),
		GalleryCategory:     galleryCat,
		Excursions:          site.FilterExcursions(excursionCat),
		ExcursionCategories: site.ExcursionCategories(),
		ExcursionCategory:   excursionCat,
		Payments:            h.deps.Payments,
		Links:               h.deps.Links,
		Weekdays:            weekdays,
		CalendarConfigured:  h.deps.Availability.Configured(),
		ConciergeConfigured: h.deps.Concierge.Configured(),
		InquiryConfigured:   h.deps.Inquiries.Configured(),
		Year:                now().In(h.deps.Location).Year(),
	}

	var buf bytes.Buffer
	if err := h.page.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Error("render page failed", "err", err)
		return textResponse(http.StatusInternalServerError, "errore interno")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Body:       buf.String(),
	}
}

func (h *Handler) serveScript() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  "text/javascript; charset=utf-8",
			"Cache-Control": "public, max-age=300",
		},
		Body: appJS,
	}
}

func selectedCategory(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return content.AllCategories
	}
	return v
}

// categoryQuery builds the page URL that keeps the other section's filter.
func categoryQuery(param, value, otherParam, otherValue string) template.URL {
	q := make([]string, 0, 2)
	if value != content.AllCategories {
		q = append(q, param+"="+template.URLQueryEscaper(value))
	}
	if otherValue != "" && otherValue != content.AllCategories {
		q = append(q, otherParam+"="+template.URLQueryEscaper(otherValue))
	}
	if len(q) == 0 {
		return "/"
	}
	return template.URL("/?" + strings.Join(q, "&"))
}
