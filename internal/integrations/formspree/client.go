package formspree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casatorpe/internal/domain"
)

const (
	subject  = "Nuova richiesta prenotazione"
	language = "it"
)

// HTTPStatusError is a non-2xx response from the form endpoint.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("formspree: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts booking inquiries to one hosted form endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("formspree: endpoint must not be empty")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("formspree: invalid endpoint: %w", err)
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit posts the inquiry form-encoded. Success is any 2xx status.
func (c *Client) Submit(ctx context.Context, in domain.Inquiry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(formValues(in).Encode()))
	if err != nil {
		return fmt.Errorf("formspree: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("formspree: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))
	return nil
}

func formValues(in domain.Inquiry) url.Values {
	v := url.Values{}
	v.Set("nome_completo", in.Name)
	v.Set("email", in.Email)
	v.Set("data_checkin", in.CheckIn)
	v.Set("data_checkout", in.CheckOut)
	v.Set("messaggio", in.Message)
	v.Set("_gotcha", in.Honeypot)
	v.Set("_subject", subject)
	v.Set("_language", language)
	return v
}
