package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func TestHTTPAdapter_ConvertsRequestAndResponse(t *testing.T) {
	var got events.APIGatewayProxyRequest
	adapter := NewHTTPAdapter(func(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusCreated,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"ok":true}`,
		}, nil
	})
	srv := httptest.NewServer(adapter)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/concierge?seq=3", strings.NewReader(`{"message":"Ciao"}`))
	require.NoError(t, err)
	req.Header.Set("X-Correlation-Id", "corr-1")
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.Equal(t, `{"ok":true}`, string(body))

	require.Equal(t, http.MethodPost, got.HTTPMethod)
	require.Equal(t, "/api/concierge", got.Path)
	require.Equal(t, "3", got.QueryStringParameters["seq"])
	require.Equal(t, "corr-1", got.Headers["X-Correlation-Id"])
	require.Equal(t, `{"message":"Ciao"}`, got.Body)
}

func TestHTTPAdapter_DecodesBase64Response(t *testing.T) {
	adapter := NewHTTPAdapter(func(_ context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{
			StatusCode:      http.StatusOK,
			Body:            base64.StdEncoding.EncodeToString([]byte("binary")),
			IsBase64Encoded: true,
		}, nil
	})

	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "binary", rec.Body.String())
}

func TestHTTPAdapter_HandlerError(t *testing.T) {
	adapter := NewHTTPAdapter(func(_ context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, errors.New("boom")
	})

	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPAdapter_ServesHandler(t *testing.T) {
	h := newFixture(t).handler(t)
	adapter := NewHTTPAdapter(h.Handle)

	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Correlation-Id"))
}
