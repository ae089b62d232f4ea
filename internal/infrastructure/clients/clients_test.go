package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() (*resilience.CircuitBreakerRegistry, *metrics.Metrics, *logging.Logger) {
	cfg := logging.DefaultConfig("booking-service-test")
	cfg.Level = logging.LevelError
	logger := logging.New(cfg)
	m := metrics.New(metrics.DefaultConfig("booking_service_test"))
	return resilience.NewCircuitBreakerRegistry(logger.Logger, m), m, logger
}

func TestGeocodingClientResolvesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/geocode", r.URL.Path)
		assert.Equal(t, "12 harbour st", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"formatted_label": "12 Harbour St, Dublin 2, Ireland",
			"coordinates": {"lat": 53.34, "lng": -6.26}
		}`))
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewGeocodingClient(server.URL, registry, m, logger)

	result, err := client.Geocode(context.Background(), "12 harbour st")
	require.NoError(t, err)
	assert.Equal(t, "12 Harbour St, Dublin 2, Ireland", result.FormattedLabel)
	require.NotNil(t, result.Coordinates)
	assert.Equal(t, 53.34, result.Coordinates.Lat)
}

func TestGeocodingClientNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewGeocodingClient(server.URL, registry, m, logger)

	_, err := client.Geocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGeocodingClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewGeocodingClient(server.URL, registry, m, logger)

	_, err := client.Geocode(context.Background(), "12 harbour st")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocoding")
}

func TestStorageClientReturnsStatusAsResult(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantAccepted bool
	}{
		{"created", http.StatusCreated, `{"request_id":"REQ-77"}`, true},
		{"ok", http.StatusOK, `{"request_id":"REQ-78"}`, true},
		{"rejected", http.StatusBadRequest, `{"error":"missing contact"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/requests/steps/4", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			registry, m, logger := testDeps()
			client := NewStorageClient(server.URL, registry, m, logger)

			result, err := client.SubmitStep(context.Background(), 4, &domain.Payload{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccepted, result.Accepted())
			assert.JSONEq(t, tt.body, string(result.Data))
		})
	}
}

func TestStorageClientSendsPayload(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewStorageClient(server.URL, registry, m, logger)

	payload := &domain.Payload{
		RequestMode:          domain.ModeJourney,
		TotalEstimatedWeight: "40",
	}
	payload.ContactName = "Dana Reyes"

	_, err := client.SubmitStep(context.Background(), 4, payload)
	require.NoError(t, err)
	assert.Equal(t, "journey", received["request_mode"])
	assert.Equal(t, "Dana Reyes", received["contact_name"])
	assert.Equal(t, "40", received["total_estimated_weight"])
}

func TestPricingClientForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/pricing/forecast", r.URL.Path)
		w.Write([]byte(`{"total":"450.00","currency":"EUR"}`))
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewPricingClient(server.URL, registry, m, logger)

	forecast, err := client.Forecast(context.Background(), &domain.Payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"450.00","currency":"EUR"}`, string(forecast))
}

func TestPricingClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	registry, m, logger := testDeps()
	client := NewPricingClient(server.URL, registry, m, logger)

	_, err := client.Forecast(context.Background(), &domain.Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing")
}
