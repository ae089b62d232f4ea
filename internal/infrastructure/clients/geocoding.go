package clients

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/morevans/booking-service/internal/application"
	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/resilience"
)

// GeocodingHTTPClient resolves free-text addresses against the geocoding
// collaborator. Lookups retry on transient failure; the result is passed
// through without any post-processing.
type GeocodingHTTPClient struct {
	baseClient
	retry *resilience.RetryConfig
}

func NewGeocodingClient(baseURL string, breakers *resilience.CircuitBreakerRegistry, m *metrics.Metrics, logger *logging.Logger) *GeocodingHTTPClient {
	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = func(err error) bool {
		// No point retrying while the breaker is open
		return !stderrors.Is(err, resilience.ErrCircuitOpen)
	}

	return &GeocodingHTTPClient{
		baseClient: newBaseClient("geocoding", baseURL, breakers, m, logger),
		retry:      retry,
	}
}

func (c *GeocodingHTTPClient) Geocode(ctx context.Context, query string) (*application.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/geocode?q=%s", c.baseURL, url.QueryEscape(query))

	result, err := resilience.RetryWithResult(ctx, c.retry, func() (*httpResult, error) {
		return c.doJSON(ctx, http.MethodGet, endpoint, "geocode", nil)
	})
	if err != nil {
		return nil, errors.ErrExternalCall("geocoding", err)
	}

	switch {
	case result.Status == http.StatusNotFound:
		return nil, errors.ErrNotFound("address")
	case result.Status != http.StatusOK:
		return nil, errors.ErrExternalCall("geocoding", fmt.Errorf("geocoding returned status %d", result.Status))
	}

	var geocoded application.GeocodeResult
	if err := json.Unmarshal(result.Body, &geocoded); err != nil {
		return nil, errors.ErrExternalCall("geocoding", fmt.Errorf("failed to decode geocoding response: %w", err))
	}
	return &geocoded, nil
}
