package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/resilience"
)

// PricingHTTPClient fetches a price forecast for an assembled payload. The
// forecast document is opaque and returned verbatim.
type PricingHTTPClient struct {
	baseClient
}

func NewPricingClient(baseURL string, breakers *resilience.CircuitBreakerRegistry, m *metrics.Metrics, logger *logging.Logger) *PricingHTTPClient {
	return &PricingHTTPClient{
		baseClient: newBaseClient("pricing", baseURL, breakers, m, logger),
	}
}

func (c *PricingHTTPClient) Forecast(ctx context.Context, payload *domain.Payload) (json.RawMessage, error) {
	endpoint := c.baseURL + "/api/v1/pricing/forecast"

	result, err := c.doJSON(ctx, http.MethodPost, endpoint, "forecast", payload)
	if err != nil {
		return nil, errors.ErrExternalCall("pricing", err)
	}
	if result.Status != http.StatusOK {
		return nil, errors.ErrExternalCall("pricing", fmt.Errorf("pricing returned status %d", result.Status))
	}

	return json.RawMessage(result.Body), nil
}
