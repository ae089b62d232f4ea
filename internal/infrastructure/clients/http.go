package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/resilience"
)

const defaultTimeout = 30 * time.Second

// httpResult carries the raw outcome of a collaborator call
type httpResult struct {
	Status int
	Body   []byte
}

// baseClient bundles the transport plumbing every collaborator client
// shares: a pooled http.Client, a named circuit breaker, call metrics and
// structured call logging.
type baseClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

func newBaseClient(service, baseURL string, breakers *resilience.CircuitBreakerRegistry, m *metrics.Metrics, logger *logging.Logger) baseClient {
	return baseClient{
		service:    service,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    breakers.Get(service),
		metrics:    m,
		logger:     logger.WithComponent(service + "-client"),
	}
}

// doJSON performs one JSON request through the circuit breaker. Transport
// failures are errors; HTTP status codes are the caller's business.
func (c *baseClient) doJSON(ctx context.Context, method, url, operation string, body interface{}) (*httpResult, error) {
	start := time.Now()

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request to %s failed: %w", c.service, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", c.service, err)
		}

		return &httpResult{Status: resp.StatusCode, Body: data}, nil
	})

	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordExternalCall(c.service, operation, 0, duration)
		c.logger.ExternalCall(ctx, c.service, operation, 0, duration, false)
		return nil, err
	}

	out := result.(*httpResult)
	c.metrics.RecordExternalCall(c.service, operation, out.Status, duration)
	c.logger.ExternalCall(ctx, c.service, operation, out.Status, duration, out.Status < 500)
	return out, nil
}
