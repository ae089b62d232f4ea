package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/morevans/booking-service/internal/application"
	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/resilience"
)

// StorageHTTPClient posts step-numbered submissions to the request-storage
// collaborator. The HTTP status is part of the result, not an error: the
// submission flow decides what a rejection means.
type StorageHTTPClient struct {
	baseClient
}

func NewStorageClient(baseURL string, breakers *resilience.CircuitBreakerRegistry, m *metrics.Metrics, logger *logging.Logger) *StorageHTTPClient {
	return &StorageHTTPClient{
		baseClient: newBaseClient("request-storage", baseURL, breakers, m, logger),
	}
}

func (c *StorageHTTPClient) SubmitStep(ctx context.Context, step int, payload *domain.Payload) (*application.StorageResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/requests/steps/%d", c.baseURL, step)

	result, err := c.doJSON(ctx, http.MethodPost, endpoint, "submit_step", payload)
	if err != nil {
		return nil, errors.ErrExternalCall("request storage", err)
	}

	return &application.StorageResult{
		Status: result.Status,
		Data:   result.Body,
	}, nil
}
