package application

import (
	"context"
	"encoding/json"

	"github.com/morevans/booking-service/internal/domain"
)

// GeocodeResult is what the geocoding collaborator returns for a free-text
// query; it is stored verbatim, coordinates are never range-checked here
type GeocodeResult struct {
	FormattedLabel string              `json:"formatted_label"`
	Coordinates    *domain.Coordinates `json:"coordinates,omitempty"`
}

// GeocodingClient resolves free-text addresses
type GeocodingClient interface {
	Geocode(ctx context.Context, query string) (*GeocodeResult, error)
}

// StorageResult is the request-storage collaborator's response envelope
type StorageResult struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Accepted reports whether the storage collaborator accepted the submission
func (r *StorageResult) Accepted() bool {
	return r.Status == 200 || r.Status == 201
}

// RequestStorageClient owns draft/request persistence on the collaborator
// side; the engine only posts step-numbered submissions to it
type RequestStorageClient interface {
	SubmitStep(ctx context.Context, step int, payload *domain.Payload) (*StorageResult, error)
}

// PricingClient returns a price forecast for a finalized payload. The
// forecast document is opaque to the engine and passed through untouched.
type PricingClient interface {
	Forecast(ctx context.Context, payload *domain.Payload) (json.RawMessage, error)
}
