package application

import (
	"encoding/json"
	"time"

	"github.com/morevans/booking-service/internal/domain"
)

// SessionDTO is the full wizard session as returned to the UI
type SessionDTO struct {
	SessionID   string               `json:"session_id"`
	Status      domain.SessionStatus `json:"status"`
	CurrentStep int                  `json:"current_step"`
	RequestMode domain.RequestMode   `json:"request_mode"`
	Stops       []StopDTO            `json:"journey_stops"`
	Flat        domain.FlatFields    `json:"flat"`

	TotalEstimatedWeight string `json:"total_estimated_weight"`
	TotalDeclaredValue   string `json:"total_declared_value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StopDTO is a stop record plus its display lettering
type StopDTO struct {
	domain.StopRecord
	Label string `json:"label"`
}

// SessionSummaryDTO is the list-view shape for saved drafts
type SessionSummaryDTO struct {
	SessionID   string               `json:"session_id"`
	Status      domain.SessionStatus `json:"status"`
	CurrentStep int                  `json:"current_step"`
	RequestMode domain.RequestMode   `json:"request_mode"`
	StopCount   int                  `json:"stop_count"`
	ItemCount   int                  `json:"item_count"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// LinkableItemsDTO groups the linkable union for the link picker
type LinkableItemsDTO struct {
	Items []domain.LinkableItem `json:"items"`
}

// StepResultDTO is returned by step submissions. Forecast is only present
// after the final step and is passed through from the pricing collaborator
// untouched.
type StepResultDTO struct {
	SessionID   string               `json:"session_id"`
	Step        int                  `json:"step"`
	Status      domain.SessionStatus `json:"status"`
	CurrentStep int                  `json:"current_step"`
	Stored      json.RawMessage      `json:"stored,omitempty"`
	Forecast    json.RawMessage      `json:"forecast,omitempty"`
}
