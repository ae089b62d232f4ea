package application

import (
	"github.com/shopspring/decimal"

	"github.com/morevans/booking-service/internal/domain"
)

// ToSessionDTO maps a session aggregate to its API shape
func ToSessionDTO(session *domain.WizardSession) *SessionDTO {
	stops := make([]StopDTO, len(session.Stops))
	totalWeight := decimal.Zero
	totalValue := decimal.Zero

	for i, rec := range session.Stops {
		stops[i] = StopDTO{StopRecord: rec, Label: domain.StopLabel(i)}
		for j := range rec.Items {
			totalWeight = totalWeight.Add(rec.Items[j].EstimatedWeight())
			totalValue = totalValue.Add(rec.Items[j].DeclaredValue())
		}
	}

	return &SessionDTO{
		SessionID:            session.SessionID,
		Status:               session.Status,
		CurrentStep:          session.CurrentStep,
		RequestMode:          session.Mode,
		Stops:                stops,
		Flat:                 session.Flat,
		TotalEstimatedWeight: totalWeight.String(),
		TotalDeclaredValue:   totalValue.String(),
		CreatedAt:            session.CreatedAt,
		UpdatedAt:            session.UpdatedAt,
	}
}

// ToSessionSummaryDTO maps a session to its list-view shape
func ToSessionSummaryDTO(session *domain.WizardSession) SessionSummaryDTO {
	itemCount := 0
	for _, rec := range session.Stops {
		itemCount += len(rec.Items)
	}

	return SessionSummaryDTO{
		SessionID:   session.SessionID,
		Status:      session.Status,
		CurrentStep: session.CurrentStep,
		RequestMode: session.Mode,
		StopCount:   len(session.Stops),
		ItemCount:   itemCount,
		UpdatedAt:   session.UpdatedAt,
	}
}

// ToSessionSummaryDTOs maps a slice of sessions
func ToSessionSummaryDTOs(sessions []*domain.WizardSession) []SessionSummaryDTO {
	out := make([]SessionSummaryDTO, len(sessions))
	for i, s := range sessions {
		out[i] = ToSessionSummaryDTO(s)
	}
	return out
}
