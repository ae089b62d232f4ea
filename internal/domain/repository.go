package domain

import "context"

// SessionRepository is the persistence port for the wizard session mirror
type SessionRepository interface {
	// Save upserts the session by its session id
	Save(ctx context.Context, session *WizardSession) error

	// FindBySessionID returns (nil, nil) when the session does not exist
	FindBySessionID(ctx context.Context, sessionID string) (*WizardSession, error)

	// Delete removes the session; deleting a missing session is not an error
	Delete(ctx context.Context, sessionID string) error

	// ListDrafts returns draft sessions ordered by most recently updated
	ListDrafts(ctx context.Context, limit, offset int64) ([]*WizardSession, error)
}
