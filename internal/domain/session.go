package domain

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus represents the lifecycle state of a wizard session
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusSubmitted SessionStatus = "submitted"
)

// Wizard step bounds. Steps: 1 contact, 2 locations, 3 service details,
// 4 schedule and submit.
const (
	FirstStep = 1
	FinalStep = 4
)

// WizardSession is the aggregate root for one intake wizard run. It owns
// the flat form fields, the request mode and the stop sequence; the stop
// sequence is persisted as wire records and rebuilt into typed stops on
// demand.
type WizardSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID   string             `bson:"sessionId" json:"session_id"`
	Status      SessionStatus      `bson:"status" json:"status"`
	CurrentStep int                `bson:"currentStep" json:"current_step"`
	Mode        RequestMode        `bson:"requestMode" json:"request_mode"`
	Stops       []StopRecord       `bson:"stops" json:"journey_stops"`
	Flat        FlatFields         `bson:",inline" json:"flat"`

	// Generation advances on every saved change so results of an in-flight
	// submission cannot land on a model that has since moved on.
	Generation int64 `bson:"generation" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// NewWizardSession creates a blank draft session in direct mode
func NewWizardSession() *WizardSession {
	now := time.Now().UTC()
	return &WizardSession{
		SessionID:   NewSessionID(),
		Status:      SessionStatusDraft,
		CurrentStep: FirstStep,
		Mode:        ModeDirect,
		Stops:       make([]StopRecord, 0),
		Generation:  1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewSessionID produces a session identifier like "SES-1b9d6bcd"
func NewSessionID() string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "SES-" + fragment
}

// Sequence rebuilds the typed stop sequence from the stored records
func (s *WizardSession) Sequence() (*Sequence, error) {
	return SequenceFromRecords(s.Mode, s.Stops)
}

// SetSequence stores the sequence back as wire records
func (s *WizardSession) SetSequence(seq *Sequence) {
	s.Mode = seq.Mode
	s.Stops = seq.Records()
	s.Touch()
}

// Touch bumps the updated timestamp
func (s *WizardSession) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// AdvanceStep moves the wizard forward, capped at the final step
func (s *WizardSession) AdvanceStep() {
	if s.CurrentStep < FinalStep {
		s.CurrentStep++
	}
	s.Touch()
}

// MarkSubmitted finalizes the session
func (s *WizardSession) MarkSubmitted() error {
	if s.Status == SessionStatusSubmitted {
		return ErrSessionSubmitted
	}
	s.Status = SessionStatusSubmitted
	s.Touch()
	return nil
}

// Clone deep-copies the session
func (s *WizardSession) Clone() *WizardSession {
	clone := *s

	clone.Stops = make([]StopRecord, len(s.Stops))
	copy(clone.Stops, s.Stops)
	for i := range clone.Stops {
		if s.Stops[i].Items != nil {
			clone.Stops[i].Items = append([]Item(nil), s.Stops[i].Items...)
		}
		if s.Stops[i].LinkedItems != nil {
			clone.Stops[i].LinkedItems = append([]string(nil), s.Stops[i].LinkedItems...)
		}
	}

	if s.Flat.MovingItems != nil {
		clone.Flat.MovingItems = append([]Item(nil), s.Flat.MovingItems...)
	}

	return &clone
}

// StructurallyEqual compares the user-visible content of two sessions,
// ignoring storage identity, generation and timestamps. Used to detect
// divergence between the active copy and the persisted mirror.
func (s *WizardSession) StructurallyEqual(other *WizardSession) bool {
	if other == nil {
		return false
	}

	return s.SessionID == other.SessionID &&
		s.Status == other.Status &&
		s.CurrentStep == other.CurrentStep &&
		s.Mode == other.Mode &&
		reflect.DeepEqual(s.Stops, other.Stops) &&
		reflect.DeepEqual(s.Flat, other.Flat)
}
