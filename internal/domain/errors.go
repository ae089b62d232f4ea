package domain

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidOwner     = errors.New("items can only be registered at pickup stops")
	ErrNotDropoff       = errors.New("links can only be toggled on dropoff stops")
	ErrStopNotFound     = errors.New("stop not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrIndexOutOfRange  = errors.New("stop index out of range")
	ErrInvalidStopKind  = errors.New("invalid stop type")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrInvalidMode      = errors.New("invalid request mode")
	ErrPresetNotFound   = errors.New("catalog preset not found")
	ErrSessionSubmitted = errors.New("session already submitted")
)

// IncompleteStopError is returned by payload assembly when a pickup or
// dropoff stop has no location. Intermediate stops may be locationless.
type IncompleteStopError struct {
	StopID string
	Kind   StopKind
	Index  int
}

func (e *IncompleteStopError) Error() string {
	return fmt.Sprintf("stop %s (%s) at position %d has no location", e.StopID, e.Kind, e.Index)
}
