package application

import "github.com/morevans/booking-service/internal/domain"

// CreateSessionCommand starts a wizard session, blank or pre-populated from
// a previously saved draft
type CreateSessionCommand struct {
	Mode  domain.RequestMode
	Flat  *domain.FlatFields
	Stops []domain.StopRecord
}

// SetModeCommand switches the request mode
type SetModeCommand struct {
	SessionID string
	Mode      domain.RequestMode
}

// AddStopCommand appends or inserts a stop
type AddStopCommand struct {
	SessionID  string
	Kind       domain.StopKind
	AfterIndex int // -1 appends
}

// PatchStopCommand updates a stop's site fields
type PatchStopCommand struct {
	SessionID string
	StopID    string
	Patch     domain.SitePatch
}

// RemoveStopCommand removes a stop by id
type RemoveStopCommand struct {
	SessionID string
	StopID    string
}

// MoveStopCommand repositions a stop
type MoveStopCommand struct {
	SessionID string
	FromIndex int
	ToIndex   int
}

// GeocodeStopCommand resolves a stop's location text via the geocoding
// collaborator and stores the result on the stop
type GeocodeStopCommand struct {
	SessionID string
	StopID    string
	Query     string
}

// AddItemCommand registers an item at a pickup stop, either manually or
// from a catalog preset
type AddItemCommand struct {
	SessionID string
	StopID    string
	PresetKey string
	Item      domain.Item
}

// PatchItemCommand shallow-merges changes into an item
type PatchItemCommand struct {
	SessionID string
	StopID    string
	ItemID    string
	Patch     domain.ItemPatch
}

// RemoveItemCommand removes an item from its pickup stop
type RemoveItemCommand struct {
	SessionID string
	StopID    string
	ItemID    string
}

// ToggleLinkCommand toggles one item on a dropoff's linked set
type ToggleLinkCommand struct {
	SessionID     string
	DropoffStopID string
	ItemID        string
}

// TogglePickupLinksCommand bulk-toggles every item of one pickup
type TogglePickupLinksCommand struct {
	SessionID     string
	DropoffStopID string
	PickupStopID  string
}

// ToggleAllLinksCommand bulk-toggles the union of all pickups' items
type ToggleAllLinksCommand struct {
	SessionID     string
	DropoffStopID string
}

// SubmitStepCommand submits one wizard step. Flat, when present, replaces
// the session's flat form fields before the step is processed.
type SubmitStepCommand struct {
	SessionID string
	Step      int
	Flat      *domain.FlatFields
}

// ListDraftsQuery pages through draft sessions
type ListDraftsQuery struct {
	Limit  int64
	Offset int64
}
