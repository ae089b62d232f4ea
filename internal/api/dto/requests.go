package dto

import "github.com/morevans/booking-service/internal/domain"

// CreateSessionRequest holds the input for starting a wizard session.
// Stops and flat fields are optional; supplying them resumes a saved draft.
type CreateSessionRequest struct {
	Mode  string              `json:"request_mode" binding:"omitempty,request_mode"`
	Flat  *domain.FlatFields  `json:"flat"`
	Stops []domain.StopRecord `json:"journey_stops" binding:"omitempty,dive"`
}

// SetModeRequest holds the input for switching the request mode
type SetModeRequest struct {
	Mode string `json:"request_mode" binding:"required,request_mode"`
}

// AddStopRequest holds the input for inserting a stop. AfterIndex is
// optional; when omitted the stop is appended.
type AddStopRequest struct {
	Type       string `json:"type" binding:"required,stop_type"`
	AfterIndex *int   `json:"after_index" binding:"omitempty,min=0"`
}

// InsertAfter returns the insertion index, -1 when appending
func (r *AddStopRequest) InsertAfter() int {
	if r.AfterIndex == nil {
		return -1
	}
	return *r.AfterIndex
}

// PatchStopRequest carries a partial stop site update. Absent fields leave
// the stop untouched.
type PatchStopRequest struct {
	Location      *string             `json:"location" binding:"omitempty,safe_string,max=500"`
	Coordinates   *domain.Coordinates `json:"coordinates"`
	UnitNumber    *string             `json:"unit_number" binding:"omitempty,max=50"`
	Floor         *string             `json:"floor" binding:"omitempty,max=50"`
	ParkingInfo   *string             `json:"parking_info" binding:"omitempty,max=500"`
	HasElevator   *bool               `json:"has_elevator"`
	ServiceType   *string             `json:"service_type" binding:"omitempty,max=50"`
	PropertyType  *string             `json:"property_type" binding:"omitempty,max=50"`
	RoomCount     *int                `json:"room_count" binding:"omitempty,min=0"`
	FloorCount    *int                `json:"floor_count" binding:"omitempty,min=0"`
	Instructions  *string             `json:"instructions" binding:"omitempty,max=1000"`
	EstimatedTime *string             `json:"estimated_time" binding:"omitempty,hhmm"`
}

// ToDomain converts the request into a site patch
func (r *PatchStopRequest) ToDomain() domain.SitePatch {
	patch := domain.SitePatch{
		Location:      r.Location,
		Coordinates:   r.Coordinates,
		UnitNumber:    r.UnitNumber,
		Floor:         r.Floor,
		ParkingInfo:   r.ParkingInfo,
		HasElevator:   r.HasElevator,
		PropertyType:  r.PropertyType,
		RoomCount:     r.RoomCount,
		FloorCount:    r.FloorCount,
		Instructions:  r.Instructions,
		EstimatedTime: r.EstimatedTime,
	}
	if r.ServiceType != nil {
		st := domain.ServiceType(*r.ServiceType)
		patch.ServiceType = &st
	}
	return patch
}

// MoveStopRequest holds the input for repositioning a stop
type MoveStopRequest struct {
	FromIndex *int `json:"from_index" binding:"required,min=0"`
	ToIndex   *int `json:"to_index" binding:"required,min=0"`
}

// GeocodeRequest holds the free-text location query to resolve
type GeocodeRequest struct {
	Query string `json:"query" binding:"required,safe_string,max=500"`
}

// AddItemRequest holds the input for registering an item at a pickup stop.
// Either a catalog preset key or a manual item description is supplied.
type AddItemRequest struct {
	PresetKey string       `json:"preset_key" binding:"omitempty,max=64"`
	Item      *ItemRequest `json:"item" binding:"omitempty"`
}

// ItemRequest describes a manually entered item
type ItemRequest struct {
	Name                string `json:"name" binding:"required,safe_string,max=200"`
	Category            string `json:"category" binding:"omitempty,item_category"`
	Quantity            int    `json:"quantity" binding:"omitempty,min=1"`
	Weight              string `json:"weight" binding:"omitempty,max=50"`
	Dimensions          string `json:"dimensions" binding:"omitempty,max=100"`
	Value               string `json:"value" binding:"omitempty,max=50"`
	Fragile             bool   `json:"fragile"`
	NeedsDisassembly    bool   `json:"needs_disassembly"`
	InsuranceRequired   bool   `json:"insurance_required"`
	Photo               string `json:"photo" binding:"omitempty,max=2048"`
	Notes               string `json:"notes" binding:"omitempty,max=1000"`
	SpecialInstructions string `json:"special_instructions" binding:"omitempty,max=1000"`
}

// ToDomain converts the request into a domain item
func (r *ItemRequest) ToDomain() domain.Item {
	return domain.Item{
		Name:                r.Name,
		Category:            domain.Category(r.Category),
		Quantity:            r.Quantity,
		Weight:              r.Weight,
		Dimensions:          r.Dimensions,
		Value:               r.Value,
		Fragile:             r.Fragile,
		NeedsDisassembly:    r.NeedsDisassembly,
		InsuranceRequired:   r.InsuranceRequired,
		Photo:               r.Photo,
		Notes:               r.Notes,
		SpecialInstructions: r.SpecialInstructions,
	}
}

// PatchItemRequest carries a partial item update
type PatchItemRequest struct {
	domain.ItemPatch
}

// ToggleLinkRequest holds the input for toggling a single item link on a
// dropoff stop
type ToggleLinkRequest struct {
	DropoffStopID string `json:"dropoff_stop_id" binding:"required"`
	ItemID        string `json:"item_id" binding:"required"`
}

// TogglePickupLinksRequest holds the input for bulk-toggling one pickup's
// items on a dropoff
type TogglePickupLinksRequest struct {
	DropoffStopID string `json:"dropoff_stop_id" binding:"required"`
	PickupStopID  string `json:"pickup_stop_id" binding:"required"`
}

// ToggleAllLinksRequest holds the input for bulk-toggling the union of all
// pickups' items on a dropoff
type ToggleAllLinksRequest struct {
	DropoffStopID string `json:"dropoff_stop_id" binding:"required"`
}

// SubmitStepRequest holds the flat form snapshot submitted with a wizard
// step. When present it replaces the session's flat fields wholesale.
type SubmitStepRequest struct {
	Flat *domain.FlatFields `json:"flat"`
}
