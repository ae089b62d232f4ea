package domain

import "github.com/google/uuid"

// StopKind discriminates the stop variants
type StopKind string

const (
	KindPickup       StopKind = "pickup"
	KindDropoff      StopKind = "dropoff"
	KindIntermediate StopKind = "intermediate"
)

// IsValid checks if the kind is one of the known values
func (k StopKind) IsValid() bool {
	switch k {
	case KindPickup, KindDropoff, KindIntermediate:
		return true
	default:
		return false
	}
}

// ServiceType tags a stop with the kind of move being performed there
type ServiceType string

const (
	ServiceResidentialMove    ServiceType = "residential_move"
	ServiceOfficeRelocation   ServiceType = "office_relocation"
	ServicePianoMoving        ServiceType = "piano_moving"
	ServiceFurnitureDelivery  ServiceType = "furniture_delivery"
	ServiceApplianceTransport ServiceType = "appliance_transport"
	ServiceStorageMove        ServiceType = "storage_move"
)

// RequiresPropertyDetails reports whether the service type gates the extra
// property-detail fields (property type, room count, floor count)
func (s ServiceType) RequiresPropertyDetails() bool {
	switch s {
	case ServiceResidentialMove, ServiceOfficeRelocation, ServicePianoMoving:
		return true
	default:
		return false
	}
}

// Coordinates as returned by the geocoding collaborator, stored verbatim
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// StopSite holds the fields common to every stop variant
type StopSite struct {
	ID            string       `json:"id" bson:"id"`
	Location      string       `json:"location" bson:"location"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	UnitNumber    string       `json:"unit_number,omitempty" bson:"unitNumber,omitempty"`
	Floor         string       `json:"floor,omitempty" bson:"floor,omitempty"`
	ParkingInfo   string       `json:"parking_info,omitempty" bson:"parkingInfo,omitempty"`
	HasElevator   bool         `json:"has_elevator" bson:"hasElevator"`
	ServiceType   ServiceType  `json:"service_type,omitempty" bson:"serviceType,omitempty"`
	PropertyType  string       `json:"property_type,omitempty" bson:"propertyType,omitempty"`
	RoomCount     int          `json:"room_count,omitempty" bson:"roomCount,omitempty"`
	FloorCount    int          `json:"floor_count,omitempty" bson:"floorCount,omitempty"`
	Instructions  string       `json:"instructions,omitempty" bson:"instructions,omitempty"`
	EstimatedTime string       `json:"estimated_time,omitempty" bson:"estimatedTime,omitempty"`
}

// SitePatch is a shallow merge applied to a stop's site fields
type SitePatch struct {
	Location      *string      `json:"location,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	UnitNumber    *string      `json:"unit_number,omitempty"`
	Floor         *string      `json:"floor,omitempty"`
	ParkingInfo   *string      `json:"parking_info,omitempty"`
	HasElevator   *bool        `json:"has_elevator,omitempty"`
	ServiceType   *ServiceType `json:"service_type,omitempty"`
	PropertyType  *string      `json:"property_type,omitempty"`
	RoomCount     *int         `json:"room_count,omitempty"`
	FloorCount    *int         `json:"floor_count,omitempty"`
	Instructions  *string      `json:"instructions,omitempty"`
	EstimatedTime *string      `json:"estimated_time,omitempty"`
}

// Apply merges the patch into the site
func (p SitePatch) Apply(site *StopSite) {
	if p.Location != nil {
		site.Location = *p.Location
	}
	if p.Coordinates != nil {
		site.Coordinates = p.Coordinates
	}
	if p.UnitNumber != nil {
		site.UnitNumber = *p.UnitNumber
	}
	if p.Floor != nil {
		site.Floor = *p.Floor
	}
	if p.ParkingInfo != nil {
		site.ParkingInfo = *p.ParkingInfo
	}
	if p.HasElevator != nil {
		site.HasElevator = *p.HasElevator
	}
	if p.ServiceType != nil {
		site.ServiceType = *p.ServiceType
	}
	if p.PropertyType != nil {
		site.PropertyType = *p.PropertyType
	}
	if p.RoomCount != nil {
		site.RoomCount = *p.RoomCount
	}
	if p.FloorCount != nil {
		site.FloorCount = *p.FloorCount
	}
	if p.Instructions != nil {
		site.Instructions = *p.Instructions
	}
	if p.EstimatedTime != nil {
		site.EstimatedTime = *p.EstimatedTime
	}
}

// Stop is a location visited during a journey. The concrete variants carry
// only the fields meaningful to their kind: pickups own items, dropoffs
// reference them, intermediates do neither.
type Stop interface {
	Kind() StopKind
	Site() *StopSite
}

// PickupStop is where items are registered
type PickupStop struct {
	StopSite
	Items []Item
}

func (s *PickupStop) Kind() StopKind  { return KindPickup }
func (s *PickupStop) Site() *StopSite { return &s.StopSite }

// DropoffStop references items owned by pickup stops
type DropoffStop struct {
	StopSite
	LinkedItems map[string]struct{}
}

func (s *DropoffStop) Kind() StopKind  { return KindDropoff }
func (s *DropoffStop) Site() *StopSite { return &s.StopSite }

// Linked reports whether the item id is in the dropoff's linked set
func (s *DropoffStop) Linked(itemID string) bool {
	_, ok := s.LinkedItems[itemID]
	return ok
}

// IntermediateStop is a waypoint with no item semantics
type IntermediateStop struct {
	StopSite
}

func (s *IntermediateStop) Kind() StopKind  { return KindIntermediate }
func (s *IntermediateStop) Site() *StopSite { return &s.StopSite }

// NewStop creates a stop of the given kind with a generated id and the
// container defaults for its variant
func NewStop(kind StopKind) (Stop, error) {
	site := StopSite{ID: uuid.NewString()}

	switch kind {
	case KindPickup:
		return &PickupStop{StopSite: site, Items: make([]Item, 0)}, nil
	case KindDropoff:
		return &DropoffStop{StopSite: site, LinkedItems: make(map[string]struct{})}, nil
	case KindIntermediate:
		return &IntermediateStop{StopSite: site}, nil
	default:
		return nil, ErrInvalidStopKind
	}
}
