package domain

import "github.com/google/uuid"

// FlatFields are the simple non-journey form fields the wizard collects.
// In direct mode they are the primary editing surface; in journey mode the
// stop sequence takes over and the flat fields only carry contact, schedule
// and service metadata.
type FlatFields struct {
	ContactName  string `json:"contact_name,omitempty" bson:"contactName,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty" bson:"contactPhone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" bson:"contactEmail,omitempty"`

	PickupLocation    string       `json:"pickup_location,omitempty" bson:"pickupLocation,omitempty"`
	PickupCoordinates *Coordinates `json:"pickup_coordinates,omitempty" bson:"pickupCoordinates,omitempty"`
	PickupUnitNumber  string       `json:"pickup_unit_number,omitempty" bson:"pickupUnitNumber,omitempty"`
	PickupFloor       string       `json:"pickup_floor,omitempty" bson:"pickupFloor,omitempty"`
	PickupParkingInfo string       `json:"pickup_parking_info,omitempty" bson:"pickupParkingInfo,omitempty"`
	PickupHasElevator bool         `json:"pickup_has_elevator" bson:"pickupHasElevator"`

	DropoffLocation    string       `json:"dropoff_location,omitempty" bson:"dropoffLocation,omitempty"`
	DropoffCoordinates *Coordinates `json:"dropoff_coordinates,omitempty" bson:"dropoffCoordinates,omitempty"`
	DropoffUnitNumber  string       `json:"dropoff_unit_number,omitempty" bson:"dropoffUnitNumber,omitempty"`
	DropoffFloor       string       `json:"dropoff_floor,omitempty" bson:"dropoffFloor,omitempty"`
	DropoffParkingInfo string       `json:"dropoff_parking_info,omitempty" bson:"dropoffParkingInfo,omitempty"`
	DropoffHasElevator bool         `json:"dropoff_has_elevator" bson:"dropoffHasElevator"`

	ServiceType  ServiceType `json:"service_type,omitempty" bson:"serviceType,omitempty"`
	PropertyType string      `json:"property_type,omitempty" bson:"propertyType,omitempty"`
	RoomCount    int         `json:"room_count,omitempty" bson:"roomCount,omitempty"`
	FloorCount   int         `json:"floor_count,omitempty" bson:"floorCount,omitempty"`

	PreferredDate string `json:"preferred_date,omitempty" bson:"preferredDate,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty" bson:"preferredTime,omitempty"`

	MovingItems []Item `json:"moving_items,omitempty" bson:"movingItems,omitempty"`
}

// Reconcile aligns the stop sequence with the flat form fields. It is a pure
// function invoked at well-defined points (mode switch, preview, submission)
// rather than on every field change.
//
// A direct sequence is first collapsed back to its first pickup and first
// dropoff. An empty sequence (including one the collapse emptied) is seeded
// with a pickup/dropoff pair built from the flat pickup and dropoff fields,
// with fresh ids for the stops and for any items carried in the flat
// moving-items list. In direct mode the flat list is authoritative and
// overwrites the pickup stop's items.
func Reconcile(flat FlatFields, seq *Sequence) *Sequence {
	var work *Sequence
	if seq == nil {
		work = NewSequence(ModeDirect)
	} else {
		work = seq.Clone()
	}

	if work.Mode == ModeDirect {
		// A direct sequence holds exactly one pickup and one dropoff; stops
		// accumulated since the last reconcile point are dropped here.
		work.collapseToDirect()
	}

	if len(work.Stops) == 0 {
		work.Stops = seedFromFlat(flat)
		return work
	}

	if work.Mode == ModeDirect {
		for _, stop := range work.Stops {
			if pickup, ok := stop.(*PickupStop); ok {
				pickup.Items = freshItems(flat.MovingItems)
				break
			}
		}
		work.PruneDanglingLinks()
	}

	return work
}

func seedFromFlat(flat FlatFields) []Stop {
	pickup := &PickupStop{
		StopSite: StopSite{
			ID:           uuid.NewString(),
			Location:     flat.PickupLocation,
			Coordinates:  flat.PickupCoordinates,
			UnitNumber:   flat.PickupUnitNumber,
			Floor:        flat.PickupFloor,
			ParkingInfo:  flat.PickupParkingInfo,
			HasElevator:  flat.PickupHasElevator,
			ServiceType:  flat.ServiceType,
			PropertyType: flat.PropertyType,
			RoomCount:    flat.RoomCount,
			FloorCount:   flat.FloorCount,
		},
		Items: freshItems(flat.MovingItems),
	}

	dropoff := &DropoffStop{
		StopSite: StopSite{
			ID:          uuid.NewString(),
			Location:    flat.DropoffLocation,
			Coordinates: flat.DropoffCoordinates,
			UnitNumber:  flat.DropoffUnitNumber,
			Floor:       flat.DropoffFloor,
			ParkingInfo: flat.DropoffParkingInfo,
			HasElevator: flat.DropoffHasElevator,
		},
		LinkedItems: make(map[string]struct{}),
	}

	return []Stop{pickup, dropoff}
}

// freshItems copies the flat item list, assigning ids and defaults
func freshItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].Normalize()
	}
	return out
}
