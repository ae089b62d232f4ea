package domain

import (
	"sort"

	"github.com/google/uuid"
)

// StopRecord is the single flattened wire shape for a stop. It is used for
// JSON payloads and for BSON persistence; the typed variants exist only
// in memory. Items is populated for pickups, LinkedItems for dropoffs.
type StopRecord struct {
	ID            string       `json:"id" bson:"id"`
	Type          StopKind     `json:"type" bson:"type"`
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
	Items         []Item       `json:"items,omitempty" bson:"items,omitempty"`
	LinkedItems   []string     `json:"linked_items,omitempty" bson:"linkedItems,omitempty"`
}

// RecordFromStop flattens a stop into its wire shape. Linked item ids are
// sorted so records compare and serialize deterministically.
func RecordFromStop(s Stop) StopRecord {
	site := s.Site()
	rec := StopRecord{
		ID:            site.ID,
		Type:          s.Kind(),
		Location:      site.Location,
		Coordinates:   site.Coordinates,
		UnitNumber:    site.UnitNumber,
		Floor:         site.Floor,
		ParkingInfo:   site.ParkingInfo,
		HasElevator:   site.HasElevator,
		ServiceType:   site.ServiceType,
		PropertyType:  site.PropertyType,
		RoomCount:     site.RoomCount,
		FloorCount:    site.FloorCount,
		Instructions:  site.Instructions,
		EstimatedTime: site.EstimatedTime,
	}

	switch v := s.(type) {
	case *PickupStop:
		rec.Items = make([]Item, len(v.Items))
		copy(rec.Items, v.Items)
	case *DropoffStop:
		rec.LinkedItems = make([]string, 0, len(v.LinkedItems))
		for id := range v.LinkedItems {
			rec.LinkedItems = append(rec.LinkedItems, id)
		}
		sort.Strings(rec.LinkedItems)
	}

	return rec
}

// Stop rebuilds the typed variant from the record. Unknown stop types fail
// with ErrInvalidStopKind; items and linked ids outside the variant's kind
// are dropped rather than carried into the wrong variant.
func (r StopRecord) Stop() (Stop, error) {
	site := StopSite{
		ID:            r.ID,
		Location:      r.Location,
		Coordinates:   r.Coordinates,
		UnitNumber:    r.UnitNumber,
		Floor:         r.Floor,
		ParkingInfo:   r.ParkingInfo,
		HasElevator:   r.HasElevator,
		ServiceType:   r.ServiceType,
		PropertyType:  r.PropertyType,
		RoomCount:     r.RoomCount,
		FloorCount:    r.FloorCount,
		Instructions:  r.Instructions,
		EstimatedTime: r.EstimatedTime,
	}
	if site.ID == "" {
		site.ID = uuid.NewString()
	}

	switch r.Type {
	case KindPickup:
		items := make([]Item, len(r.Items))
		copy(items, r.Items)
		for i := range items {
			items[i].Normalize()
		}
		return &PickupStop{StopSite: site, Items: items}, nil
	case KindDropoff:
		linked := make(map[string]struct{}, len(r.LinkedItems))
		for _, id := range r.LinkedItems {
			linked[id] = struct{}{}
		}
		return &DropoffStop{StopSite: site, LinkedItems: linked}, nil
	case KindIntermediate:
		return &IntermediateStop{StopSite: site}, nil
	default:
		return nil, ErrInvalidStopKind
	}
}
