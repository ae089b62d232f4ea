package domain

// LinkableItem is a pickup stop's item tagged with its owner for display
// grouping in the link picker
type LinkableItem struct {
	Item
	PickupStopID string `json:"pickup_stop_id"`
	PickupLabel  string `json:"pickup_label"`
}

// LinkableItems returns the union of every pickup stop's items, in sequence
// order
func (s *Sequence) LinkableItems() []LinkableItem {
	out := make([]LinkableItem, 0)
	for i, stop := range s.Stops {
		pickup, ok := stop.(*PickupStop)
		if !ok {
			continue
		}
		for _, item := range pickup.Items {
			out = append(out, LinkableItem{
				Item:         item,
				PickupStopID: pickup.ID,
				PickupLabel:  StopLabel(i),
			})
		}
	}
	return out
}

// dropoffByID resolves a stop id to its dropoff variant
func (s *Sequence) dropoffByID(stopID string) (*DropoffStop, error) {
	stop, _, ok := s.StopByID(stopID)
	if !ok {
		return nil, ErrStopNotFound
	}
	dropoff, ok := stop.(*DropoffStop)
	if !ok {
		return nil, ErrNotDropoff
	}
	return dropoff, nil
}

// ToggleItemLink toggles one item id in the dropoff's linked set. Toggling
// an id no pickup owns is a no-op, not an error.
func (s *Sequence) ToggleItemLink(dropoffStopID, itemID string) error {
	dropoff, err := s.dropoffByID(dropoffStopID)
	if err != nil {
		return err
	}

	if _, owned := s.ownedItemIDs()[itemID]; !owned {
		return nil
	}

	if dropoff.Linked(itemID) {
		delete(dropoff.LinkedItems, itemID)
	} else {
		dropoff.LinkedItems[itemID] = struct{}{}
	}

	return nil
}

// ToggleAllFromPickup bulk-toggles every item of one pickup on a dropoff:
// if all of them are currently linked they are unlinked, otherwise all are
// linked. The per-pickup "select all" checkbox is checked iff all are linked.
func (s *Sequence) ToggleAllFromPickup(dropoffStopID, pickupStopID string) error {
	dropoff, err := s.dropoffByID(dropoffStopID)
	if err != nil {
		return err
	}

	stop, _, ok := s.StopByID(pickupStopID)
	if !ok {
		return ErrStopNotFound
	}
	pickup, ok := stop.(*PickupStop)
	if !ok {
		return ErrInvalidOwner
	}

	toggleAll(dropoff, itemIDs(pickup.Items))
	return nil
}

// ToggleAllGlobal applies the same rule across the union of every pickup's
// items
func (s *Sequence) ToggleAllGlobal(dropoffStopID string) error {
	dropoff, err := s.dropoffByID(dropoffStopID)
	if err != nil {
		return err
	}

	ids := make([]string, 0)
	for _, stop := range s.Stops {
		if pickup, ok := stop.(*PickupStop); ok {
			ids = append(ids, itemIDs(pickup.Items)...)
		}
	}

	toggleAll(dropoff, ids)
	return nil
}

// AllLinkedFromPickup reports whether every item of the pickup is linked on
// the dropoff. A pickup with no items is never "all linked".
func (s *Sequence) AllLinkedFromPickup(dropoffStopID, pickupStopID string) (bool, error) {
	dropoff, err := s.dropoffByID(dropoffStopID)
	if err != nil {
		return false, err
	}

	stop, _, ok := s.StopByID(pickupStopID)
	if !ok {
		return false, ErrStopNotFound
	}
	pickup, ok := stop.(*PickupStop)
	if !ok {
		return false, ErrInvalidOwner
	}

	return allLinked(dropoff, itemIDs(pickup.Items)), nil
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func allLinked(dropoff *DropoffStop, ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !dropoff.Linked(id) {
			return false
		}
	}
	return true
}

// toggleAll applies the "all linked means clear, anything else means select
// all" rule for a set of item ids
func toggleAll(dropoff *DropoffStop, ids []string) {
	if len(ids) == 0 {
		return
	}

	if allLinked(dropoff, ids) {
		for _, id := range ids {
			delete(dropoff.LinkedItems, id)
		}
		return
	}

	for _, id := range ids {
		dropoff.LinkedItems[id] = struct{}{}
	}
}
