package domain

// Sequence is the ordered list of stops plus the request mode. Order matters
// for display lettering and schedule derivation only; it never gates linking.
type Sequence struct {
	Mode  RequestMode
	Stops []Stop
}

// NewSequence creates an empty sequence in the given mode
func NewSequence(mode RequestMode) *Sequence {
	if !mode.IsValid() {
		mode = ModeDirect
	}
	return &Sequence{Mode: mode, Stops: make([]Stop, 0)}
}

// AddStop creates a stop of the given kind and inserts it after afterIndex.
// Pass afterIndex -1 (or anything past the end) to append.
func (s *Sequence) AddStop(kind StopKind, afterIndex int) (Stop, error) {
	stop, err := NewStop(kind)
	if err != nil {
		return nil, err
	}

	pos := afterIndex + 1
	if afterIndex < 0 || pos > len(s.Stops) {
		pos = len(s.Stops)
	}

	s.Stops = append(s.Stops, nil)
	copy(s.Stops[pos+1:], s.Stops[pos:])
	s.Stops[pos] = stop

	return stop, nil
}

// RemoveStop removes the stop at index. Removing a pickup prunes its items'
// ids from every dropoff's linked set.
func (s *Sequence) RemoveStop(index int) (Stop, error) {
	if index < 0 || index >= len(s.Stops) {
		return nil, ErrIndexOutOfRange
	}

	removed := s.Stops[index]
	s.Stops = append(s.Stops[:index], s.Stops[index+1:]...)

	if _, ok := removed.(*PickupStop); ok {
		s.PruneDanglingLinks()
	}

	return removed, nil
}

// MoveStop repositions a stop with array-splice semantics: remove from the
// source index, insert at the destination index, everything else shifts.
// Ids, items and linked sets are untouched.
func (s *Sequence) MoveStop(fromIndex, toIndex int) error {
	if fromIndex < 0 || fromIndex >= len(s.Stops) || toIndex < 0 || toIndex >= len(s.Stops) {
		return ErrIndexOutOfRange
	}
	if fromIndex == toIndex {
		return nil
	}

	stop := s.Stops[fromIndex]
	s.Stops = append(s.Stops[:fromIndex], s.Stops[fromIndex+1:]...)

	s.Stops = append(s.Stops, nil)
	copy(s.Stops[toIndex+1:], s.Stops[toIndex:])
	s.Stops[toIndex] = stop

	return nil
}

// StopByID finds a stop by id and returns it with its current index
func (s *Sequence) StopByID(id string) (Stop, int, bool) {
	for i, stop := range s.Stops {
		if stop.Site().ID == id {
			return stop, i, true
		}
	}
	return nil, -1, false
}

// PatchStop applies site field updates to the stop with the given id
func (s *Sequence) PatchStop(stopID string, patch SitePatch) (Stop, error) {
	stop, _, ok := s.StopByID(stopID)
	if !ok {
		return nil, ErrStopNotFound
	}
	patch.Apply(stop.Site())
	return stop, nil
}

// AddItem registers an item at a pickup stop, assigning an id if absent.
// Targeting any other stop kind fails with ErrInvalidOwner.
func (s *Sequence) AddItem(stopID string, item Item) (*Item, error) {
	stop, _, ok := s.StopByID(stopID)
	if !ok {
		return nil, ErrStopNotFound
	}

	pickup, ok := stop.(*PickupStop)
	if !ok {
		return nil, ErrInvalidOwner
	}

	item.Normalize()
	pickup.Items = append(pickup.Items, item)
	return &pickup.Items[len(pickup.Items)-1], nil
}

// AddItemFromCatalog copies a catalog preset into a pickup stop with a
// fresh id
func (s *Sequence) AddItemFromCatalog(stopID, presetKey string) (*Item, error) {
	preset, ok := PresetByKey(presetKey)
	if !ok {
		return nil, ErrPresetNotFound
	}
	return s.AddItem(stopID, preset.NewItem())
}

// RemoveItem removes an item from its pickup stop and prunes its id from
// every dropoff's linked set
func (s *Sequence) RemoveItem(stopID, itemID string) error {
	stop, _, ok := s.StopByID(stopID)
	if !ok {
		return ErrStopNotFound
	}

	pickup, ok := stop.(*PickupStop)
	if !ok {
		return ErrInvalidOwner
	}

	for i := range pickup.Items {
		if pickup.Items[i].ID == itemID {
			pickup.Items = append(pickup.Items[:i], pickup.Items[i+1:]...)
			s.PruneDanglingLinks()
			return nil
		}
	}

	return ErrItemNotFound
}

// UpdateItem shallow-merges a patch into an item at a pickup stop
func (s *Sequence) UpdateItem(stopID, itemID string, patch ItemPatch) (*Item, error) {
	stop, _, ok := s.StopByID(stopID)
	if !ok {
		return nil, ErrStopNotFound
	}

	pickup, ok := stop.(*PickupStop)
	if !ok {
		return nil, ErrInvalidOwner
	}

	for i := range pickup.Items {
		if pickup.Items[i].ID == itemID {
			if err := patch.Apply(&pickup.Items[i]); err != nil {
				return nil, err
			}
			return &pickup.Items[i], nil
		}
	}

	return nil, ErrItemNotFound
}

// ownedItemIDs is the set of every pickup stop's item ids
func (s *Sequence) ownedItemIDs() map[string]struct{} {
	owned := make(map[string]struct{})
	for _, stop := range s.Stops {
		if pickup, ok := stop.(*PickupStop); ok {
			for _, item := range pickup.Items {
				owned[item.ID] = struct{}{}
			}
		}
	}
	return owned
}

// PruneDanglingLinks removes linked item ids that no pickup stop owns and
// returns how many were removed. Dangling links are healed silently, never
// surfaced.
func (s *Sequence) PruneDanglingLinks() int {
	owned := s.ownedItemIDs()

	pruned := 0
	for _, stop := range s.Stops {
		dropoff, ok := stop.(*DropoffStop)
		if !ok {
			continue
		}
		for id := range dropoff.LinkedItems {
			if _, exists := owned[id]; !exists {
				delete(dropoff.LinkedItems, id)
				pruned++
			}
		}
	}

	return pruned
}

// Records flattens every stop into its wire shape, in order
func (s *Sequence) Records() []StopRecord {
	records := make([]StopRecord, len(s.Stops))
	for i, stop := range s.Stops {
		records[i] = RecordFromStop(stop)
	}
	return records
}

// SequenceFromRecords rebuilds a sequence from stored records
func SequenceFromRecords(mode RequestMode, records []StopRecord) (*Sequence, error) {
	seq := NewSequence(mode)
	for _, rec := range records {
		stop, err := rec.Stop()
		if err != nil {
			return nil, err
		}
		seq.Stops = append(seq.Stops, stop)
	}
	return seq, nil
}

// Clone deep-copies the sequence via its wire records
func (s *Sequence) Clone() *Sequence {
	clone, _ := SequenceFromRecords(s.Mode, s.Records())
	return clone
}

// StopLabel letters stops for display: A, B, ..., Z, AA, AB, ...
func StopLabel(index int) string {
	if index < 0 {
		return ""
	}
	label := ""
	n := index
	for {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return label
}
