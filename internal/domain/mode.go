package domain

// RequestMode distinguishes the simple two-point move from a multi-stop
// journey
type RequestMode string

const (
	ModeDirect  RequestMode = "direct"
	ModeJourney RequestMode = "journey"
)

// IsValid checks if the mode is one of the known values
func (m RequestMode) IsValid() bool {
	return m == ModeDirect || m == ModeJourney
}

// SetMode converts the sequence between direct and journey representations.
//
// direct -> journey keeps the existing stops and only flips the flag.
// journey -> direct keeps the first pickup and the first dropoff (by current
// order) and discards everything else, including items and links exclusive
// to the discarded stops; if either is missing the sequence becomes empty.
// Repeated conversion is lossy on purpose: discarded stops are gone.
func (s *Sequence) SetMode(target RequestMode) error {
	if !target.IsValid() {
		return ErrInvalidMode
	}
	if s.Mode == target {
		return nil
	}

	if target == ModeJourney {
		s.Mode = ModeJourney
		return nil
	}

	s.Mode = ModeDirect
	s.collapseToDirect()
	return nil
}

// collapseToDirect enforces the direct-mode shape: the first pickup and the
// first dropoff (by current order) survive, everything else is discarded; if
// either is missing the sequence becomes empty. Links into discarded stops
// are pruned.
func (s *Sequence) collapseToDirect() {
	var pickup *PickupStop
	var dropoff *DropoffStop
	for _, stop := range s.Stops {
		if p, ok := stop.(*PickupStop); ok && pickup == nil {
			pickup = p
		}
		if d, ok := stop.(*DropoffStop); ok && dropoff == nil {
			dropoff = d
		}
	}

	if pickup == nil || dropoff == nil {
		s.Stops = make([]Stop, 0)
	} else {
		s.Stops = []Stop{pickup, dropoff}
	}

	s.PruneDanglingLinks()
}
