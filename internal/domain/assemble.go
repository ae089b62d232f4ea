package domain

import "github.com/shopspring/decimal"

// Payload is the wire shape posted to the request-storage collaborator. The
// flat fields spread into the top level; journey_stops carries the stop tree
// and moving_items the flattened item list for consumers that do not
// traverse it.
type Payload struct {
	FlatFields

	RequestMode  RequestMode  `json:"request_mode"`
	JourneyStops []StopRecord `json:"journey_stops"`
	MovingItems  []Item       `json:"moving_items"`

	TotalEstimatedWeight string `json:"total_estimated_weight"`
	TotalDeclaredValue   string `json:"total_declared_value"`
}

// Assemble flattens the sequence and flat form fields into the submission
// payload. Pure function, no I/O, deterministic given its inputs (ids and
// derived times are filled in on a clone, never on the live sequence).
//
// An empty sequence is synthesized from the flat fields. In direct mode the
// flat moving-items list overwrites the pickup stop's items. The only
// failure is an IncompleteStopError for a pickup or dropoff with no
// location; intermediate stops may be locationless.
func Assemble(seq *Sequence, flat FlatFields) (*Payload, error) {
	work := Reconcile(flat, seq)

	for i, stop := range work.Stops {
		site := stop.Site()
		site.EstimatedTime = DeriveTime(i, site.EstimatedTime)

		if stop.Kind() != KindIntermediate && site.Location == "" {
			return nil, &IncompleteStopError{StopID: site.ID, Kind: stop.Kind(), Index: i}
		}

		if pickup, ok := stop.(*PickupStop); ok {
			for j := range pickup.Items {
				pickup.Items[j].Normalize()
			}
		}
	}

	flattened := flattenItems(work)

	payload := &Payload{
		FlatFields:           flat,
		RequestMode:          work.Mode,
		JourneyStops:         work.Records(),
		MovingItems:          flattened,
		TotalEstimatedWeight: totalEstimatedWeight(flattened).String(),
		TotalDeclaredValue:   totalDeclaredValue(flattened).String(),
	}

	return payload, nil
}

// flattenItems collects every pickup stop's items, deduplicated by id,
// preserving first-seen order
func flattenItems(seq *Sequence) []Item {
	seen := make(map[string]struct{})
	out := make([]Item, 0)

	for _, stop := range seq.Stops {
		pickup, ok := stop.(*PickupStop)
		if !ok {
			continue
		}
		for _, item := range pickup.Items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, item)
		}
	}

	return out
}

func totalEstimatedWeight(items []Item) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].EstimatedWeight())
	}
	return total
}

func totalDeclaredValue(items []Item) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].DeclaredValue())
	}
	return total
}
