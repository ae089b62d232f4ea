package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSeedsEmptySequence(t *testing.T) {
	flat := FlatFields{
		PickupLocation:  "X",
		DropoffLocation: "Y",
		MovingItems:     []Item{{Name: "Sofa"}},
	}

	out := Reconcile(flat, NewSequence(ModeJourney))

	require.Len(t, out.Stops, 2)
	assert.Equal(t, KindPickup, out.Stops[0].Kind())
	assert.Equal(t, "X", out.Stops[0].Site().Location)
	assert.Equal(t, KindDropoff, out.Stops[1].Kind())
	assert.Equal(t, "Y", out.Stops[1].Site().Location)
}

func TestReconcileNilSequence(t *testing.T) {
	out := Reconcile(FlatFields{PickupLocation: "X", DropoffLocation: "Y"}, nil)

	assert.Equal(t, ModeDirect, out.Mode)
	require.Len(t, out.Stops, 2)
}

// A direct sequence that picked up extra stops is trimmed back to its first
// pickup and first dropoff, and links into the trimmed stops disappear
func TestReconcileDirectTrimsExtraStops(t *testing.T) {
	seq := NewSequence(ModeDirect)
	p, _ := seq.AddStop(KindPickup, -1)
	p.Site().Location = "A St"
	d, _ := seq.AddStop(KindDropoff, -1)
	d.Site().Location = "B St"
	p2, _ := seq.AddStop(KindPickup, -1)
	p2.Site().Location = "C St"

	extra, err := seq.AddItem(p2.Site().ID, Item{Name: "Extra"})
	require.NoError(t, err)
	require.NoError(t, seq.ToggleItemLink(d.Site().ID, extra.ID))

	out := Reconcile(FlatFields{MovingItems: []Item{{Name: "Fresh"}}}, seq)

	require.Len(t, out.Stops, 2)
	assert.Equal(t, p.Site().ID, out.Stops[0].Site().ID)
	assert.Equal(t, d.Site().ID, out.Stops[1].Site().ID)

	dropoff := out.Stops[1].(*DropoffStop)
	assert.NotContains(t, dropoff.LinkedItems, extra.ID)

	pickup := out.Stops[0].(*PickupStop)
	require.Len(t, pickup.Items, 1)
	assert.Equal(t, "Fresh", pickup.Items[0].Name)
}

// Reconcile never mutates its input
func TestReconcileIsPure(t *testing.T) {
	seq := NewSequence(ModeDirect)
	p, _ := seq.AddStop(KindPickup, -1)
	p.Site().Location = "A St"
	d, _ := seq.AddStop(KindDropoff, -1)
	d.Site().Location = "B St"
	seq.AddStop(KindIntermediate, -1)

	out := Reconcile(FlatFields{MovingItems: []Item{{Name: "Fresh"}}}, seq)

	assert.Len(t, seq.Stops, 3)
	assert.Empty(t, seq.Stops[0].(*PickupStop).Items)
	assert.Len(t, out.Stops, 2)
}
