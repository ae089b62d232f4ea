package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkableItems(t *testing.T) {
	seq := NewSequence(ModeJourney)
	p1, _ := seq.AddStop(KindPickup, -1)
	seq.AddStop(KindDropoff, -1)
	p2, _ := seq.AddStop(KindPickup, -1)

	i1 := addTestItem(t, seq, p1.Site().ID, "Sofa")
	i2 := addTestItem(t, seq, p2.Site().ID, "Bed")

	linkable := seq.LinkableItems()
	require.Len(t, linkable, 2)

	assert.Equal(t, i1.ID, linkable[0].ID)
	assert.Equal(t, p1.Site().ID, linkable[0].PickupStopID)
	assert.Equal(t, "A", linkable[0].PickupLabel)

	assert.Equal(t, i2.ID, linkable[1].ID)
	assert.Equal(t, p2.Site().ID, linkable[1].PickupStopID)
	assert.Equal(t, "C", linkable[1].PickupLabel)
}

func TestToggleItemLink(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	item := addTestItem(t, seq, pickup.ID, "Mirror")

	require.NoError(t, seq.ToggleItemLink(dropoff.ID, item.ID))
	assert.True(t, dropoff.Linked(item.ID))

	require.NoError(t, seq.ToggleItemLink(dropoff.ID, item.ID))
	assert.False(t, dropoff.Linked(item.ID))
}

func TestToggleItemLinkErrors(t *testing.T) {
	seq, pickup, _ := createTestJourney(t)
	item := addTestItem(t, seq, pickup.ID, "Mirror")

	assert.ErrorIs(t, seq.ToggleItemLink("missing", item.ID), ErrStopNotFound)
	assert.ErrorIs(t, seq.ToggleItemLink(pickup.ID, item.ID), ErrNotDropoff)
}

// Toggling an item id that no pickup owns must be a no-op, never an error
func TestToggleUnknownItemIsNoOp(t *testing.T) {
	seq, _, dropoff := createTestJourney(t)

	require.NoError(t, seq.ToggleItemLink(dropoff.ID, "ghost-item"))
	assert.Empty(t, dropoff.LinkedItems)
}

// Scenario: toggleAllFromPickup on [pickup P(items=[i1,i2]), dropoff D]
// links both items; a second call clears them again
func TestToggleAllFromPickup(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	i1 := addTestItem(t, seq, pickup.ID, "Sofa")
	i2 := addTestItem(t, seq, pickup.ID, "Table")

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, pickup.ID))
	assert.True(t, dropoff.Linked(i1.ID))
	assert.True(t, dropoff.Linked(i2.ID))

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, pickup.ID))
	assert.Empty(t, dropoff.LinkedItems)
}

// A partial selection selects all rather than clearing: the control is
// "checked" only when every item from that pickup is linked
func TestToggleAllFromPickupPartialSelectsAll(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	i1 := addTestItem(t, seq, pickup.ID, "Sofa")
	i2 := addTestItem(t, seq, pickup.ID, "Table")

	require.NoError(t, seq.ToggleItemLink(dropoff.ID, i1.ID))

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, pickup.ID))
	assert.True(t, dropoff.Linked(i1.ID))
	assert.True(t, dropoff.Linked(i2.ID))
}

// A two-call round trip returns the linked set to its prior state
func TestToggleAllFromPickupRoundTrip(t *testing.T) {
	seq := NewSequence(ModeJourney)
	p1, _ := seq.AddStop(KindPickup, -1)
	p2, _ := seq.AddStop(KindPickup, -1)
	d, _ := seq.AddStop(KindDropoff, -1)
	dropoff := d.(*DropoffStop)

	addTestItem(t, seq, p1.Site().ID, "Sofa")
	other := addTestItem(t, seq, p2.Site().ID, "Bike")
	require.NoError(t, seq.ToggleItemLink(dropoff.ID, other.ID))

	before := make(map[string]struct{}, len(dropoff.LinkedItems))
	for id := range dropoff.LinkedItems {
		before[id] = struct{}{}
	}

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, p1.Site().ID))
	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, p1.Site().ID))

	assert.Equal(t, before, dropoff.LinkedItems)
}

func TestToggleAllGlobal(t *testing.T) {
	seq := NewSequence(ModeJourney)
	p1, _ := seq.AddStop(KindPickup, -1)
	p2, _ := seq.AddStop(KindPickup, -1)
	d, _ := seq.AddStop(KindDropoff, -1)
	dropoff := d.(*DropoffStop)

	i1 := addTestItem(t, seq, p1.Site().ID, "Sofa")
	i2 := addTestItem(t, seq, p2.Site().ID, "Bike")

	require.NoError(t, seq.ToggleAllGlobal(dropoff.ID))
	assert.True(t, dropoff.Linked(i1.ID))
	assert.True(t, dropoff.Linked(i2.ID))

	require.NoError(t, seq.ToggleAllGlobal(dropoff.ID))
	assert.Empty(t, dropoff.LinkedItems)
}

func TestToggleAllWithNoItemsIsNoOp(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, pickup.ID))
	assert.Empty(t, dropoff.LinkedItems)

	require.NoError(t, seq.ToggleAllGlobal(dropoff.ID))
	assert.Empty(t, dropoff.LinkedItems)
}

func TestAllLinkedFromPickup(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	i1 := addTestItem(t, seq, pickup.ID, "Sofa")
	addTestItem(t, seq, pickup.ID, "Table")

	all, err := seq.AllLinkedFromPickup(dropoff.ID, pickup.ID)
	require.NoError(t, err)
	assert.False(t, all)

	require.NoError(t, seq.ToggleItemLink(dropoff.ID, i1.ID))
	all, _ = seq.AllLinkedFromPickup(dropoff.ID, pickup.ID)
	assert.False(t, all)

	require.NoError(t, seq.ToggleAllFromPickup(dropoff.ID, pickup.ID))
	all, _ = seq.AllLinkedFromPickup(dropoff.ID, pickup.ID)
	assert.True(t, all)
}

// Scenario: removing pickup P from [P, D1(linked=[i1]), D2(linked=[i1])]
// leaves both dropoffs with empty linked sets
func TestCascadeAcrossMultipleDropoffs(t *testing.T) {
	seq := NewSequence(ModeJourney)
	p, _ := seq.AddStop(KindPickup, -1)
	d1, _ := seq.AddStop(KindDropoff, -1)
	d2, _ := seq.AddStop(KindDropoff, -1)

	i1 := addTestItem(t, seq, p.Site().ID, "Piano")
	require.NoError(t, seq.ToggleItemLink(d1.Site().ID, i1.ID))
	require.NoError(t, seq.ToggleItemLink(d2.Site().ID, i1.ID))

	_, err := seq.RemoveStop(0)
	require.NoError(t, err)

	assert.Empty(t, d1.(*DropoffStop).LinkedItems)
	assert.Empty(t, d2.(*DropoffStop).LinkedItems)
}

func TestPruneDanglingLinksCount(t *testing.T) {
	seq, _, dropoff := createTestJourney(t)

	// Simulate a stale reference loaded from an old draft
	dropoff.LinkedItems["stale-1"] = struct{}{}
	dropoff.LinkedItems["stale-2"] = struct{}{}

	pruned := seq.PruneDanglingLinks()
	assert.Equal(t, 2, pruned)
	assert.Empty(t, dropoff.LinkedItems)
}
