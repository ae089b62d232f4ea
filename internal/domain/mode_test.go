package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetModeDirectToJourney(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	seq.Mode = ModeDirect

	require.NoError(t, seq.SetMode(ModeJourney))

	// Flipping to journey keeps the stops as-is
	assert.Equal(t, ModeJourney, seq.Mode)
	require.Len(t, seq.Stops, 2)
	assert.Equal(t, pickup.ID, seq.Stops[0].Site().ID)
	assert.Equal(t, dropoff.ID, seq.Stops[1].Site().ID)
}

// Scenario: journey [P1, S(intermediate), D1, P2, D2] collapsed to direct
// keeps exactly [P1, D1] and discards everything else
func TestSetModeJourneyToDirect(t *testing.T) {
	seq := NewSequence(ModeJourney)
	p1, _ := seq.AddStop(KindPickup, -1)
	seq.AddStop(KindIntermediate, -1)
	d1, _ := seq.AddStop(KindDropoff, -1)
	p2, _ := seq.AddStop(KindPickup, -1)
	d2, _ := seq.AddStop(KindDropoff, -1)

	keep := addTestItem(t, seq, p1.Site().ID, "Sofa")
	lost := addTestItem(t, seq, p2.Site().ID, "Bike")
	require.NoError(t, seq.ToggleItemLink(d1.Site().ID, keep.ID))
	require.NoError(t, seq.ToggleItemLink(d1.Site().ID, lost.ID))
	require.NoError(t, seq.ToggleItemLink(d2.Site().ID, keep.ID))

	require.NoError(t, seq.SetMode(ModeDirect))

	assert.Equal(t, ModeDirect, seq.Mode)
	require.Len(t, seq.Stops, 2)
	assert.Equal(t, p1.Site().ID, seq.Stops[0].Site().ID)
	assert.Equal(t, d1.Site().ID, seq.Stops[1].Site().ID)

	// Links to items of the discarded pickup are pruned
	kept := seq.Stops[1].(*DropoffStop)
	assert.True(t, kept.Linked(keep.ID))
	assert.False(t, kept.Linked(lost.ID))
}

func TestSetModeJourneyToDirectMissingKind(t *testing.T) {
	tests := []struct {
		name  string
		kinds []StopKind
	}{
		{name: "No dropoff", kinds: []StopKind{KindPickup, KindIntermediate}},
		{name: "No pickup", kinds: []StopKind{KindDropoff, KindDropoff}},
		{name: "Only intermediates", kinds: []StopKind{KindIntermediate}},
		{name: "Empty sequence", kinds: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSequence(ModeJourney)
			for _, k := range tt.kinds {
				_, err := seq.AddStop(k, -1)
				require.NoError(t, err)
			}

			require.NoError(t, seq.SetMode(ModeDirect))
			assert.Empty(t, seq.Stops)
		})
	}
}

// Round trip direct -> journey -> direct with no journey mutation in between
// is idempotent
func TestModeRoundTripUnmutated(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	seq.Mode = ModeDirect

	require.NoError(t, seq.SetMode(ModeJourney))
	require.NoError(t, seq.SetMode(ModeDirect))

	require.Len(t, seq.Stops, 2)
	assert.Equal(t, pickup.ID, seq.Stops[0].Site().ID)
	assert.Equal(t, dropoff.ID, seq.Stops[1].Site().ID)
}

// Once intermediate stops are added the round trip is lossy: they are gone
// after collapsing back to direct and do not reappear
func TestModeRoundTripLossyAfterMutation(t *testing.T) {
	seq, pickup, dropoff := createTestJourney(t)
	seq.Mode = ModeDirect

	require.NoError(t, seq.SetMode(ModeJourney))
	seq.AddStop(KindIntermediate, 0)
	require.Len(t, seq.Stops, 3)

	require.NoError(t, seq.SetMode(ModeDirect))
	require.Len(t, seq.Stops, 2)

	require.NoError(t, seq.SetMode(ModeJourney))
	require.Len(t, seq.Stops, 2)
	assert.Equal(t, pickup.ID, seq.Stops[0].Site().ID)
	assert.Equal(t, dropoff.ID, seq.Stops[1].Site().ID)
}

func TestSetModeNoChange(t *testing.T) {
	seq := NewSequence(ModeJourney)
	seq.AddStop(KindIntermediate, -1)

	require.NoError(t, seq.SetMode(ModeJourney))
	assert.Len(t, seq.Stops, 1)
}

func TestSetModeInvalid(t *testing.T) {
	seq := NewSequence(ModeJourney)
	assert.ErrorIs(t, seq.SetMode(RequestMode("express")), ErrInvalidMode)
}
