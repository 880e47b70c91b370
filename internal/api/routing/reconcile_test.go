package routing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

func entriesOf(n int) []*types.Itinerary {
	out := make([]*types.Itinerary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &types.Itinerary{ID: uuid.New(), DayNumber: 1, Order: i})
	}
	return out
}

func TestReconcileLegs_MapsLegToFollowingEntry(t *testing.T) {
	entries := entriesOf(3)
	legs := []types.Leg{
		{Distance: 1500, Duration: 330},
		{Distance: 250, Duration: 59},
	}

	updates := ReconcileLegs(entries, legs)
	require.Len(t, updates, 2)

	assert.Equal(t, entries[1].ID, updates[0].EntryID)
	assert.InDelta(t, 1.5, updates[0].DistanceFromPrevious, 0.0001)
	assert.Equal(t, 5, updates[0].DriveTimeFromPrevious)

	assert.Equal(t, entries[2].ID, updates[1].EntryID)
	assert.InDelta(t, 0.25, updates[1].DistanceFromPrevious, 0.0001, "kilometers stay unrounded")
	assert.Equal(t, 0, updates[1].DriveTimeFromPrevious, "59 seconds truncates to zero minutes")

	for _, u := range updates {
		assert.NotEqual(t, entries[0].ID, u.EntryID, "first entry has no preceding leg")
	}
}

func TestReconcileLegs_ShortLegListLeavesTailUntouched(t *testing.T) {
	entries := entriesOf(4)
	legs := []types.Leg{{Distance: 1000, Duration: 60}}

	updates := ReconcileLegs(entries, legs)
	require.Len(t, updates, 1)
	assert.Equal(t, entries[1].ID, updates[0].EntryID)
}

func TestReconcileLegs_ExtraLegsIgnored(t *testing.T) {
	entries := entriesOf(2)
	legs := []types.Leg{
		{Distance: 1000, Duration: 60},
		{Distance: 2000, Duration: 120},
		{Distance: 3000, Duration: 180},
	}

	updates := ReconcileLegs(entries, legs)
	require.Len(t, updates, 1)
	assert.Equal(t, entries[1].ID, updates[0].EntryID)
}

func TestReconcileLegs_NoLegs(t *testing.T) {
	assert.Empty(t, ReconcileLegs(entriesOf(3), nil))
}
