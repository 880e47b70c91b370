package routing

import (
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// ReconcileLegs merges a route's legs back onto the itinerary entries that
// produced the waypoints. Leg i connects entry i to entry i+1, so entry i+1
// receives that leg's distance (kilometers, unrounded) and drive time (whole
// minutes, truncated). The first entry has no preceding leg and is never
// written. A leg list shorter than len(entries)-1 leaves the trailing entries
// untouched.
//
// Entries must already be in canonical (day_number, order) sequence, the same
// sequence the waypoints were built from.
func ReconcileLegs(entries []*types.Itinerary, legs []types.Leg) []types.LegUpdate {
	var updates []types.LegUpdate
	for i, leg := range legs {
		target := i + 1
		if target >= len(entries) {
			break
		}
		updates = append(updates, types.LegUpdate{
			EntryID:               entries[target].ID,
			DistanceFromPrevious:  leg.Distance / 1000,
			DriveTimeFromPrevious: int(leg.Duration / 60),
		})
	}
	return updates
}
