package planner

import (
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// AnalyzeVisits recomputes a preference profile from visit history. Every
// category is rescored on each run: a category with no visits comes back 0,
// not its previous value. Integer arithmetic throughout, so scores and the
// pacing value truncate toward zero.
//
// Returns types.ErrNoHistory on an empty slice so callers can distinguish
// "nothing to learn from" without a magic zero profile.
func AnalyzeVisits(visits []types.TripVisit) (types.PreferenceUpdate, error) {
	if len(visits) == 0 {
		return types.PreferenceUpdate{}, types.ErrNoHistory
	}

	total := len(visits)
	counts := make(map[types.Category]int)
	totalMinutes := 0
	for _, v := range visits {
		counts[types.Category(v.PlaceCategory)]++
		totalMinutes += v.DurationMinutes
	}

	scores := make(map[types.Category]int, len(types.Categories))
	for _, c := range types.Categories {
		scores[c] = counts[c] * 100 / total
	}

	return types.PreferenceUpdate{
		Scores:          scores,
		AvgHoursPerStop: totalMinutes / total / 60,
	}, nil
}
