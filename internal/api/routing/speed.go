package routing

import (
	"strings"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// EstimateSpeedLimits derives heuristic per-road speed estimates from the
// first leg's step names. Free routing tiers rarely return measured maxspeed
// annotations, so road-name keywords stand in: highways and expressways fast,
// avenues and roads medium, everything else slow.
//
// One estimate per road name, in first-occurrence order; steps with a blank
// name contribute nothing.
func EstimateSpeedLimits(route types.RouteAlternative) []types.SpeedEstimate {
	if len(route.Legs) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var limits []types.SpeedEstimate
	for _, step := range route.Legs[0].Steps {
		name := step.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		lower := strings.ToLower(name)
		speed := 40
		switch {
		case strings.Contains(lower, "highway") || strings.Contains(lower, "expressway"):
			speed = 80
		case strings.Contains(lower, "avenue") || strings.Contains(lower, "road"):
			speed = 60
		}

		limits = append(limits, types.SpeedEstimate{Name: name, MaxSpeedKph: speed})
	}
	return limits
}
