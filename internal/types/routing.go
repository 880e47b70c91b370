package types

import "encoding/json"

// Waypoint is a (lat,lng) pair representing one itinerary stop, in canonical
// (day_number, order) sequence.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Step is one maneuver of a leg. Only the road name matters to the speed
// estimator; the rest of the provider payload is passed through untouched.
type Step struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// Leg connects two consecutive waypoints. Distance is meters, Duration is
// seconds, exactly as the provider reports them.
type Leg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps"`
}

// RouteAlternative is one provider-computed route over the full waypoint
// sequence. Geometry is kept opaque (GeoJSON from the provider) and stored
// on the trip as-is. len(Legs) == len(waypoints)-1.
type RouteAlternative struct {
	Geometry json.RawMessage `json:"geometry"`
	Legs     []Leg           `json:"legs"`
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
}

// SpeedEstimate is the heuristic per-road speed derived from route step
// names. Unique per road name within one route.
type SpeedEstimate struct {
	Name        string `json:"name"`
	MaxSpeedKph int    `json:"max_speed"`
}

// RouteDetailsResponse is the route-details payload: the primary route, its
// speed estimates, and totals converted to itinerary-facing units
// (kilometers, minutes).
type RouteDetailsResponse struct {
	Route         RouteAlternative `json:"route"`
	SpeedLimits   []SpeedEstimate  `json:"speed_limits"`
	TotalDistance float64          `json:"total_distance"`
	TotalDuration float64          `json:"total_duration"`
}

// CalculateRouteResponse is the calculate-route payload: the updated trip and
// entries plus every alternative the provider returned.
type CalculateRouteResponse struct {
	Trip         *Trip              `json:"trip"`
	Itineraries  []*Itinerary       `json:"itineraries"`
	Alternatives []RouteAlternative `json:"alternatives"`
}
