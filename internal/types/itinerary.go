package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Itinerary is one stop of a trip. The routing engine back-fills
// DistanceFromPrevious / DriveTimeFromPrevious after a route computation;
// the first stop of a trip never carries them because no leg precedes it.
type Itinerary struct {
	ID                    uuid.UUID       `json:"id"`
	TripID                uuid.UUID       `json:"trip_id"`
	UserID                uuid.UUID       `json:"user_id"`
	PlaceID               string          `json:"place_id"`
	PlaceName             string          `json:"place_name"`
	PlaceAddress          *string         `json:"place_address,omitempty"`
	Lat                   float64         `json:"lat"`
	Lng                   float64         `json:"lng"`
	DayNumber             int             `json:"day_number"`
	Order                 int             `json:"order"`
	Time                  *string         `json:"time,omitempty"`
	Notes                 *string         `json:"notes,omitempty"`
	DurationMinutes       int             `json:"duration_minutes"`
	WeatherSummary        *string         `json:"weather_summary,omitempty"`
	WeatherIcon           *string         `json:"weather_icon,omitempty"`
	DistanceFromPrevious  *float64        `json:"distance_from_previous,omitempty"`
	DriveTimeFromPrevious *int            `json:"drive_time_from_previous,omitempty"`
	SpeedLimit            *int            `json:"speed_limit,omitempty"`
	NearbyGasStations     json.RawMessage `json:"nearby_gas_stations,omitempty"`
	IsRecommended         bool            `json:"is_recommended"`
	RecommendationScore   *float64        `json:"recommendation_score,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Waypoint returns the entry's coordinates for routing.
func (i *Itinerary) Waypoint() Waypoint {
	return Waypoint{Lat: i.Lat, Lng: i.Lng}
}

type CreateItineraryRequest struct {
	TripID          uuid.UUID `json:"trip_id" validate:"required"`
	PlaceID         string    `json:"place_id" validate:"required"`
	PlaceName       string    `json:"place_name" validate:"required"`
	PlaceAddress    *string   `json:"place_address,omitempty"`
	Lat             float64   `json:"lat" validate:"required,latitude"`
	Lng             float64   `json:"lng" validate:"required,longitude"`
	DayNumber       int       `json:"day_number" validate:"required,min=1"`
	Order           int       `json:"order" validate:"min=0"`
	Time            *string   `json:"time,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

// UpdateItineraryParams is deliberately narrow: computed fields like
// coordinates, gas stations and leg distances are not client-writable.
type UpdateItineraryParams struct {
	Time            *string `json:"time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,min=1"`
	Notes           *string `json:"notes,omitempty"`
	DayNumber       *int    `json:"day_number,omitempty" validate:"omitempty,min=1"`
	Order           *int    `json:"order,omitempty" validate:"omitempty,min=0"`
}

// LegUpdate is the reconciler's per-entry write: distance in kilometers
// (unrounded) and drive time in whole minutes (truncated) from the previous
// stop.
type LegUpdate struct {
	EntryID               uuid.UUID
	DistanceFromPrevious  float64
	DriveTimeFromPrevious int
}
