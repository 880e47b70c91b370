package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TripType string

const (
	TripTypeManual    TripType = "manual"
	TripTypeAutomatic TripType = "automatic"
)

// Trip is a user's trip. RouteData holds the most recently computed primary
// route geometry (GeoJSON as returned by the routing provider).
type Trip struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Title          string          `json:"title"`
	Destination    string          `json:"destination"`
	Description    *string         `json:"description,omitempty"`
	TripType       TripType        `json:"trip_type"`
	TransitType    TransitMode     `json:"transit_type"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CenterLat      float64         `json:"center_lat"`
	CenterLng      float64         `json:"center_lng"`
	RouteData      json.RawMessage `json:"route_data,omitempty"`
	IsActive       bool            `json:"is_active"`
	IsPublished    bool            `json:"is_published"`
	ItineraryCount int             `json:"itinerary_count,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Days returns the trip length in whole days, inclusive of both endpoints.
// A trip without dates counts as a single day.
func (t *Trip) Days() int {
	if t.StartDate == nil {
		return 1
	}
	end := t.StartDate
	if t.EndDate != nil {
		end = t.EndDate
	}
	days := int(end.Sub(*t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

type CreateTripRequest struct {
	Title       string  `json:"title" validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	TripType    string  `json:"trip_type" validate:"required,oneof=manual automatic"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date,omitempty"`
	TransitType string  `json:"transit_type" validate:"required,oneof=car bike walk bus"`
	CenterLat   float64 `json:"center_lat" validate:"required,latitude"`
	CenterLng   float64 `json:"center_lng" validate:"required,longitude"`
	Description *string `json:"description,omitempty"`
}

type UpdateTripParams struct {
	Title       *string      `json:"title,omitempty"`
	Destination *string      `json:"destination,omitempty"`
	Description *string      `json:"description,omitempty"`
	TransitType *TransitMode `json:"transit_type,omitempty"`
	StartDate   *string      `json:"start_date,omitempty"`
	EndDate     *string      `json:"end_date,omitempty"`
	IsPublished *bool        `json:"is_published,omitempty"`
}

// StopType is the kind of slot the scheduler emits.
type StopType string

const (
	StopAttraction StopType = "attraction"
	StopCoffee     StopType = "coffee"
	StopRestaurant StopType = "restaurant"
	StopShopping   StopType = "shopping"
)

// DraftStop is a scheduler-emitted, not-yet-persisted itinerary slot.
// Immutable once emitted; the persistence layer turns each into an
// itinerary entry.
type DraftStop struct {
	Day             int      `json:"day"`
	Order           int      `json:"order"`
	Time            string   `json:"time"`
	Type            StopType `json:"type"`
	DurationMinutes int      `json:"duration_minutes"`
	Score           int      `json:"score"`
}

type RecordVisitRequest struct {
	ItineraryID     *uuid.UUID `json:"itinerary_id,omitempty"`
	PlaceID         string     `json:"place_id" validate:"required"`
	PlaceName       string     `json:"place_name" validate:"required"`
	PlaceCategory   string     `json:"place_category" validate:"required"`
	Lat             float64    `json:"lat" validate:"latitude"`
	Lng             float64    `json:"lng" validate:"longitude"`
	DurationMinutes int        `json:"duration_minutes" validate:"min=0"`
	UserRating      *int       `json:"user_rating,omitempty" validate:"omitempty,min=1,max=5"`
	UserNotes       *string    `json:"user_notes,omitempty"`
	VisitedAt       *time.Time `json:"visited_at,omitempty"`
}

// TripVisit is one historical visit record, the analyzer's raw input.
type TripVisit struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	ItineraryID     *uuid.UUID `json:"itinerary_id,omitempty"`
	PlaceID         string     `json:"place_id"`
	PlaceName       string     `json:"place_name"`
	PlaceCategory   string     `json:"place_category"`
	Lat             float64    `json:"lat"`
	Lng             float64    `json:"lng"`
	DurationMinutes int        `json:"duration_minutes"`
	UserRating      *int       `json:"user_rating,omitempty"`
	UserNotes       *string    `json:"user_notes,omitempty"`
	VisitedAt       time.Time  `json:"visited_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
