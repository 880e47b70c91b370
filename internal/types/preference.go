package types

import (
	"time"

	"github.com/google/uuid"
)

// Category is one of the eight scored preference categories. Scores live on
// UserPreference; access goes through Score/SetScore so a typo in a category
// name is a compile error, not a silently-defaulted field lookup.
type Category string

const (
	CategoryRestaurant  Category = "restaurant"
	CategoryHotel       Category = "hotel"
	CategoryShopping    Category = "shopping"
	CategoryCoffee      Category = "coffee"
	CategoryAttractions Category = "attractions"
	CategoryNature      Category = "nature"
	CategoryCulture     Category = "culture"
	CategoryAdventure   Category = "adventure"
)

// Categories lists every scored category in canonical order.
var Categories = []Category{
	CategoryRestaurant,
	CategoryHotel,
	CategoryShopping,
	CategoryCoffee,
	CategoryAttractions,
	CategoryNature,
	CategoryCulture,
	CategoryAdventure,
}

type TransitMode string

const (
	TransitCar  TransitMode = "car"
	TransitBike TransitMode = "bike"
	TransitWalk TransitMode = "walk"
	TransitBus  TransitMode = "bus"
)

const (
	DefaultCategoryScore   = 50
	DefaultAvgHoursPerStop = 3
)

// UserPreference is the per-user scored preference profile driving the
// itinerary scheduler.
type UserPreference struct {
	ID                    uuid.UUID   `json:"id"`
	UserID                uuid.UUID   `json:"user_id"`
	PreferenceRestaurant  int         `json:"preference_restaurant"`
	PreferenceHotel       int         `json:"preference_hotel"`
	PreferenceShopping    int         `json:"preference_shopping"`
	PreferenceCoffee      int         `json:"preference_coffee"`
	PreferenceAttractions int         `json:"preference_attractions"`
	PreferenceNature      int         `json:"preference_nature"`
	PreferenceCulture     int         `json:"preference_culture"`
	PreferenceAdventure   int         `json:"preference_adventure"`
	PreferredTransit      TransitMode `json:"preferred_transit"`
	PreferMainRoads       bool        `json:"prefer_main_roads"`
	PreferScenicRoutes    bool        `json:"prefer_scenic_routes"`
	AvgHoursPerStop       int         `json:"avg_hours_per_stop"`
	AvgTripDurationDays   int         `json:"avg_trip_duration"`
	PreferredStartTime    string      `json:"preferred_start_time"`
	PreferredEndTime      string      `json:"preferred_end_time"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// DefaultPreferences returns the profile used when a user has none stored:
// every category at 50, three hours per stop, car transit.
func DefaultPreferences(userID uuid.UUID) UserPreference {
	p := UserPreference{
		UserID:              userID,
		PreferredTransit:    TransitCar,
		PreferMainRoads:     true,
		AvgHoursPerStop:     DefaultAvgHoursPerStop,
		AvgTripDurationDays: 3,
		PreferredStartTime:  "09:00",
		PreferredEndTime:    "18:00",
	}
	for _, c := range Categories {
		p.SetScore(c, DefaultCategoryScore)
	}
	return p
}

// Score returns the stored score for a category.
func (p *UserPreference) Score(c Category) int {
	switch c {
	case CategoryRestaurant:
		return p.PreferenceRestaurant
	case CategoryHotel:
		return p.PreferenceHotel
	case CategoryShopping:
		return p.PreferenceShopping
	case CategoryCoffee:
		return p.PreferenceCoffee
	case CategoryAttractions:
		return p.PreferenceAttractions
	case CategoryNature:
		return p.PreferenceNature
	case CategoryCulture:
		return p.PreferenceCulture
	case CategoryAdventure:
		return p.PreferenceAdventure
	}
	return 0
}

// SetScore stores the score for a category, clamped to [0,100].
func (p *UserPreference) SetScore(c Category, score int) {
	score = ClampScore(score)
	switch c {
	case CategoryRestaurant:
		p.PreferenceRestaurant = score
	case CategoryHotel:
		p.PreferenceHotel = score
	case CategoryShopping:
		p.PreferenceShopping = score
	case CategoryCoffee:
		p.PreferenceCoffee = score
	case CategoryAttractions:
		p.PreferenceAttractions = score
	case CategoryNature:
		p.PreferenceNature = score
	case CategoryCulture:
		p.PreferenceCulture = score
	case CategoryAdventure:
		p.PreferenceAdventure = score
	}
}

// ClampScore bounds a category score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PreferenceUpdate is the analyzer's output: the eight recomputed category
// scores plus the recomputed pacing value. Applied wholesale to the stored
// profile.
type PreferenceUpdate struct {
	Scores          map[Category]int `json:"scores"`
	AvgHoursPerStop int              `json:"avg_hours_per_stop"`
}

// UpdateUserPreferenceParams carries a partial preference edit; nil fields
// are left untouched.
type UpdateUserPreferenceParams struct {
	PreferenceRestaurant  *int         `json:"preference_restaurant,omitempty"`
	PreferenceHotel       *int         `json:"preference_hotel,omitempty"`
	PreferenceShopping    *int         `json:"preference_shopping,omitempty"`
	PreferenceCoffee      *int         `json:"preference_coffee,omitempty"`
	PreferenceAttractions *int         `json:"preference_attractions,omitempty"`
	PreferenceNature      *int         `json:"preference_nature,omitempty"`
	PreferenceCulture     *int         `json:"preference_culture,omitempty"`
	PreferenceAdventure   *int         `json:"preference_adventure,omitempty"`
	PreferredTransit      *TransitMode `json:"preferred_transit,omitempty"`
	PreferMainRoads       *bool        `json:"prefer_main_roads,omitempty"`
	PreferScenicRoutes    *bool        `json:"prefer_scenic_routes,omitempty"`
	AvgHoursPerStop       *int         `json:"avg_hours_per_stop,omitempty"`
	AvgTripDurationDays   *int         `json:"avg_trip_duration,omitempty"`
	PreferredStartTime    *string      `json:"preferred_start_time,omitempty"`
	PreferredEndTime      *string      `json:"preferred_end_time,omitempty"`
}
