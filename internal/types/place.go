package types

// Place is a normalized place-directory result, regardless of which upstream
// directory produced it.
type Place struct {
	PlaceID  string  `json:"place_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Source   string  `json:"source"`
}

// WeatherInfo is the normalized current-conditions payload attached to an
// itinerary entry when the weather lookup succeeds.
type WeatherInfo struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"wind_speed"`
	RainChance  int     `json:"rain_chance"`
	Summary     string  `json:"summary"`
}

// Enrichment is the explicit result of a best-effort lookup: either data or
// the reason it failed. The caller's policy (ignore vs. abort) is written out
// at each call site instead of hiding in a recover block.
type Enrichment[T any] struct {
	Data T
	Err  error
}

// Ok reports whether the lookup produced data.
func (e Enrichment[T]) Ok() bool { return e.Err == nil }
