package place

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure NominatimService implements the Service interface
var _ Service = (*NominatimService)(nil)

// Service defines the place directory contract. SearchPlaces returns an error
// when the directory is unreachable; SearchNearby and FindGasStations are
// best-effort and return empty sets on failure.
type Service interface {
	SearchPlaces(ctx context.Context, query string, near *types.Waypoint) ([]types.Place, error)
	SearchNearby(ctx context.Context, at types.Waypoint, categories ...string) []types.Place
	FindGasStations(ctx context.Context, at types.Waypoint) []types.Place
}

// Config carries the Nominatim connection settings.
type Config struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Timeout      time.Duration
}

// NominatimService queries the Nominatim search endpoint and caches results
// briefly, both to keep latency down and to stay inside Nominatim's usage
// policy (which also requires the custom User-Agent).
type NominatimService struct {
	client *http.Client
	cfg    Config
	cache  *cache.Cache
	logger *slog.Logger
}

const cacheTTL = 15 * time.Minute

func NewNominatimService(cfg Config, logger *slog.Logger) *NominatimService {
	return &NominatimService{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		cache:  cache.New(cacheTTL, 30*time.Minute),
		logger: logger,
	}
}

// nominatimResult is one raw row from the search endpoint. Lat/lon arrive as
// strings.
type nominatimResult struct {
	PlaceID     json.Number `json:"place_id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Lat         string      `json:"lat"`
	Lon         string      `json:"lon"`
	Class       string      `json:"class"`
	Type        string      `json:"type"`
}

// SearchPlaces runs a free-text search, biased to a ~10km box around near
// when given.
func (s *NominatimService) SearchPlaces(ctx context.Context, query string, near *types.Waypoint) ([]types.Place, error) {
	l := s.logger.With(slog.String("method", "SearchPlaces"), slog.String("query", query))

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "10")
	if near != nil {
		setViewbox(params, *near, 0.1)
	}

	key := "search:" + params.Encode()
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]types.Place), nil
	}

	l.DebugContext(ctx, "Searching place directory")
	places, err := s.search(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		return nil, fmt.Errorf("searching places: %w", err)
	}

	s.cache.Set(key, places, cache.DefaultExpiration)
	return places, nil
}

// SearchNearby looks for places of the given categories inside a ~5km box.
// Failures are logged and yield an empty set; nearby search backs best-effort
// callers only.
func (s *NominatimService) SearchNearby(ctx context.Context, at types.Waypoint, categories ...string) []types.Place {
	l := s.logger.With(slog.String("method", "SearchNearby"))

	query := "tourism"
	if len(categories) > 0 {
		query = strings.Join(categories, ",")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "20")
	setViewbox(params, at, 0.05)

	key := "nearby:" + params.Encode()
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]types.Place)
	}

	places, err := s.search(ctx, params)
	if err != nil {
		l.WarnContext(ctx, "Nearby search failed", slog.Any("error", err))
		return nil
	}

	s.cache.Set(key, places, cache.DefaultExpiration)
	return places
}

// FindGasStations is the nearby search used to annotate driving stops.
func (s *NominatimService) FindGasStations(ctx context.Context, at types.Waypoint) []types.Place {
	return s.SearchNearby(ctx, at, "gas station")
}

func setViewbox(params url.Values, at types.Waypoint, delta float64) {
	params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g", at.Lng-delta, at.Lat-delta, at.Lng+delta, at.Lat+delta))
	params.Set("bounded", "1")
}

func (s *NominatimService) search(ctx context.Context, params url.Values) ([]types.Place, error) {
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	if s.cfg.CountryCodes != "" {
		params.Set("countrycodes", s.cfg.CountryCodes)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}

	return normalizeResults(raw), nil
}

// normalizeResults converts raw directory rows into the shared Place shape.
// A row without its own name falls back to the first display-name segment.
func normalizeResults(raw []nominatimResult) []types.Place {
	places := make([]types.Place, 0, len(raw))
	for _, item := range raw {
		lat, _ := strconv.ParseFloat(item.Lat, 64)
		lng, _ := strconv.ParseFloat(item.Lon, 64)

		name := item.Name
		if name == "" {
			name = strings.SplitN(item.DisplayName, ",", 2)[0]
		}

		placeID := item.PlaceID.String()
		if placeID == "" {
			placeID = uuid.NewString()
		}

		category := item.Class
		if category == "" {
			category = "unknown"
		}
		placeType := item.Type
		if placeType == "" {
			placeType = "place"
		}

		places = append(places, types.Place{
			PlaceID:  placeID,
			Name:     name,
			Address:  item.DisplayName,
			Lat:      lat,
			Lng:      lng,
			Category: category,
			Type:     placeType,
			Source:   "openstreetmap",
		})
	}
	return places
}
