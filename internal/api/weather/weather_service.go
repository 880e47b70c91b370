package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure OpenWeatherService implements the Service interface
var _ Service = (*OpenWeatherService)(nil)

// Service yields current conditions for a coordinate. Lookups are
// best-effort: callers treat an error as "no weather available".
type Service interface {
	GetWeather(ctx context.Context, at types.Waypoint) (*types.WeatherInfo, error)
}

// Config carries the OpenWeatherMap connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OpenWeatherService is the OpenWeatherMap current-conditions client with a
// short in-process cache. Weather at one coordinate barely moves inside ten
// minutes, and itinerary creation otherwise hits the API once per stop.
type OpenWeatherService struct {
	client *http.Client
	cfg    Config
	cache  *cache.Cache
	logger *slog.Logger
}

const cacheTTL = 10 * time.Minute

func NewOpenWeatherService(cfg Config, logger *slog.Logger) *OpenWeatherService {
	return &OpenWeatherService{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		cache:  cache.New(cacheTTL, 20*time.Minute),
		logger: logger,
	}
}

// openWeatherResponse mirrors the subset of the current-weather payload we
// consume.
type openWeatherResponse struct {
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
}

// GetWeather fetches metric current conditions at the coordinate.
func (s *OpenWeatherService) GetWeather(ctx context.Context, at types.Waypoint) (*types.WeatherInfo, error) {
	l := s.logger.With(slog.String("method", "GetWeather"))

	key := fmt.Sprintf("%.3f,%.3f", at.Lat, at.Lng)
	if hit, ok := s.cache.Get(key); ok {
		return hit.(*types.WeatherInfo), nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	params.Set("appid", s.cfg.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		l.WarnContext(ctx, "Weather request failed", slog.Any("error", err))
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.WarnContext(ctx, "Weather request rejected", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}

	info := normalize(body)
	s.cache.Set(key, info, cache.DefaultExpiration)
	return info, nil
}

func normalize(body openWeatherResponse) *types.WeatherInfo {
	desc := "Unknown"
	icon := ""
	if len(body.Weather) > 0 {
		desc = body.Weather[0].Main
		icon = body.Weather[0].Icon
	}

	return &types.WeatherInfo{
		Temp:        body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Description: desc,
		Icon:        icon,
		WindSpeed:   body.Wind.Speed,
		RainChance:  body.Clouds.All,
		Summary:     fmt.Sprintf("%s, %g°C", desc, body.Main.Temp),
	}
}
