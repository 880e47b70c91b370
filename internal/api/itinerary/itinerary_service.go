package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/koinbeefs/IntelliTravel/app/observability/metrics"
	"github.com/koinbeefs/IntelliTravel/internal/api/place"
	"github.com/koinbeefs/IntelliTravel/internal/api/routing"
	"github.com/koinbeefs/IntelliTravel/internal/api/weather"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// TripStore is the slice of trip persistence the itinerary service needs:
// ownership checks and storing computed route geometry.
type TripStore interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error)
	SetRouteData(ctx context.Context, tripID uuid.UUID, geometry []byte) error
}

// Service defines the business logic contract for itinerary entries and the
// route computations over them.
type Service interface {
	CreateEntry(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (types.Itinerary, error)
	UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, params types.UpdateItineraryParams) (types.Itinerary, error)
	DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]*types.Itinerary, error)
	CalculateRoute(ctx context.Context, userID, tripID uuid.UUID) (types.CalculateRouteResponse, error)
	RouteDetails(ctx context.Context, userID, tripID uuid.UUID) (types.RouteDetailsResponse, error)
	SearchPlaces(ctx context.Context, userID, tripID uuid.UUID, query string) ([]types.Place, error)
	SuggestPlaces(ctx context.Context, userID, tripID uuid.UUID, categories ...string) ([]types.Place, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	trips   TripStore
	router  routing.Provider
	weather weather.Service
	places  place.Service
}

// NewService creates a new itinerary service instance.
func NewService(repo Repository, trips TripStore, router routing.Provider, weatherSvc weather.Service, places place.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		trips:   trips,
		router:  router,
		weather: weatherSvc,
		places:  places,
	}
}

// ownedTrip loads a trip and verifies the acting user owns it.
func (s *ServiceImpl) ownedTrip(ctx context.Context, userID, tripID uuid.UUID) (types.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return types.Trip{}, err
	}
	if trip.UserID != userID {
		return types.Trip{}, types.ErrForbidden
	}
	return trip, nil
}

// CreateEntry adds a stop to a trip the user owns. Weather and nearby gas
// stations are looked up concurrently; either lookup failing only costs the
// enrichment, never the entry.
func (s *ServiceImpl) CreateEntry(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateEntry", trace.WithAttributes(
		attribute.String("trip.id", req.TripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateEntry"), slog.String("tripID", req.TripID.String()))

	if _, err := s.ownedTrip(ctx, userID, req.TripID); err != nil {
		return types.Itinerary{}, err
	}

	at := types.Waypoint{Lat: req.Lat, Lng: req.Lng}

	var weatherRes types.Enrichment[*types.WeatherInfo]
	var stations []types.Place

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weatherRes.Data, weatherRes.Err = s.weather.GetWeather(gctx, at)
		return nil
	})
	g.Go(func() error {
		stations = s.places.FindGasStations(gctx, at)
		return nil
	})
	_ = g.Wait()

	entry := types.Itinerary{
		TripID:       req.TripID,
		UserID:       userID,
		PlaceID:      req.PlaceID,
		PlaceName:    req.PlaceName,
		PlaceAddress: req.PlaceAddress,
		Lat:          req.Lat,
		Lng:          req.Lng,
		DayNumber:    req.DayNumber,
		Order:        req.Order,
		Time:         req.Time,
	}
	if req.DurationMinutes != nil {
		entry.DurationMinutes = *req.DurationMinutes
	}

	if weatherRes.Ok() && weatherRes.Data != nil {
		entry.WeatherSummary = &weatherRes.Data.Summary
		entry.WeatherIcon = &weatherRes.Data.Icon
	} else if weatherRes.Err != nil {
		metrics.Get().EnrichmentFailuresTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Weather enrichment failed", slog.Any("error", weatherRes.Err))
	}

	if len(stations) > 0 {
		raw, err := json.Marshal(stations)
		if err == nil {
			entry.NearbyGasStations = raw
		}
	}

	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create entry", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create entry")
		return types.Itinerary{}, fmt.Errorf("error creating itinerary entry: %w", err)
	}

	l.InfoContext(ctx, "Itinerary entry created", slog.String("entryID", created.ID.String()))
	span.SetStatus(codes.Ok, "Entry created")
	return created, nil
}

// UpdateEntry applies a partial edit to an entry the user owns and returns
// the updated entry.
func (s *ServiceImpl) UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, params types.UpdateItineraryParams) (types.Itinerary, error) {
	l := s.logger.With(slog.String("method", "UpdateEntry"), slog.String("entryID", entryID.String()))

	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return types.Itinerary{}, err
	}
	if entry.UserID != userID {
		return types.Itinerary{}, types.ErrForbidden
	}

	if err := s.repo.UpdateEntry(ctx, entryID, params); err != nil {
		l.ErrorContext(ctx, "Failed to update entry", slog.Any("error", err))
		return types.Itinerary{}, fmt.Errorf("error updating itinerary entry: %w", err)
	}

	updated, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return types.Itinerary{}, fmt.Errorf("error reloading itinerary entry: %w", err)
	}
	return updated, nil
}

// DeleteEntry removes an entry the user owns.
func (s *ServiceImpl) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteEntry"), slog.String("entryID", entryID.String()))

	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return types.ErrForbidden
	}

	if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
		l.ErrorContext(ctx, "Failed to delete entry", slog.Any("error", err))
		return fmt.Errorf("error deleting itinerary entry: %w", err)
	}
	return nil
}

// ListByTrip returns a trip's entries in canonical order.
func (s *ServiceImpl) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]*types.Itinerary, error) {
	if _, err := s.ownedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListByTrip(ctx, tripID)
}

// CalculateRoute computes the provider route over a trip's stops and persists
// the result: the primary geometry on the trip, per-entry leg distances and
// drive times on the itinerary. Nothing is written unless the provider
// succeeds.
func (s *ServiceImpl) CalculateRoute(ctx context.Context, userID, tripID uuid.UUID) (types.CalculateRouteResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CalculateRoute", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CalculateRoute"), slog.String("tripID", tripID.String()))

	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return types.CalculateRouteResponse{}, err
	}

	entries, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return types.CalculateRouteResponse{}, fmt.Errorf("error listing itinerary entries: %w", err)
	}
	if len(entries) < 2 {
		return types.CalculateRouteResponse{}, types.ErrInsufficientStops
	}

	waypoints := make([]types.Waypoint, len(entries))
	for i, e := range entries {
		waypoints[i] = e.Waypoint()
	}

	routes, err := s.router.ComputeRoute(ctx, waypoints, trip.TransitType)
	if err != nil {
		l.WarnContext(ctx, "Route computation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Route computation failed")
		return types.CalculateRouteResponse{}, err
	}
	primary := routes[0]

	if err := s.trips.SetRouteData(ctx, tripID, primary.Geometry); err != nil {
		return types.CalculateRouteResponse{}, fmt.Errorf("error storing route geometry: %w", err)
	}

	updates := routing.ReconcileLegs(entries, primary.Legs)
	if err := s.repo.ApplyLegUpdates(ctx, updates); err != nil {
		return types.CalculateRouteResponse{}, fmt.Errorf("error applying leg updates: %w", err)
	}

	trip, err = s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return types.CalculateRouteResponse{}, fmt.Errorf("error reloading trip: %w", err)
	}
	entries, err = s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return types.CalculateRouteResponse{}, fmt.Errorf("error reloading itinerary entries: %w", err)
	}

	l.InfoContext(ctx, "Route calculated",
		slog.Int("stops", len(entries)),
		slog.Int("alternatives", len(routes)))
	span.SetStatus(codes.Ok, "Route calculated")

	return types.CalculateRouteResponse{
		Trip:         &trip,
		Itineraries:  entries,
		Alternatives: routes,
	}, nil
}

// RouteDetails computes a route and derives speed estimates and totals from
// it without persisting anything. Totals are itinerary-facing units:
// kilometers and minutes.
func (s *ServiceImpl) RouteDetails(ctx context.Context, userID, tripID uuid.UUID) (types.RouteDetailsResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "RouteDetails", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return types.RouteDetailsResponse{}, err
	}

	entries, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return types.RouteDetailsResponse{}, fmt.Errorf("error listing itinerary entries: %w", err)
	}
	if len(entries) < 2 {
		return types.RouteDetailsResponse{}, types.ErrInsufficientStops
	}

	waypoints := make([]types.Waypoint, len(entries))
	for i, e := range entries {
		waypoints[i] = e.Waypoint()
	}

	routes, err := s.router.ComputeRoute(ctx, waypoints, trip.TransitType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Route computation failed")
		return types.RouteDetailsResponse{}, err
	}
	primary := routes[0]

	span.SetStatus(codes.Ok, "Route details computed")
	return types.RouteDetailsResponse{
		Route:         primary,
		SpeedLimits:   routing.EstimateSpeedLimits(primary),
		TotalDistance: primary.Distance / 1000,
		TotalDuration: primary.Duration / 60,
	}, nil
}

// SearchPlaces searches the place directory biased around the trip center.
func (s *ServiceImpl) SearchPlaces(ctx context.Context, userID, tripID uuid.UUID, query string) ([]types.Place, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	near := types.Waypoint{Lat: trip.CenterLat, Lng: trip.CenterLng}
	return s.places.SearchPlaces(ctx, query, &near)
}

// SuggestPlaces returns nearby suggestions centered on the midpoint of the
// trip's stops, falling back to the trip center when there are none.
func (s *ServiceImpl) SuggestPlaces(ctx context.Context, userID, tripID uuid.UUID, categories ...string) ([]types.Place, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("error listing itinerary entries: %w", err)
	}

	at := types.Waypoint{Lat: trip.CenterLat, Lng: trip.CenterLng}
	if len(entries) > 0 {
		var sumLat, sumLng float64
		for _, e := range entries {
			sumLat += e.Lat
			sumLng += e.Lng
		}
		at = types.Waypoint{
			Lat: sumLat / float64(len(entries)),
			Lng: sumLng / float64(len(entries)),
		}
	}

	return s.places.SearchNearby(ctx, at, categories...), nil
}
