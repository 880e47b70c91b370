package trip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koinbeefs/IntelliTravel/app/observability/metrics"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// StopPlanner produces draft stops for an automatic trip.
type StopPlanner interface {
	GenerateDraftStops(ctx context.Context, userID uuid.UUID, days int, anchor types.Waypoint) ([]types.DraftStop, error)
}

// DraftMaterializer persists scheduler output as itinerary entries.
type DraftMaterializer interface {
	CreateEntriesFromDrafts(ctx context.Context, trip types.Trip, stops []types.DraftStop) error
}

// Service defines the business logic contract for trips.
type Service interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (types.Trip, error)
	GetTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) (types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	ActivateTrip(ctx context.Context, userID, tripID uuid.UUID) (types.Trip, error)
	GetRecommendations(ctx context.Context, userID, tripID uuid.UUID) ([]types.DraftStop, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	planner StopPlanner
	drafts  DraftMaterializer
}

// NewService creates a new trip service instance.
func NewService(repo Repository, planner StopPlanner, drafts DraftMaterializer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		planner: planner,
		drafts:  drafts,
	}
}

// CreateTrip creates a trip. New trips start active and unpublished. An
// automatic trip also gets a generated itinerary; generation failure is
// logged and the trip survives without one.
func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.type", req.TripType),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateTrip"), slog.String("userID", userID.String()))

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return types.Trip{}, fmt.Errorf("invalid start_date: %w", err)
	}
	var endDate *time.Time
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return types.Trip{}, fmt.Errorf("invalid end_date: %w", err)
		}
		endDate = &t
	}

	trip := types.Trip{
		UserID:      userID,
		Title:       req.Title,
		Destination: req.Destination,
		Description: req.Description,
		TripType:    types.TripType(req.TripType),
		TransitType: types.TransitMode(req.TransitType),
		StartDate:   &startDate,
		EndDate:     endDate,
		CenterLat:   req.CenterLat,
		CenterLng:   req.CenterLng,
		IsActive:    true,
		IsPublished: false,
	}

	created, err := s.repo.CreateTrip(ctx, trip)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create trip")
		return types.Trip{}, fmt.Errorf("error creating trip: %w", err)
	}

	if created.TripType == types.TripTypeAutomatic {
		s.generateItinerary(ctx, &created)
	}

	l.InfoContext(ctx, "Trip created", slog.String("tripID", created.ID.String()))
	span.SetStatus(codes.Ok, "Trip created")
	return created, nil
}

// generateItinerary runs the scheduler for an automatic trip and materializes
// the result. Failures never abort trip creation.
func (s *ServiceImpl) generateItinerary(ctx context.Context, trip *types.Trip) {
	l := s.logger.With(slog.String("method", "generateItinerary"), slog.String("tripID", trip.ID.String()))

	anchor := types.Waypoint{Lat: trip.CenterLat, Lng: trip.CenterLng}
	stops, err := s.planner.GenerateDraftStops(ctx, trip.UserID, trip.Days(), anchor)
	if err != nil {
		l.ErrorContext(ctx, "Auto-itinerary generation failed", slog.Any("error", err))
		return
	}

	if err := s.drafts.CreateEntriesFromDrafts(ctx, *trip, stops); err != nil {
		l.ErrorContext(ctx, "Failed to persist generated itinerary", slog.Any("error", err))
		return
	}

	metrics.Get().ItinerariesGeneratedTotal.Add(ctx, 1)
	trip.ItineraryCount = len(stops)
	l.InfoContext(ctx, "Auto-itinerary generated", slog.Int("stops", len(stops)))
}

// GetTrips returns all of the user's trips, newest first.
func (s *ServiceImpl) GetTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	l := s.logger.With(slog.String("method", "GetTrips"), slog.String("userID", userID.String()))

	trips, err := s.repo.ListUserTrips(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		return nil, fmt.Errorf("error listing trips: %w", err)
	}
	return trips, nil
}

// GetTrip returns one trip the user owns.
func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (types.Trip, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return types.Trip{}, err
	}
	if trip.UserID != userID {
		return types.Trip{}, types.ErrForbidden
	}
	return trip, nil
}

// UpdateTrip applies a partial edit to a trip the user owns and returns the
// updated trip.
func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) (types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateTrip"), slog.String("tripID", tripID.String()))

	if _, err := s.GetTrip(ctx, userID, tripID); err != nil {
		return types.Trip{}, err
	}

	if err := s.repo.UpdateTrip(ctx, tripID, params); err != nil {
		l.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update trip")
		return types.Trip{}, fmt.Errorf("error updating trip: %w", err)
	}

	updated, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return types.Trip{}, fmt.Errorf("error reloading trip: %w", err)
	}
	span.SetStatus(codes.Ok, "Trip updated")
	return updated, nil
}

// DeleteTrip removes a trip the user owns, cascading to its itinerary.
func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteTrip"), slog.String("tripID", tripID.String()))

	if _, err := s.GetTrip(ctx, userID, tripID); err != nil {
		return err
	}

	if err := s.repo.DeleteTrip(ctx, tripID); err != nil {
		l.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		return fmt.Errorf("error deleting trip: %w", err)
	}

	l.InfoContext(ctx, "Trip deleted")
	return nil
}

// ActivateTrip makes one trip the user's active trip, deactivating the rest.
func (s *ServiceImpl) ActivateTrip(ctx context.Context, userID, tripID uuid.UUID) (types.Trip, error) {
	l := s.logger.With(slog.String("method", "ActivateTrip"), slog.String("tripID", tripID.String()))

	if _, err := s.GetTrip(ctx, userID, tripID); err != nil {
		return types.Trip{}, err
	}

	if err := s.repo.ActivateTrip(ctx, userID, tripID); err != nil {
		l.ErrorContext(ctx, "Failed to activate trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("error activating trip: %w", err)
	}

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return types.Trip{}, fmt.Errorf("error reloading trip: %w", err)
	}

	l.InfoContext(ctx, "Trip activated")
	return trip, nil
}

// GetRecommendations runs the scheduler for a trip without persisting
// anything. Trips without a full date range are planned as 3 days.
func (s *ServiceImpl) GetRecommendations(ctx context.Context, userID, tripID uuid.UUID) ([]types.DraftStop, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetRecommendations", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetRecommendations"), slog.String("tripID", tripID.String()))

	trip, err := s.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	days := 3
	if trip.StartDate != nil && trip.EndDate != nil {
		days = trip.Days()
	}

	anchor := types.Waypoint{Lat: trip.CenterLat, Lng: trip.CenterLng}
	stops, err := s.planner.GenerateDraftStops(ctx, userID, days, anchor)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate recommendations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate recommendations")
		return nil, fmt.Errorf("error generating recommendations: %w", err)
	}

	span.SetStatus(codes.Ok, "Recommendations generated")
	return stops, nil
}
