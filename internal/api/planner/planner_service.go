package planner

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

// PreferenceSource yields the preference profile driving the scheduler.
// Implementations fall back to defaults for users without a stored profile.
type PreferenceSource interface {
	GetUserPreference(ctx context.Context, userID uuid.UUID) (types.UserPreference, error)
}

// Service defines the business logic contract for itinerary planning.
type Service interface {
	GenerateDraftStops(ctx context.Context, userID uuid.UUID, days int, anchor types.Waypoint) ([]types.DraftStop, error)
	AnalyzeHistory(ctx context.Context, userID uuid.UUID) (types.PreferenceUpdate, error)
	RecordVisit(ctx context.Context, visit types.TripVisit) (*types.TripVisit, error)
	GetVisitHistory(ctx context.Context, userID uuid.UUID) ([]types.TripVisit, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger             *slog.Logger
	prefs              PreferenceSource
	visits             VisitRepo
	historyWindowMonth int
}

// NewService creates a new planner service instance. historyWindowMonths
// bounds how far back AnalyzeHistory looks; zero or negative means no bound.
func NewService(prefs PreferenceSource, visits VisitRepo, historyWindowMonths int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:             logger,
		prefs:              prefs,
		visits:             visits,
		historyWindowMonth: historyWindowMonths,
	}
}

// GenerateDraftStops loads the user's preference profile and runs the slot
// scheduler over it for the given trip length.
func (s *ServiceImpl) GenerateDraftStops(ctx context.Context, userID uuid.UUID, days int, anchor types.Waypoint) ([]types.DraftStop, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "GenerateDraftStops", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("trip.days", days),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateDraftStops"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Generating draft stops", slog.Int("days", days))

	prefs, err := s.prefs.GetUserPreference(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load preferences", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load preferences")
		return nil, fmt.Errorf("error loading preferences: %w", err)
	}

	stops := ScheduleItinerary(prefs, days, anchor)
	metrics.Get().StopsScheduledTotal.Add(ctx, int64(len(stops)))

	l.InfoContext(ctx, "Draft stops generated", slog.Int("count", len(stops)))
	span.SetStatus(codes.Ok, "Draft stops generated")
	return stops, nil
}

// AnalyzeHistory fetches the user's visit history inside the configured
// window and recomputes the preference profile from it. Returns
// types.ErrNoHistory unchanged when the window is empty.
func (s *ServiceImpl) AnalyzeHistory(ctx context.Context, userID uuid.UUID) (types.PreferenceUpdate, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "AnalyzeHistory", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "AnalyzeHistory"), slog.String("userID", userID.String()))

	since := time.Time{}
	if s.historyWindowMonth > 0 {
		since = time.Now().AddDate(0, -s.historyWindowMonth, 0)
	}

	visits, err := s.visits.ListVisitsSince(ctx, userID, since)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch visit history", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch visit history")
		return types.PreferenceUpdate{}, fmt.Errorf("error fetching visit history: %w", err)
	}

	update, err := AnalyzeVisits(visits)
	if err != nil {
		l.DebugContext(ctx, "No visit history to analyze")
		span.SetStatus(codes.Ok, "No visit history")
		return types.PreferenceUpdate{}, err
	}

	l.InfoContext(ctx, "Visit history analyzed",
		slog.Int("visits", len(visits)),
		slog.Int("avg_hours_per_stop", update.AvgHoursPerStop))
	span.SetStatus(codes.Ok, "Visit history analyzed")
	return update, nil
}

// RecordVisit persists a completed visit for later analysis.
func (s *ServiceImpl) RecordVisit(ctx context.Context, visit types.TripVisit) (*types.TripVisit, error) {
	l := s.logger.With(slog.String("method", "RecordVisit"), slog.String("userID", visit.UserID.String()))
	l.DebugContext(ctx, "Recording visit", slog.String("place", visit.PlaceName))

	saved, err := s.visits.CreateVisit(ctx, visit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to record visit", slog.Any("error", err))
		return nil, fmt.Errorf("error recording visit: %w", err)
	}

	l.InfoContext(ctx, "Visit recorded", slog.String("visitID", saved.ID.String()))
	return saved, nil
}

// GetVisitHistory returns the user's visits inside the analysis window,
// newest first.
func (s *ServiceImpl) GetVisitHistory(ctx context.Context, userID uuid.UUID) ([]types.TripVisit, error) {
	l := s.logger.With(slog.String("method", "GetVisitHistory"), slog.String("userID", userID.String()))

	since := time.Time{}
	if s.historyWindowMonth > 0 {
		since = time.Now().AddDate(0, -s.historyWindowMonth, 0)
	}

	visits, err := s.visits.ListVisitsSince(ctx, userID, since)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch visit history", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching visit history: %w", err)
	}
	return visits, nil
}
