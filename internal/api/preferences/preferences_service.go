package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// HistoryAnalyzer recomputes a preference profile from visit history.
// Satisfied by the planner service.
type HistoryAnalyzer interface {
	AnalyzeHistory(ctx context.Context, userID uuid.UUID) (types.PreferenceUpdate, error)
}

// Service defines the business logic contract for preference profiles.
type Service interface {
	GetUserPreference(ctx context.Context, userID uuid.UUID) (types.UserPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, params types.UpdateUserPreferenceParams) (types.UserPreference, error)
	AnalyzeAndApply(ctx context.Context, userID uuid.UUID) (types.UserPreference, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	analyzer HistoryAnalyzer
}

// NewService creates a new preferences service instance.
func NewService(repo Repository, analyzer HistoryAnalyzer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		analyzer: analyzer,
	}
}

// SetAnalyzer injects the history analyzer after construction. The planner
// also consumes this service as its preference source, so one of the two
// links has to be wired late.
func (s *ServiceImpl) SetAnalyzer(analyzer HistoryAnalyzer) {
	s.analyzer = analyzer
}

// GetUserPreference returns the user's stored profile, creating the default
// one on first access. Also satisfies planner.PreferenceSource.
func (s *ServiceImpl) GetUserPreference(ctx context.Context, userID uuid.UUID) (types.UserPreference, error) {
	l := s.logger.With(slog.String("method", "GetUserPreference"), slog.String("userID", userID.String()))

	pref, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to fetch preferences", slog.Any("error", err))
		return types.UserPreference{}, fmt.Errorf("error fetching preferences: %w", err)
	}

	l.InfoContext(ctx, "No stored preferences, creating defaults")
	created, err := s.repo.Create(ctx, types.DefaultPreferences(userID))
	if err != nil {
		l.ErrorContext(ctx, "Failed to create default preferences", slog.Any("error", err))
		return types.UserPreference{}, fmt.Errorf("error creating default preferences: %w", err)
	}
	return created, nil
}

// UpdatePreferences applies a partial edit and returns the updated profile.
func (s *ServiceImpl) UpdatePreferences(ctx context.Context, userID uuid.UUID, params types.UpdateUserPreferenceParams) (types.UserPreference, error) {
	l := s.logger.With(slog.String("method", "UpdatePreferences"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Updating preferences")

	// First access may need the default row before an update can land.
	if _, err := s.GetUserPreference(ctx, userID); err != nil {
		return types.UserPreference{}, err
	}

	if err := s.repo.Update(ctx, userID, params); err != nil {
		l.ErrorContext(ctx, "Failed to update preferences", slog.Any("error", err))
		return types.UserPreference{}, fmt.Errorf("error updating preferences: %w", err)
	}

	pref, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return types.UserPreference{}, fmt.Errorf("error reloading preferences: %w", err)
	}

	l.InfoContext(ctx, "Preferences updated")
	return pref, nil
}

// AnalyzeAndApply recomputes the profile from visit history and overwrites the
// stored scores. An empty history surfaces types.ErrNoHistory and the stored
// profile stays untouched.
func (s *ServiceImpl) AnalyzeAndApply(ctx context.Context, userID uuid.UUID) (types.UserPreference, error) {
	ctx, span := otel.Tracer("PreferencesService").Start(ctx, "AnalyzeAndApply", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "AnalyzeAndApply"), slog.String("userID", userID.String()))

	update, err := s.analyzer.AnalyzeHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNoHistory) {
			l.InfoContext(ctx, "No history to analyze")
			span.SetStatus(codes.Ok, "No history to analyze")
			return types.UserPreference{}, err
		}
		l.ErrorContext(ctx, "History analysis failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "History analysis failed")
		return types.UserPreference{}, fmt.Errorf("error analyzing history: %w", err)
	}

	// Make sure the row exists before overwriting it.
	if _, err := s.GetUserPreference(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load preferences")
		return types.UserPreference{}, err
	}

	if err := s.repo.ApplyAnalysis(ctx, userID, update); err != nil {
		l.ErrorContext(ctx, "Failed to apply analysis", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply analysis")
		return types.UserPreference{}, fmt.Errorf("error applying analysis: %w", err)
	}

	pref, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return types.UserPreference{}, fmt.Errorf("error reloading preferences: %w", err)
	}

	l.InfoContext(ctx, "Preferences recomputed from history")
	span.SetStatus(codes.Ok, "Preferences recomputed")
	return pref, nil
}
