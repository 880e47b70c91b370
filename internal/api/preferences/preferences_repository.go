package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for preference profile persistence.
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserPreference, error)
	Create(ctx context.Context, pref types.UserPreference) (types.UserPreference, error)
	Update(ctx context.Context, userID uuid.UUID, params types.UpdateUserPreferenceParams) error
	ApplyAnalysis(ctx context.Context, userID uuid.UUID, update types.PreferenceUpdate) error
}

// RepositoryImpl struct holds the logger and database connection pool
type RepositoryImpl struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgxpool,
	}
}

const preferenceColumns = `
    id, user_id,
    preference_restaurant, preference_hotel, preference_shopping, preference_coffee,
    preference_attractions, preference_nature, preference_culture, preference_adventure,
    preferred_transit, prefer_main_roads, prefer_scenic_routes,
    avg_hours_per_stop, avg_trip_duration, preferred_start_time, preferred_end_time,
    created_at, updated_at`

func scanPreference(row pgx.Row) (types.UserPreference, error) {
	var p types.UserPreference
	err := row.Scan(
		&p.ID, &p.UserID,
		&p.PreferenceRestaurant, &p.PreferenceHotel, &p.PreferenceShopping, &p.PreferenceCoffee,
		&p.PreferenceAttractions, &p.PreferenceNature, &p.PreferenceCulture, &p.PreferenceAdventure,
		&p.PreferredTransit, &p.PreferMainRoads, &p.PreferScenicRoutes,
		&p.AvgHoursPerStop, &p.AvgTripDurationDays, &p.PreferredStartTime, &p.PreferredEndTime,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetByUserID retrieves a user's preference profile. Missing profiles are
// types.ErrNotFound; the service layer decides whether that means "create
// defaults".
func (r *RepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserPreference, error) {
	query := `SELECT` + preferenceColumns + ` FROM user_preferences WHERE user_id = $1`

	pref, err := scanPreference(r.pgpool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.UserPreference{}, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get preferences", slog.Any("error", err))
		return types.UserPreference{}, fmt.Errorf("failed to get preferences: %w", err)
	}
	return pref, nil
}

// Create inserts a preference profile and returns it with generated fields.
func (r *RepositoryImpl) Create(ctx context.Context, pref types.UserPreference) (types.UserPreference, error) {
	query := `
        INSERT INTO user_preferences (
            user_id,
            preference_restaurant, preference_hotel, preference_shopping, preference_coffee,
            preference_attractions, preference_nature, preference_culture, preference_adventure,
            preferred_transit, prefer_main_roads, prefer_scenic_routes,
            avg_hours_per_stop, avg_trip_duration, preferred_start_time, preferred_end_time
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING` + preferenceColumns

	created, err := scanPreference(r.pgpool.QueryRow(ctx, query,
		pref.UserID,
		pref.PreferenceRestaurant, pref.PreferenceHotel, pref.PreferenceShopping, pref.PreferenceCoffee,
		pref.PreferenceAttractions, pref.PreferenceNature, pref.PreferenceCulture, pref.PreferenceAdventure,
		pref.PreferredTransit, pref.PreferMainRoads, pref.PreferScenicRoutes,
		pref.AvgHoursPerStop, pref.AvgTripDurationDays, pref.PreferredStartTime, pref.PreferredEndTime,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create preferences", slog.Any("error", err))
		return types.UserPreference{}, fmt.Errorf("failed to create preferences: %w", err)
	}
	return created, nil
}

// Update applies a partial edit. Nil fields are skipped; a params struct with
// nothing set is a no-op.
func (r *RepositoryImpl) Update(ctx context.Context, userID uuid.UUID, params types.UpdateUserPreferenceParams) error {
	sets := []string{}
	args := []interface{}{}
	i := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	if params.PreferenceRestaurant != nil {
		add("preference_restaurant", types.ClampScore(*params.PreferenceRestaurant))
	}
	if params.PreferenceHotel != nil {
		add("preference_hotel", types.ClampScore(*params.PreferenceHotel))
	}
	if params.PreferenceShopping != nil {
		add("preference_shopping", types.ClampScore(*params.PreferenceShopping))
	}
	if params.PreferenceCoffee != nil {
		add("preference_coffee", types.ClampScore(*params.PreferenceCoffee))
	}
	if params.PreferenceAttractions != nil {
		add("preference_attractions", types.ClampScore(*params.PreferenceAttractions))
	}
	if params.PreferenceNature != nil {
		add("preference_nature", types.ClampScore(*params.PreferenceNature))
	}
	if params.PreferenceCulture != nil {
		add("preference_culture", types.ClampScore(*params.PreferenceCulture))
	}
	if params.PreferenceAdventure != nil {
		add("preference_adventure", types.ClampScore(*params.PreferenceAdventure))
	}
	if params.PreferredTransit != nil {
		add("preferred_transit", *params.PreferredTransit)
	}
	if params.PreferMainRoads != nil {
		add("prefer_main_roads", *params.PreferMainRoads)
	}
	if params.PreferScenicRoutes != nil {
		add("prefer_scenic_routes", *params.PreferScenicRoutes)
	}
	if params.AvgHoursPerStop != nil {
		add("avg_hours_per_stop", *params.AvgHoursPerStop)
	}
	if params.AvgTripDurationDays != nil {
		add("avg_trip_duration", *params.AvgTripDurationDays)
	}
	if params.PreferredStartTime != nil {
		add("preferred_start_time", *params.PreferredStartTime)
	}
	if params.PreferredEndTime != nil {
		add("preferred_end_time", *params.PreferredEndTime)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE user_preferences SET %s WHERE user_id = $%d", strings.Join(sets, ", "), i)
	args = append(args, userID)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update preferences", slog.Any("error", err))
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ApplyAnalysis overwrites all eight category scores and the pacing value in
// one statement.
func (r *RepositoryImpl) ApplyAnalysis(ctx context.Context, userID uuid.UUID, update types.PreferenceUpdate) error {
	query := `
        UPDATE user_preferences SET
            preference_restaurant = $1, preference_hotel = $2, preference_shopping = $3,
            preference_coffee = $4, preference_attractions = $5, preference_nature = $6,
            preference_culture = $7, preference_adventure = $8,
            avg_hours_per_stop = $9, updated_at = NOW()
        WHERE user_id = $10`

	tag, err := r.pgpool.Exec(ctx, query,
		types.ClampScore(update.Scores[types.CategoryRestaurant]),
		types.ClampScore(update.Scores[types.CategoryHotel]),
		types.ClampScore(update.Scores[types.CategoryShopping]),
		types.ClampScore(update.Scores[types.CategoryCoffee]),
		types.ClampScore(update.Scores[types.CategoryAttractions]),
		types.ClampScore(update.Scores[types.CategoryNature]),
		types.ClampScore(update.Scores[types.CategoryCulture]),
		types.ClampScore(update.Scores[types.CategoryAdventure]),
		update.AvgHoursPerStop,
		userID,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to apply analysis", slog.Any("error", err))
		return fmt.Errorf("failed to apply analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
