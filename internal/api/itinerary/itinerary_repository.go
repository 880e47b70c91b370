package itinerary

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

// Repository defines the interface for itinerary entry persistence.
type Repository interface {
	CreateEntry(ctx context.Context, entry types.Itinerary) (types.Itinerary, error)
	GetEntry(ctx context.Context, entryID uuid.UUID) (types.Itinerary, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*types.Itinerary, error)
	UpdateEntry(ctx context.Context, entryID uuid.UUID, params types.UpdateItineraryParams) error
	DeleteEntry(ctx context.Context, entryID uuid.UUID) error
	ApplyLegUpdates(ctx context.Context, updates []types.LegUpdate) error
	CreateEntriesFromDrafts(ctx context.Context, trip types.Trip, stops []types.DraftStop) error
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

const itineraryColumns = `
    id, trip_id, user_id, place_id, place_name, place_address, lat, lng,
    day_number, "order", time, notes, duration_minutes,
    weather_summary, weather_icon, distance_from_previous, drive_time_from_previous,
    speed_limit, nearby_gas_stations, is_recommended, recommendation_score,
    created_at, updated_at`

func scanItinerary(row pgx.Row) (types.Itinerary, error) {
	var e types.Itinerary
	err := row.Scan(
		&e.ID, &e.TripID, &e.UserID, &e.PlaceID, &e.PlaceName, &e.PlaceAddress, &e.Lat, &e.Lng,
		&e.DayNumber, &e.Order, &e.Time, &e.Notes, &e.DurationMinutes,
		&e.WeatherSummary, &e.WeatherIcon, &e.DistanceFromPrevious, &e.DriveTimeFromPrevious,
		&e.SpeedLimit, &e.NearbyGasStations, &e.IsRecommended, &e.RecommendationScore,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// CreateEntry inserts an itinerary entry, enrichment fields included.
func (r *RepositoryImpl) CreateEntry(ctx context.Context, entry types.Itinerary) (types.Itinerary, error) {
	query := `
        INSERT INTO itineraries (
            trip_id, user_id, place_id, place_name, place_address, lat, lng,
            day_number, "order", time, notes, duration_minutes,
            weather_summary, weather_icon, nearby_gas_stations,
            is_recommended, recommendation_score
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING` + itineraryColumns

	created, err := scanItinerary(r.pgpool.QueryRow(ctx, query,
		entry.TripID, entry.UserID, entry.PlaceID, entry.PlaceName, entry.PlaceAddress, entry.Lat, entry.Lng,
		entry.DayNumber, entry.Order, entry.Time, entry.Notes, entry.DurationMinutes,
		entry.WeatherSummary, entry.WeatherIcon, entry.NearbyGasStations,
		entry.IsRecommended, entry.RecommendationScore,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create itinerary entry", slog.Any("error", err))
		return types.Itinerary{}, fmt.Errorf("failed to create itinerary entry: %w", err)
	}
	return created, nil
}

// GetEntry retrieves one itinerary entry by id.
func (r *RepositoryImpl) GetEntry(ctx context.Context, entryID uuid.UUID) (types.Itinerary, error) {
	query := `SELECT` + itineraryColumns + ` FROM itineraries WHERE id = $1`

	entry, err := scanItinerary(r.pgpool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Itinerary{}, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get itinerary entry", slog.Any("error", err))
		return types.Itinerary{}, fmt.Errorf("failed to get itinerary entry: %w", err)
	}
	return entry, nil
}

// ListByTrip returns a trip's entries in canonical (day_number, order)
// sequence. Everything downstream (routing, reconciliation) assumes this
// ordering.
func (r *RepositoryImpl) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*types.Itinerary, error) {
	query := `SELECT` + itineraryColumns + `
        FROM itineraries WHERE trip_id = $1
        ORDER BY day_number, "order"`

	rows, err := r.pgpool.Query(ctx, query, tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list itinerary entries", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list itinerary entries: %w", err)
	}
	defer rows.Close()

	var entries []*types.Itinerary
	for rows.Next() {
		entry, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itinerary entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry applies a partial edit. Computed fields (coordinates, legs,
// enrichment) are not reachable from here.
func (r *RepositoryImpl) UpdateEntry(ctx context.Context, entryID uuid.UUID, params types.UpdateItineraryParams) error {
	sets := []string{}
	args := []interface{}{}
	i := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	if params.Time != nil {
		add("time", *params.Time)
	}
	if params.DurationMinutes != nil {
		add("duration_minutes", *params.DurationMinutes)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.DayNumber != nil {
		add("day_number", *params.DayNumber)
	}
	if params.Order != nil {
		add(`"order"`, *params.Order)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE itineraries SET %s WHERE id = $%d", strings.Join(sets, ", "), i)
	args = append(args, entryID)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update itinerary entry", slog.Any("error", err))
		return fmt.Errorf("failed to update itinerary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteEntry removes one itinerary entry.
func (r *RepositoryImpl) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM itineraries WHERE id = $1", entryID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete itinerary entry", slog.Any("error", err))
		return fmt.Errorf("failed to delete itinerary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ApplyLegUpdates writes the reconciler's per-entry distances and drive
// times in one batch.
func (r *RepositoryImpl) ApplyLegUpdates(ctx context.Context, updates []types.LegUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(
			"UPDATE itineraries SET distance_from_previous = $1, drive_time_from_previous = $2, updated_at = NOW() WHERE id = $3",
			u.DistanceFromPrevious, u.DriveTimeFromPrevious, u.EntryID,
		)
	}

	results := r.pgpool.SendBatch(ctx, batch)
	defer results.Close()

	for range updates {
		if _, err := results.Exec(); err != nil {
			r.logger.ErrorContext(ctx, "Failed to apply leg update", slog.Any("error", err))
			return fmt.Errorf("failed to apply leg updates: %w", err)
		}
	}
	return nil
}

// CreateEntriesFromDrafts materializes scheduler output as itinerary entries
// anchored at the trip center, flagged as recommendations.
func (r *RepositoryImpl) CreateEntriesFromDrafts(ctx context.Context, trip types.Trip, stops []types.DraftStop) error {
	if len(stops) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, stop := range stops {
		score := float64(stop.Score)
		batch.Queue(`
            INSERT INTO itineraries (
                trip_id, user_id, place_id, place_name, lat, lng,
                day_number, "order", time, duration_minutes,
                is_recommended, recommendation_score
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11)`,
			trip.ID, trip.UserID, "", "Suggested "+string(stop.Type), trip.CenterLat, trip.CenterLng,
			stop.Day, stop.Order, stop.Time, stop.DurationMinutes, score,
		)
	}

	results := r.pgpool.SendBatch(ctx, batch)
	defer results.Close()

	for range stops {
		if _, err := results.Exec(); err != nil {
			r.logger.ErrorContext(ctx, "Failed to insert draft entry", slog.Any("error", err))
			return fmt.Errorf("failed to materialize draft stops: %w", err)
		}
	}
	return nil
}
