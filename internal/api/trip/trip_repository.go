package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for trip persistence.
type Repository interface {
	CreateTrip(ctx context.Context, trip types.Trip) (types.Trip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error)
	ListUserTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, params types.UpdateTripParams) error
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
	ActivateTrip(ctx context.Context, userID, tripID uuid.UUID) error
	SetRouteData(ctx context.Context, tripID uuid.UUID, geometry []byte) error
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

const tripColumns = `
    t.id, t.user_id, t.title, t.destination, t.description, t.trip_type, t.transit_type,
    t.start_date, t.end_date, t.center_lat, t.center_lng, t.route_data,
    t.is_active, t.is_published, t.created_at, t.updated_at`

func scanTrip(row pgx.Row) (types.Trip, error) {
	var t types.Trip
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Destination, &t.Description, &t.TripType, &t.TransitType,
		&t.StartDate, &t.EndDate, &t.CenterLat, &t.CenterLng, &t.RouteData,
		&t.IsActive, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// CreateTrip inserts a trip and returns it with generated fields.
func (r *RepositoryImpl) CreateTrip(ctx context.Context, trip types.Trip) (types.Trip, error) {
	query := `
        INSERT INTO trips (
            user_id, title, destination, description, trip_type, transit_type,
            start_date, end_date, center_lat, center_lng, is_active, is_published
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING` + strings.ReplaceAll(tripColumns, "t.", "")

	created, err := scanTrip(r.pgpool.QueryRow(ctx, query,
		trip.UserID, trip.Title, trip.Destination, trip.Description, trip.TripType, trip.TransitType,
		trip.StartDate, trip.EndDate, trip.CenterLat, trip.CenterLng, trip.IsActive, trip.IsPublished,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("failed to create trip: %w", err)
	}
	return created, nil
}

// GetTrip retrieves a trip by id with its itinerary count.
func (r *RepositoryImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error) {
	query := `
        SELECT` + tripColumns + `,
            (SELECT COUNT(*) FROM itineraries i WHERE i.trip_id = t.id) AS itinerary_count
        FROM trips t WHERE t.id = $1`

	var t types.Trip
	err := r.pgpool.QueryRow(ctx, query, tripID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Destination, &t.Description, &t.TripType, &t.TransitType,
		&t.StartDate, &t.EndDate, &t.CenterLat, &t.CenterLng, &t.RouteData,
		&t.IsActive, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt, &t.ItineraryCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Trip{}, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("failed to get trip: %w", err)
	}
	return t, nil
}

// ListUserTrips returns a user's trips newest first, with itinerary counts.
func (r *RepositoryImpl) ListUserTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	query := `
        SELECT` + tripColumns + `,
            (SELECT COUNT(*) FROM itineraries i WHERE i.trip_id = t.id) AS itinerary_count
        FROM trips t
        WHERE t.user_id = $1
        ORDER BY t.created_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []types.Trip
	for rows.Next() {
		var t types.Trip
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Destination, &t.Description, &t.TripType, &t.TransitType,
			&t.StartDate, &t.EndDate, &t.CenterLat, &t.CenterLng, &t.RouteData,
			&t.IsActive, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt, &t.ItineraryCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// UpdateTrip applies a partial edit. Nil fields are skipped.
func (r *RepositoryImpl) UpdateTrip(ctx context.Context, tripID uuid.UUID, params types.UpdateTripParams) error {
	sets := []string{}
	args := []interface{}{}
	i := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Destination != nil {
		add("destination", *params.Destination)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.TransitType != nil {
		add("transit_type", *params.TransitType)
	}
	if params.StartDate != nil {
		t, err := time.Parse("2006-01-02", *params.StartDate)
		if err != nil {
			return fmt.Errorf("invalid start_date: %w", err)
		}
		add("start_date", t)
	}
	if params.EndDate != nil {
		t, err := time.Parse("2006-01-02", *params.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end_date: %w", err)
		}
		add("end_date", t)
	}
	if params.IsPublished != nil {
		add("is_published", *params.IsPublished)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE trips SET %s WHERE id = $%d", strings.Join(sets, ", "), i)
	args = append(args, tripID)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteTrip removes a trip; itineraries, visits and chat rows cascade.
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM trips WHERE id = $1", tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ActivateTrip deactivates all of the user's trips then activates one, in a
// single transaction so there is never a moment with two active trips.
func (r *RepositoryImpl) ActivateTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin activate transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "UPDATE trips SET is_active = false WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to deactivate trips: %w", err)
	}

	tag, err := tx.Exec(ctx, "UPDATE trips SET is_active = true, updated_at = NOW() WHERE id = $1 AND user_id = $2", tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to activate trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	return tx.Commit(ctx)
}

// SetRouteData stores the primary route geometry computed for the trip.
func (r *RepositoryImpl) SetRouteData(ctx context.Context, tripID uuid.UUID, geometry []byte) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE trips SET route_data = $1, updated_at = NOW() WHERE id = $2", geometry, tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to set route data", slog.Any("error", err))
		return fmt.Errorf("failed to set route data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
