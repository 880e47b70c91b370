package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure PostgresVisitRepo implements the VisitRepo interface
var _ VisitRepo = (*PostgresVisitRepo)(nil)

// VisitRepo defines the interface for visit history persistence.
type VisitRepo interface {
	CreateVisit(ctx context.Context, visit types.TripVisit) (*types.TripVisit, error)
	ListVisitsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]types.TripVisit, error)
}

// PostgresVisitRepo struct holds the logger and database connection pool
type PostgresVisitRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresVisitRepo(pgxpool *pgxpool.Pool, logger *slog.Logger) *PostgresVisitRepo {
	return &PostgresVisitRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

// CreateVisit inserts a visit record and returns it with generated fields.
func (r *PostgresVisitRepo) CreateVisit(ctx context.Context, visit types.TripVisit) (*types.TripVisit, error) {
	query := `
        INSERT INTO trip_visits (
            user_id, itinerary_id, place_id, place_name, place_category,
            lat, lng, duration_minutes, user_rating, user_notes, visited_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at
    `
	visitedAt := visit.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = time.Now()
	}
	err := r.pgpool.QueryRow(ctx, query,
		visit.UserID, visit.ItineraryID, visit.PlaceID, visit.PlaceName, visit.PlaceCategory,
		visit.Lat, visit.Lng, visit.DurationMinutes, visit.UserRating, visit.UserNotes, visitedAt,
	).Scan(&visit.ID, &visit.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create visit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}
	visit.VisitedAt = visitedAt
	return &visit, nil
}

// ListVisitsSince returns all of a user's visits at or after since, newest
// first. A zero since returns the full history.
func (r *PostgresVisitRepo) ListVisitsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]types.TripVisit, error) {
	query := `
        SELECT id, user_id, itinerary_id, place_id, place_name, place_category,
               lat, lng, duration_minutes, user_rating, user_notes, visited_at, created_at
        FROM trip_visits
        WHERE user_id = $1 AND visited_at >= $2
        ORDER BY visited_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID, since)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list visits", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []types.TripVisit
	for rows.Next() {
		var v types.TripVisit
		err := rows.Scan(
			&v.ID, &v.UserID, &v.ItineraryID, &v.PlaceID, &v.PlaceName, &v.PlaceCategory,
			&v.Lat, &v.Lng, &v.DurationMinutes, &v.UserRating, &v.UserNotes, &v.VisitedAt, &v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visits: %w", err)
	}
	return visits, nil
}
