package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for trip collaborator persistence.
type Repository interface {
	CreateInvite(ctx context.Context, tripID, userID uuid.UUID, role types.CollaboratorRole) (types.TripCollaborator, error)
	ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]types.TripCollaborator, error)
	GetCollaborator(ctx context.Context, tripID, userID uuid.UUID) (types.TripCollaborator, error)
	AcceptInvite(ctx context.Context, tripID, userID uuid.UUID) error
	RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error
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

// CreateInvite adds a pending collaborator row for an invited user.
func (r *RepositoryImpl) CreateInvite(ctx context.Context, tripID, userID uuid.UUID, role types.CollaboratorRole) (types.TripCollaborator, error) {
	query := `
        INSERT INTO trip_collaborators (trip_id, user_id, role, status)
        VALUES ($1, $2, $3, 'pending')
        RETURNING id, trip_id, user_id, role, status, created_at`

	var c types.TripCollaborator
	err := r.pgpool.QueryRow(ctx, query, tripID, userID, role).
		Scan(&c.ID, &c.TripID, &c.UserID, &c.Role, &c.Status, &c.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create invite", slog.Any("error", err))
		return types.TripCollaborator{}, fmt.Errorf("failed to create invite: %w", err)
	}
	return c, nil
}

// ListCollaborators returns a trip's collaborators with account details.
func (r *RepositoryImpl) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]types.TripCollaborator, error) {
	query := `
        SELECT c.id, c.trip_id, c.user_id, u.username, u.email, c.role, c.status, c.created_at
        FROM trip_collaborators c
        JOIN users u ON u.id = c.user_id
        WHERE c.trip_id = $1
        ORDER BY c.created_at`

	rows, err := r.pgpool.Query(ctx, query, tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list collaborators", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var collaborators []types.TripCollaborator
	for rows.Next() {
		var c types.TripCollaborator
		err := rows.Scan(&c.ID, &c.TripID, &c.UserID, &c.Username, &c.Email, &c.Role, &c.Status, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collaborators: %w", err)
	}
	return collaborators, nil
}

// GetCollaborator returns one collaborator row. A miss is types.ErrNotFound.
func (r *RepositoryImpl) GetCollaborator(ctx context.Context, tripID, userID uuid.UUID) (types.TripCollaborator, error) {
	query := `
        SELECT id, trip_id, user_id, role, status, created_at
        FROM trip_collaborators WHERE trip_id = $1 AND user_id = $2`

	var c types.TripCollaborator
	err := r.pgpool.QueryRow(ctx, query, tripID, userID).
		Scan(&c.ID, &c.TripID, &c.UserID, &c.Role, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.TripCollaborator{}, types.ErrNotFound
		}
		return types.TripCollaborator{}, fmt.Errorf("failed to get collaborator: %w", err)
	}
	return c, nil
}

// AcceptInvite flips a pending invite to accepted.
func (r *RepositoryImpl) AcceptInvite(ctx context.Context, tripID, userID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE trip_collaborators SET status = 'accepted' WHERE trip_id = $1 AND user_id = $2 AND status = 'pending'",
		tripID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to accept invite", slog.Any("error", err))
		return fmt.Errorf("failed to accept invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// RemoveCollaborator deletes a collaborator row.
func (r *RepositoryImpl) RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		"DELETE FROM trip_collaborators WHERE trip_id = $1 AND user_id = $2", tripID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to remove collaborator", slog.Any("error", err))
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
