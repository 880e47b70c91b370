package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for trip chat persistence.
type Repository interface {
	CreateMessage(ctx context.Context, msg types.ChatMessage) (types.ChatMessage, error)
	ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]types.ChatMessage, error)
}

// DB is the slice of pgxpool.Pool this repository uses. Satisfied by the
// real pool and by pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RepositoryImpl struct holds the logger and database connection pool
type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DB
}

func NewRepository(pgpool DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateMessage inserts a message and returns it with the sender's username.
func (r *RepositoryImpl) CreateMessage(ctx context.Context, msg types.ChatMessage) (types.ChatMessage, error) {
	query := `
        WITH inserted AS (
            INSERT INTO chat_messages (trip_id, user_id, content, type)
            VALUES ($1, $2, $3, $4)
            RETURNING id, trip_id, user_id, content, type, created_at
        )
        SELECT i.id, i.trip_id, i.user_id, u.username, i.content, i.type, i.created_at
        FROM inserted i JOIN users u ON u.id = i.user_id`

	var m types.ChatMessage
	err := r.pgpool.QueryRow(ctx, query, msg.TripID, msg.UserID, msg.Content, msg.Type).
		Scan(&m.ID, &m.TripID, &m.UserID, &m.Username, &m.Content, &m.Type, &m.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create chat message", slog.Any("error", err))
		return types.ChatMessage{}, fmt.Errorf("failed to create chat message: %w", err)
	}
	return m, nil
}

// ListMessages returns a trip's most recent messages in chronological order.
func (r *RepositoryImpl) ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]types.ChatMessage, error) {
	query := `
        SELECT m.id, m.trip_id, m.user_id, u.username, m.content, m.type, m.created_at
        FROM (
            SELECT id, trip_id, user_id, content, type, created_at
            FROM chat_messages WHERE trip_id = $1
            ORDER BY created_at DESC LIMIT $2
        ) m
        JOIN users u ON u.id = m.user_id
        ORDER BY m.created_at`

	rows, err := r.pgpool.Query(ctx, query, tripID, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list chat messages", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		err := rows.Scan(&m.ID, &m.TripID, &m.UserID, &m.Username, &m.Content, &m.Type, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}
