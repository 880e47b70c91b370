package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

func setupChatRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepository(mockPool, logger), mockPool
}

func TestRepositoryImpl_CreateMessage(t *testing.T) {
	ctx := context.Background()
	tripID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupChatRepositoryTest(t)

		msgID := uuid.New()
		now := time.Now()
		mockPool.ExpectQuery("INSERT INTO chat_messages").
			WithArgs(tripID, userID, "hello", types.MessageText).
			WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "user_id", "username", "content", "type", "created_at"}).
				AddRow(msgID, tripID, userID, "rio", "hello", types.MessageText, now))

		msg, err := repo.CreateMessage(ctx, types.ChatMessage{
			TripID:  tripID,
			UserID:  userID,
			Content: "hello",
			Type:    types.MessageText,
		})
		require.NoError(t, err)
		assert.Equal(t, msgID, msg.ID)
		assert.Equal(t, "rio", msg.Username)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("insert failure", func(t *testing.T) {
		repo, mockPool := setupChatRepositoryTest(t)

		dbErr := errors.New("connection reset")
		mockPool.ExpectQuery("INSERT INTO chat_messages").
			WithArgs(tripID, userID, "hello", types.MessageText).
			WillReturnError(dbErr)

		_, err := repo.CreateMessage(ctx, types.ChatMessage{
			TripID:  tripID,
			UserID:  userID,
			Content: "hello",
			Type:    types.MessageText,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, dbErr))
		assert.Contains(t, err.Error(), "failed to create chat message")
	})
}

func TestRepositoryImpl_ListMessages(t *testing.T) {
	ctx := context.Background()
	tripID := uuid.New()

	t.Run("returns recent page in order", func(t *testing.T) {
		repo, mockPool := setupChatRepositoryTest(t)

		firstID := uuid.New()
		secondID := uuid.New()
		userID := uuid.New()
		base := time.Now().Add(-time.Hour)

		mockPool.ExpectQuery("FROM chat_messages WHERE trip_id").
			WithArgs(tripID, 100).
			WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "user_id", "username", "content", "type", "created_at"}).
				AddRow(firstID, tripID, userID, "rio", "first", types.MessageText, base).
				AddRow(secondID, tripID, userID, "rio", "second", types.MessageText, base.Add(time.Minute)))

		messages, err := repo.ListMessages(ctx, tripID, 100)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "second", messages[1].Content)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty thread", func(t *testing.T) {
		repo, mockPool := setupChatRepositoryTest(t)

		mockPool.ExpectQuery("FROM chat_messages WHERE trip_id").
			WithArgs(tripID, 100).
			WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "user_id", "username", "content", "type", "created_at"}))

		messages, err := repo.ListMessages(ctx, tripID, 100)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("query failure", func(t *testing.T) {
		repo, mockPool := setupChatRepositoryTest(t)

		mockPool.ExpectQuery("FROM chat_messages WHERE trip_id").
			WithArgs(tripID, 100).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ListMessages(ctx, tripID, 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list chat messages")
	})
}
