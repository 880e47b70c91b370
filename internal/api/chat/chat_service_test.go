package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// MockChatRepository is a mock implementation of Repository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, msg types.ChatMessage) (types.ChatMessage, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(types.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]types.ChatMessage, error) {
	args := m.Called(ctx, tripID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatMessage), args.Error(1)
}

// MockMembershipChecker is a mock implementation of MembershipChecker
type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) CanAccess(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tripID, userID)
	return args.Bool(0), args.Error(1)
}

func setupChatServiceTest() (*ServiceImpl, *MockChatRepository, *MockMembershipChecker) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockChatRepository)
	mockMembership := new(MockMembershipChecker)
	service := NewService(mockRepo, mockMembership, logger)
	return service, mockRepo, mockMembership
}

func TestServiceImpl_PostMessage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("member posts a message", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		mockMembership.On("CanAccess", ctx, tripID, userID).Return(true, nil).Once()
		mockRepo.On("CreateMessage", ctx, mock.MatchedBy(func(msg types.ChatMessage) bool {
			return msg.TripID == tripID && msg.UserID == userID &&
				msg.Content == "hello" && msg.Type == types.MessageText
		})).Return(types.ChatMessage{ID: uuid.New(), Content: "hello", Username: "rio"}, nil).Once()

		msg, err := service.PostMessage(ctx, userID, tripID, types.PostMessageRequest{Content: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "rio", msg.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty type defaults to text", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		mockMembership.On("CanAccess", ctx, tripID, userID).Return(true, nil).Once()
		mockRepo.On("CreateMessage", ctx, mock.MatchedBy(func(msg types.ChatMessage) bool {
			return msg.Type == types.MessageText
		})).Return(types.ChatMessage{}, nil).Once()

		_, err := service.PostMessage(ctx, userID, tripID, types.PostMessageRequest{Content: "hi", Type: ""})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-member cannot post", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		mockMembership.On("CanAccess", ctx, tripID, userID).Return(false, nil).Once()

		_, err := service.PostMessage(ctx, userID, tripID, types.PostMessageRequest{Content: "hello"})
		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "CreateMessage")
	})

	t.Run("membership check failure surfaces", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		checkErr := errors.New("trip lookup failed")
		mockMembership.On("CanAccess", ctx, tripID, userID).Return(false, checkErr).Once()

		_, err := service.PostMessage(ctx, userID, tripID, types.PostMessageRequest{Content: "hello"})
		assert.True(t, errors.Is(err, checkErr))
		mockRepo.AssertNotCalled(t, "CreateMessage")
	})
}

func TestServiceImpl_GetMessages(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("member reads capped history", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		history := []types.ChatMessage{
			{ID: uuid.New(), Content: "first"},
			{ID: uuid.New(), Content: "second"},
		}
		mockMembership.On("CanAccess", ctx, tripID, userID).Return(true, nil).Once()
		mockRepo.On("ListMessages", ctx, tripID, defaultHistoryLimit).Return(history, nil).Once()

		got, err := service.GetMessages(ctx, userID, tripID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-member cannot read", func(t *testing.T) {
		service, mockRepo, mockMembership := setupChatServiceTest()

		mockMembership.On("CanAccess", ctx, tripID, userID).Return(false, nil).Once()

		_, err := service.GetMessages(ctx, userID, tripID)
		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "ListMessages")
	})
}
