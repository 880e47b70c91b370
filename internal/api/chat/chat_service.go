package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// defaultHistoryLimit caps one page of chat history.
const defaultHistoryLimit = 100

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// MembershipChecker decides whether a user may read and post in a trip's
// chat thread.
type MembershipChecker interface {
	CanAccess(ctx context.Context, tripID, userID uuid.UUID) (bool, error)
}

// Service defines the business logic contract for trip chat.
type Service interface {
	PostMessage(ctx context.Context, userID, tripID uuid.UUID, req types.PostMessageRequest) (types.ChatMessage, error)
	GetMessages(ctx context.Context, userID, tripID uuid.UUID) ([]types.ChatMessage, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	membership MembershipChecker
}

// NewService creates a new chat service instance.
func NewService(repo Repository, membership MembershipChecker, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		membership: membership,
	}
}

func (s *ServiceImpl) requireMember(ctx context.Context, tripID, userID uuid.UUID) error {
	ok, err := s.membership.CanAccess(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrForbidden
	}
	return nil
}

// PostMessage appends a message to a trip's chat thread. Only the owner and
// accepted collaborators can post.
func (s *ServiceImpl) PostMessage(ctx context.Context, userID, tripID uuid.UUID, req types.PostMessageRequest) (types.ChatMessage, error) {
	l := s.logger.With(slog.String("method", "PostMessage"), slog.String("tripID", tripID.String()))

	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return types.ChatMessage{}, err
	}

	msgType := types.MessageType(req.Type)
	if msgType == "" {
		msgType = types.MessageText
	}

	msg, err := s.repo.CreateMessage(ctx, types.ChatMessage{
		TripID:  tripID,
		UserID:  userID,
		Content: req.Content,
		Type:    msgType,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to post message", slog.Any("error", err))
		return types.ChatMessage{}, fmt.Errorf("error posting message: %w", err)
	}
	return msg, nil
}

// GetMessages returns the trip's recent chat history in chronological order.
func (s *ServiceImpl) GetMessages(ctx context.Context, userID, tripID uuid.UUID) ([]types.ChatMessage, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, tripID, defaultHistoryLimit)
}
