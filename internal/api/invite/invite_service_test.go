package invite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// MockInviteRepository is a mock implementation of Repository
type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) CreateInvite(ctx context.Context, tripID, userID uuid.UUID, role types.CollaboratorRole) (types.TripCollaborator, error) {
	args := m.Called(ctx, tripID, userID, role)
	return args.Get(0).(types.TripCollaborator), args.Error(1)
}

func (m *MockInviteRepository) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]types.TripCollaborator, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TripCollaborator), args.Error(1)
}

func (m *MockInviteRepository) GetCollaborator(ctx context.Context, tripID, userID uuid.UUID) (types.TripCollaborator, error) {
	args := m.Called(ctx, tripID, userID)
	return args.Get(0).(types.TripCollaborator), args.Error(1)
}

func (m *MockInviteRepository) AcceptInvite(ctx context.Context, tripID, userID uuid.UUID) error {
	args := m.Called(ctx, tripID, userID)
	return args.Error(0)
}

func (m *MockInviteRepository) RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	args := m.Called(ctx, tripID, userID)
	return args.Error(0)
}

// MockTripGetter is a mock implementation of TripGetter
type MockTripGetter struct {
	mock.Mock
}

func (m *MockTripGetter) GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error) {
	args := m.Called(ctx, tripID)
	return args.Get(0).(types.Trip), args.Error(1)
}

// MockUserLookup is a mock implementation of UserLookup
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(types.User), args.Error(1)
}

func setupInviteServiceTest() (*ServiceImpl, *MockInviteRepository, *MockTripGetter, *MockUserLookup) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockInviteRepository)
	mockTrips := new(MockTripGetter)
	mockUsers := new(MockUserLookup)
	service := NewService(mockRepo, mockTrips, mockUsers, logger)
	return service, mockRepo, mockTrips, mockUsers
}

func TestServiceImpl_Invite(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	tripID := uuid.New()
	trip := types.Trip{ID: tripID, UserID: ownerID}

	t.Run("invites by email with viewer default", func(t *testing.T) {
		service, mockRepo, mockTrips, mockUsers := setupInviteServiceTest()

		invitee := types.User{ID: uuid.New(), Email: "friend@example.com"}
		created := types.TripCollaborator{
			TripID: tripID, UserID: invitee.ID,
			Role: types.RoleViewer, Status: types.InvitePending,
		}

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockUsers.On("GetUserByEmail", ctx, invitee.Email).Return(invitee, nil).Once()
		mockRepo.On("GetCollaborator", ctx, tripID, invitee.ID).
			Return(types.TripCollaborator{}, types.ErrNotFound).Once()
		mockRepo.On("CreateInvite", ctx, tripID, invitee.ID, types.RoleViewer).
			Return(created, nil).Once()

		collaborator, err := service.Invite(ctx, ownerID, tripID, invitee.Email, "")
		require.NoError(t, err)
		assert.Equal(t, types.InvitePending, collaborator.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("only the owner can invite", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()

		_, err := service.Invite(ctx, uuid.New(), tripID, "friend@example.com", "")
		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "CreateInvite")
	})

	t.Run("inviting the owner", func(t *testing.T) {
		service, mockRepo, mockTrips, mockUsers := setupInviteServiceTest()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockUsers.On("GetUserByEmail", ctx, "owner@example.com").
			Return(types.User{ID: ownerID, Email: "owner@example.com"}, nil).Once()

		_, err := service.Invite(ctx, ownerID, tripID, "owner@example.com", "")
		assert.ErrorIs(t, err, ErrAlreadyInvited)
		mockRepo.AssertNotCalled(t, "CreateInvite")
	})

	t.Run("existing collaborator", func(t *testing.T) {
		service, mockRepo, mockTrips, mockUsers := setupInviteServiceTest()

		invitee := types.User{ID: uuid.New(), Email: "friend@example.com"}
		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockUsers.On("GetUserByEmail", ctx, invitee.Email).Return(invitee, nil).Once()
		mockRepo.On("GetCollaborator", ctx, tripID, invitee.ID).
			Return(types.TripCollaborator{TripID: tripID, UserID: invitee.ID}, nil).Once()

		_, err := service.Invite(ctx, ownerID, tripID, invitee.Email, "")
		assert.ErrorIs(t, err, ErrAlreadyInvited)
		mockRepo.AssertNotCalled(t, "CreateInvite")
	})

	t.Run("unknown email", func(t *testing.T) {
		service, mockRepo, mockTrips, mockUsers := setupInviteServiceTest()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockUsers.On("GetUserByEmail", ctx, "ghost@example.com").
			Return(types.User{}, types.ErrNotFound).Once()

		_, err := service.Invite(ctx, ownerID, tripID, "ghost@example.com", "")
		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertNotCalled(t, "CreateInvite")
	})
}

func TestServiceImpl_CanAccess(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	tripID := uuid.New()
	trip := types.Trip{ID: tripID, UserID: ownerID}

	t.Run("owner always has access", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()

		ok, err := service.CanAccess(ctx, tripID, ownerID)
		require.NoError(t, err)
		assert.True(t, ok)
		mockRepo.AssertNotCalled(t, "GetCollaborator")
	})

	t.Run("accepted collaborator has access", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		memberID := uuid.New()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockRepo.On("GetCollaborator", ctx, tripID, memberID).
			Return(types.TripCollaborator{Status: types.InviteAccepted}, nil).Once()

		ok, err := service.CanAccess(ctx, tripID, memberID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("pending invite has no access yet", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		memberID := uuid.New()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockRepo.On("GetCollaborator", ctx, tripID, memberID).
			Return(types.TripCollaborator{Status: types.InvitePending}, nil).Once()

		ok, err := service.CanAccess(ctx, tripID, memberID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stranger has no access", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		strangerID := uuid.New()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockRepo.On("GetCollaborator", ctx, tripID, strangerID).
			Return(types.TripCollaborator{}, types.ErrNotFound).Once()

		ok, err := service.CanAccess(ctx, tripID, strangerID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestServiceImpl_RemoveCollaborator(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	tripID := uuid.New()
	trip := types.Trip{ID: tripID, UserID: ownerID}

	t.Run("owner removes anyone", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		targetID := uuid.New()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockRepo.On("RemoveCollaborator", ctx, tripID, targetID).Return(nil).Once()

		require.NoError(t, service.RemoveCollaborator(ctx, ownerID, tripID, targetID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("collaborator removes themselves", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()
		memberID := uuid.New()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()
		mockRepo.On("RemoveCollaborator", ctx, tripID, memberID).Return(nil).Once()

		require.NoError(t, service.RemoveCollaborator(ctx, memberID, tripID, memberID))
	})

	t.Run("collaborator cannot remove others", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupInviteServiceTest()

		mockTrips.On("GetTrip", ctx, tripID).Return(trip, nil).Once()

		err := service.RemoveCollaborator(ctx, uuid.New(), tripID, uuid.New())
		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "RemoveCollaborator")
	})
}
