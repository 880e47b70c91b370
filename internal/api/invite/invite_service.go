package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// ErrAlreadyInvited is returned when the invited user already has a
// collaborator row for the trip.
var ErrAlreadyInvited = errors.New("user already invited")

// TripGetter loads trips for ownership checks.
type TripGetter interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error)
}

// UserLookup resolves invite emails to accounts.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
}

// Service defines the business logic contract for trip sharing.
type Service interface {
	Invite(ctx context.Context, inviterID, tripID uuid.UUID, email string, role types.CollaboratorRole) (types.TripCollaborator, error)
	ListCollaborators(ctx context.Context, userID, tripID uuid.UUID) ([]types.TripCollaborator, error)
	AcceptInvite(ctx context.Context, userID, tripID uuid.UUID) error
	RemoveCollaborator(ctx context.Context, actorID, tripID, targetID uuid.UUID) error
	CanAccess(ctx context.Context, tripID, userID uuid.UUID) (bool, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	trips  TripGetter
	users  UserLookup
}

// NewService creates a new invite service instance.
func NewService(repo Repository, trips TripGetter, users UserLookup, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		trips:  trips,
		users:  users,
	}
}

// Invite adds a user to a trip by email. Only the trip owner can invite, and
// the owner cannot be invited to their own trip.
func (s *ServiceImpl) Invite(ctx context.Context, inviterID, tripID uuid.UUID, email string, role types.CollaboratorRole) (types.TripCollaborator, error) {
	l := s.logger.With(slog.String("method", "Invite"), slog.String("tripID", tripID.String()))

	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return types.TripCollaborator{}, err
	}
	if trip.UserID != inviterID {
		return types.TripCollaborator{}, types.ErrForbidden
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return types.TripCollaborator{}, err
	}
	if user.ID == trip.UserID {
		return types.TripCollaborator{}, ErrAlreadyInvited
	}

	if _, err := s.repo.GetCollaborator(ctx, tripID, user.ID); err == nil {
		return types.TripCollaborator{}, ErrAlreadyInvited
	} else if !errors.Is(err, types.ErrNotFound) {
		return types.TripCollaborator{}, fmt.Errorf("error checking collaborator: %w", err)
	}

	if role == "" {
		role = types.RoleViewer
	}

	collaborator, err := s.repo.CreateInvite(ctx, tripID, user.ID, role)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create invite", slog.Any("error", err))
		return types.TripCollaborator{}, fmt.Errorf("error creating invite: %w", err)
	}

	l.InfoContext(ctx, "Collaborator invited",
		slog.String("userID", user.ID.String()),
		slog.String("role", string(role)))
	return collaborator, nil
}

// ListCollaborators returns a trip's collaborators to its owner or any
// member.
func (s *ServiceImpl) ListCollaborators(ctx context.Context, userID, tripID uuid.UUID) ([]types.TripCollaborator, error) {
	ok, err := s.CanAccess(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrForbidden
	}
	return s.repo.ListCollaborators(ctx, tripID)
}

// AcceptInvite accepts the caller's own pending invite.
func (s *ServiceImpl) AcceptInvite(ctx context.Context, userID, tripID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "AcceptInvite"), slog.String("tripID", tripID.String()))

	if err := s.repo.AcceptInvite(ctx, tripID, userID); err != nil {
		return err
	}

	l.InfoContext(ctx, "Invite accepted", slog.String("userID", userID.String()))
	return nil
}

// RemoveCollaborator removes a collaborator. The trip owner can remove
// anyone; a collaborator can only remove themselves.
func (s *ServiceImpl) RemoveCollaborator(ctx context.Context, actorID, tripID, targetID uuid.UUID) error {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.UserID != actorID && actorID != targetID {
		return types.ErrForbidden
	}
	return s.repo.RemoveCollaborator(ctx, tripID, targetID)
}

// CanAccess reports whether a user may read a trip's shared surfaces: the
// owner always can, collaborators once their invite is accepted.
func (s *ServiceImpl) CanAccess(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return false, err
	}
	if trip.UserID == userID {
		return true, nil
	}

	collaborator, err := s.repo.GetCollaborator(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return collaborator.Status == types.InviteAccepted, nil
}
