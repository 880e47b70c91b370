package invite

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/api"
	"github.com/koinbeefs/IntelliTravel/internal/api/auth"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Invite(w http.ResponseWriter, r *http.Request)
	ListCollaborators(w http.ResponseWriter, r *http.Request)
	AcceptInvite(w http.ResponseWriter, r *http.Request)
	RemoveCollaborator(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new invite HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || idStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerImpl) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAlreadyInvited):
		api.ErrorResponse(w, r, http.StatusConflict, "User is already a collaborator on this trip")
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "You do not have access to this trip")
	default:
		h.logger.ErrorContext(r.Context(), "Invite request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

// Invite godoc
// @Summary      Invite Collaborator
// @Description  Invites a user by email to collaborate on a trip.
// @Tags         Collaboration
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        body body types.InviteRequest true "Invitee email and role"
// @Success      201 {object} types.TripCollaborator "Pending invite"
// @Failure      404 {object} types.Response "No account with that email"
// @Failure      409 {object} types.Response "Already a collaborator"
// @Security     BearerAuth
// @Router       /trips/{tripID}/invites [post]
func (h *HandlerImpl) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	var req types.InviteRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	collaborator, err := h.service.Invite(ctx, userID, tripID, req.Email, types.CollaboratorRole(req.Role))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, collaborator)
}

// ListCollaborators godoc
// @Summary      List Collaborators
// @Description  Returns a trip's collaborators with their invite status.
// @Tags         Collaboration
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {array} types.TripCollaborator "Collaborators"
// @Security     BearerAuth
// @Router       /trips/{tripID}/invites [get]
func (h *HandlerImpl) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	collaborators, err := h.service.ListCollaborators(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if collaborators == nil {
		collaborators = []types.TripCollaborator{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, collaborators)
}

// AcceptInvite godoc
// @Summary      Accept Invite
// @Description  Accepts the caller's pending invite to a trip.
// @Tags         Collaboration
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.Response "Accepted"
// @Failure      404 {object} types.Response "No pending invite"
// @Security     BearerAuth
// @Router       /trips/{tripID}/invites/accept [post]
func (h *HandlerImpl) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	if err := h.service.AcceptInvite(ctx, userID, tripID); err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Invite accepted"})
}

// RemoveCollaborator godoc
// @Summary      Remove Collaborator
// @Description  Removes a collaborator from a trip. Owners remove anyone; collaborators remove themselves.
// @Tags         Collaboration
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        userID path string true "Collaborator user ID"
// @Success      200 {object} types.Response "Removed"
// @Security     BearerAuth
// @Router       /trips/{tripID}/invites/{userID} [delete]
func (h *HandlerImpl) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}
	targetID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.service.RemoveCollaborator(ctx, actorID, tripID, targetID); err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Collaborator removed"})
}
