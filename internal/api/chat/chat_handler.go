package chat

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
	PostMessage(w http.ResponseWriter, r *http.Request)
	GetMessages(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new chat HandlerImpl instance.
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

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "You are not a member of this trip")
	default:
		h.logger.ErrorContext(r.Context(), "Chat request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

// PostMessage godoc
// @Summary      Post Chat Message
// @Description  Appends a message to a trip's chat thread.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        body body types.PostMessageRequest true "Message"
// @Success      201 {object} types.ChatMessage "Posted message"
// @Failure      403 {object} types.Response "Not a member"
// @Security     BearerAuth
// @Router       /trips/{tripID}/chat [post]
func (h *HandlerImpl) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	var req types.PostMessageRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.PostMessage(ctx, userID, tripID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, msg)
}

// GetMessages godoc
// @Summary      Get Chat Messages
// @Description  Returns the trip's recent chat history in chronological order.
// @Tags         Chat
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {array} types.ChatMessage "Messages"
// @Failure      403 {object} types.Response "Not a member"
// @Security     BearerAuth
// @Router       /trips/{tripID}/chat [get]
func (h *HandlerImpl) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	messages, err := h.service.GetMessages(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []types.ChatMessage{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, messages)
}
