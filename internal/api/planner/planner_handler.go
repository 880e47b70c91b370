package planner

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/api"
	"github.com/koinbeefs/IntelliTravel/internal/api/auth"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	RecordVisit(w http.ResponseWriter, r *http.Request)
	GetVisitHistory(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new planner HandlerImpl instance.
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

// RecordVisit godoc
// @Summary      Record Visit
// @Description  Logs a completed place visit for later preference analysis.
// @Tags         Visits
// @Accept       json
// @Produce      json
// @Param        body body types.RecordVisitRequest true "Visit details"
// @Success      201 {object} types.TripVisit "Recorded visit"
// @Failure      400 {object} types.Response "Invalid body"
// @Security     BearerAuth
// @Router       /visits [post]
func (h *HandlerImpl) RecordVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RecordVisit"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.RecordVisitRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	visit := types.TripVisit{
		UserID:          userID,
		ItineraryID:     req.ItineraryID,
		PlaceID:         req.PlaceID,
		PlaceName:       req.PlaceName,
		PlaceCategory:   req.PlaceCategory,
		Lat:             req.Lat,
		Lng:             req.Lng,
		DurationMinutes: req.DurationMinutes,
		UserRating:      req.UserRating,
		UserNotes:       req.UserNotes,
	}
	if req.VisitedAt != nil {
		visit.VisitedAt = *req.VisitedAt
	}

	saved, err := h.service.RecordVisit(ctx, visit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to record visit", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to record visit")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, saved)
}

// GetVisitHistory godoc
// @Summary      Visit History
// @Description  Returns the user's visits inside the analysis window, newest first.
// @Tags         Visits
// @Produce      json
// @Success      200 {array} types.TripVisit "Visits"
// @Security     BearerAuth
// @Router       /visits [get]
func (h *HandlerImpl) GetVisitHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetVisitHistory"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	visits, err := h.service.GetVisitHistory(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch visit history", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch visit history")
		return
	}
	if visits == nil {
		visits = []types.TripVisit{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, visits)
}
