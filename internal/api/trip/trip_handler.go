package trip

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
	CreateTrip(w http.ResponseWriter, r *http.Request)
	GetTrips(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
	UpdateTrip(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
	ActivateTrip(w http.ResponseWriter, r *http.Request)
	GetRecommendations(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new trip HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// userID extracts the authenticated user id or writes the error response.
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

// tripID extracts the trip id path parameter or writes the error response.
func (h *HandlerImpl) tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return uuid.Nil, false
	}
	return id, true
}

// writeTripError maps service errors onto HTTP statuses shared by every
// trip endpoint.
func (h *HandlerImpl) writeTripError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "You do not have access to this trip")
	default:
		h.logger.ErrorContext(r.Context(), "Trip request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

// CreateTrip godoc
// @Summary      Create Trip
// @Description  Creates a trip. Automatic trips get a generated itinerary.
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        body body types.CreateTripRequest true "Trip details"
// @Success      201 {object} types.Trip "Created trip"
// @Failure      400 {object} types.Response "Invalid body"
// @Security     BearerAuth
// @Router       /trips [post]
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateTrip"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.CreateTripRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.CreateTrip(ctx, userID, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Failed to create trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// GetTrips godoc
// @Summary      List Trips
// @Description  Returns the authenticated user's trips, newest first.
// @Tags         Trips
// @Produce      json
// @Success      200 {array} types.Trip "Trips"
// @Security     BearerAuth
// @Router       /trips [get]
func (h *HandlerImpl) GetTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	trips, err := h.service.GetTrips(ctx, userID)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}
	if trips == nil {
		trips = []types.Trip{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// GetTrip godoc
// @Summary      Get Trip
// @Description  Returns one trip the user owns, with its itinerary count.
// @Tags         Trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.Trip "Trip"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [get]
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	trip, err := h.service.GetTrip(ctx, userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// UpdateTrip godoc
// @Summary      Update Trip
// @Description  Applies a partial edit to a trip the user owns.
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        body body types.UpdateTripParams true "Fields to update"
// @Success      200 {object} types.Trip "Updated trip"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [put]
func (h *HandlerImpl) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	var params types.UpdateTripParams
	if err := api.DecodeAndValidate(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.UpdateTrip(ctx, userID, tripID, params)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// DeleteTrip godoc
// @Summary      Delete Trip
// @Description  Deletes a trip the user owns along with its itinerary.
// @Tags         Trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.Response "Deleted"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [delete]
func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTrip(ctx, userID, tripID); err != nil {
		h.writeTripError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Trip deleted"})
}

// ActivateTrip godoc
// @Summary      Activate Trip
// @Description  Makes one trip the user's active trip; all others deactivate.
// @Tags         Trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.Trip "Activated trip"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/activate [post]
func (h *HandlerImpl) ActivateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	trip, err := h.service.ActivateTrip(ctx, userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// GetRecommendations godoc
// @Summary      Trip Recommendations
// @Description  Runs the preference scheduler for the trip without persisting anything.
// @Tags         Trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} map[string][]types.DraftStop "Draft stops"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/recommendations [get]
func (h *HandlerImpl) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	stops, err := h.service.GetRecommendations(ctx, userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}
	if stops == nil {
		stops = []types.DraftStop{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string][]types.DraftStop{"recommendations": stops})
}
