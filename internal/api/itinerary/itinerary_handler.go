package itinerary

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/api"
	"github.com/koinbeefs/IntelliTravel/internal/api/auth"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateEntry(w http.ResponseWriter, r *http.Request)
	UpdateEntry(w http.ResponseWriter, r *http.Request)
	DeleteEntry(w http.ResponseWriter, r *http.Request)
	ListByTrip(w http.ResponseWriter, r *http.Request)
	CalculateRoute(w http.ResponseWriter, r *http.Request)
	RouteDetails(w http.ResponseWriter, r *http.Request)
	SearchPlaces(w http.ResponseWriter, r *http.Request)
	SuggestPlaces(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new itinerary HandlerImpl instance.
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
	case errors.Is(err, types.ErrInsufficientStops):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Trip needs at least 2 locations to calculate a route")
	case errors.Is(err, types.ErrRouteUnavailable):
		api.ErrorResponse(w, r, http.StatusBadGateway, "Could not calculate route")
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "You do not have access to this trip")
	default:
		h.logger.ErrorContext(r.Context(), "Itinerary request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

// CreateEntry godoc
// @Summary      Add Itinerary Entry
// @Description  Adds a stop to a trip, enriched with weather and nearby gas stations when available.
// @Tags         Itineraries
// @Accept       json
// @Produce      json
// @Param        body body types.CreateItineraryRequest true "Entry details"
// @Success      201 {object} types.Itinerary "Created entry"
// @Failure      400 {object} types.Response "Invalid body"
// @Failure      403 {object} types.Response "Not the trip owner"
// @Security     BearerAuth
// @Router       /itineraries [post]
func (h *HandlerImpl) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.CreateItineraryRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.CreateEntry(ctx, userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, entry)
}

// UpdateEntry godoc
// @Summary      Update Itinerary Entry
// @Description  Edits an entry's schedule fields. Computed fields are not writable.
// @Tags         Itineraries
// @Accept       json
// @Produce      json
// @Param        entryID path string true "Entry ID"
// @Param        body body types.UpdateItineraryParams true "Fields to update"
// @Success      200 {object} types.Itinerary "Updated entry"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /itineraries/{entryID} [put]
func (h *HandlerImpl) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	entryID, ok := h.pathID(w, r, "entryID")
	if !ok {
		return
	}

	var params types.UpdateItineraryParams
	if err := api.DecodeAndValidate(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.UpdateEntry(ctx, userID, entryID, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary      Delete Itinerary Entry
// @Description  Removes one stop from a trip.
// @Tags         Itineraries
// @Produce      json
// @Param        entryID path string true "Entry ID"
// @Success      200 {object} types.Response "Deleted"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /itineraries/{entryID} [delete]
func (h *HandlerImpl) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	entryID, ok := h.pathID(w, r, "entryID")
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(ctx, userID, entryID); err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Itinerary entry deleted"})
}

// ListByTrip godoc
// @Summary      List Trip Itinerary
// @Description  Returns a trip's entries ordered by day and position.
// @Tags         Itineraries
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {array} types.Itinerary "Entries"
// @Failure      403 {object} types.Response "Not the owner"
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/itineraries [get]
func (h *HandlerImpl) ListByTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	entries, err := h.service.ListByTrip(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*types.Itinerary{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, entries)
}

// CalculateRoute godoc
// @Summary      Calculate Route
// @Description  Computes the route over the trip's stops and persists geometry plus per-entry leg data.
// @Tags         Itineraries
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.CalculateRouteResponse "Route and updated entries"
// @Failure      400 {object} types.Response "Fewer than 2 stops"
// @Failure      502 {object} types.Response "Routing provider unavailable"
// @Security     BearerAuth
// @Router       /trips/{tripID}/calculate-route [post]
func (h *HandlerImpl) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	resp, err := h.service.CalculateRoute(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// RouteDetails godoc
// @Summary      Route Details
// @Description  Computes the route plus speed estimates and totals, without persisting anything.
// @Tags         Itineraries
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.RouteDetailsResponse "Route details"
// @Failure      400 {object} types.Response "Fewer than 2 stops"
// @Failure      502 {object} types.Response "Routing provider unavailable"
// @Security     BearerAuth
// @Router       /trips/{tripID}/route-details [get]
func (h *HandlerImpl) RouteDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	resp, err := h.service.RouteDetails(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// SearchPlaces godoc
// @Summary      Search Places
// @Description  Searches the place directory biased around the trip center.
// @Tags         Places
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        q query string true "Search query"
// @Success      200 {array} types.Place "Results"
// @Security     BearerAuth
// @Router       /trips/{tripID}/places/search [get]
func (h *HandlerImpl) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	places, err := h.service.SearchPlaces(ctx, userID, tripID, query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if places == nil {
		places = []types.Place{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

// SuggestPlaces godoc
// @Summary      Suggest Places
// @Description  Returns nearby suggestions centered on the midpoint of the trip's stops.
// @Tags         Places
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        categories query string false "Comma-separated categories"
// @Success      200 {array} types.Place "Suggestions"
// @Security     BearerAuth
// @Router       /trips/{tripID}/places/suggest [get]
func (h *HandlerImpl) SuggestPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, ok := h.pathID(w, r, "tripID")
	if !ok {
		return
	}

	var categories []string
	if raw := strings.TrimSpace(r.URL.Query().Get("categories")); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}

	places, err := h.service.SuggestPlaces(ctx, userID, tripID, categories...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if places == nil {
		places = []types.Place{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, places)
}
