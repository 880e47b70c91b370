package preferences

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/koinbeefs/IntelliTravel/internal/api"
	"github.com/koinbeefs/IntelliTravel/internal/api/auth"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetPreferences(w http.ResponseWriter, r *http.Request)
	UpdatePreferences(w http.ResponseWriter, r *http.Request)
	AnalyzeHistory(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new preferences HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// GetPreferences godoc
// @Summary      Get Preferences
// @Description  Returns the authenticated user's preference profile, creating defaults on first access.
// @Tags         Preferences
// @Produce      json
// @Success      200 {object} types.UserPreference "Preference profile"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /preferences [get]
func (h *HandlerImpl) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetPreferences"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	pref, err := h.service.GetUserPreference(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get preferences", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve preferences")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, pref)
}

// UpdatePreferences godoc
// @Summary      Update Preferences
// @Description  Applies a partial preference edit. Scores are clamped to [0,100].
// @Tags         Preferences
// @Accept       json
// @Produce      json
// @Param        body body types.UpdateUserPreferenceParams true "Fields to update"
// @Success      200 {object} types.UserPreference "Updated profile"
// @Failure      400 {object} types.Response "Invalid body"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /preferences [put]
func (h *HandlerImpl) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdatePreferences"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var params types.UpdateUserPreferenceParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pref, err := h.service.UpdatePreferences(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update preferences", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, pref)
}

// AnalyzeHistory godoc
// @Summary      Analyze Trip History
// @Description  Recomputes the preference profile from recorded visits and overwrites the stored scores.
// @Tags         Preferences
// @Produce      json
// @Success      200 {object} types.UserPreference "Recomputed profile"
// @Failure      400 {object} types.Response "No trip history to analyze"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /preferences/analyze [post]
func (h *HandlerImpl) AnalyzeHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "AnalyzeHistory"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	pref, err := h.service.AnalyzeAndApply(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNoHistory) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "No trip history to analyze")
			return
		}
		l.ErrorContext(ctx, "Failed to analyze history", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to analyze trip history")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message":     "Preferences updated based on history",
		"preferences": pref,
	})
}
