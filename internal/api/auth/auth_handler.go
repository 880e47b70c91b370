package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"github.com/koinbeefs/IntelliTravel/internal/api"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	GetCurrentUser(w http.ResponseWriter, r *http.Request)
	BeginGoogleAuth(w http.ResponseWriter, r *http.Request)
	GoogleCallback(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new auth HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates a new account.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Account details"
// @Success      201 {object} types.User "Created account"
// @Failure      400 {object} types.Response "Invalid body"
// @Failure      409 {object} types.Response "Email already registered"
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		if err.Error() == "email already registered" {
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
			return
		}
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary      Login
// @Description  Verifies credentials and returns an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.LoginResponse "Token pair"
// @Failure      400 {object} types.Response "Invalid body"
// @Failure      401 {object} types.Response "Invalid credentials"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Refresh godoc
// @Summary      Refresh Tokens
// @Description  Rotates a refresh token into a fresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.LoginResponse "New token pair"
// @Failure      401 {object} types.Response "Invalid refresh token"
// @Router       /auth/refresh [post]
func (h *HandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Refresh"))

	var req types.RefreshTokenRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "Refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to refresh session")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented refresh token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.Response "Logged out"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	var req types.RefreshTokenRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Logged out"})
}

// GetCurrentUser godoc
// @Summary      Current User
// @Description  Returns the authenticated user's account.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.User "Account"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /user [get]
func (h *HandlerImpl) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetCurrentUser"))

	userIDStr, ok := GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// BeginGoogleAuth godoc
// @Summary      Google OAuth Begin
// @Description  Redirects to Google's consent screen.
// @Tags         Auth
// @Router       /auth/google [get]
func (h *HandlerImpl) BeginGoogleAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, r)
}

// GoogleCallback godoc
// @Summary      Google OAuth Callback
// @Description  Completes the OAuth flow and returns a token pair for the linked account.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.LoginResponse "Token pair"
// @Failure      401 {object} types.Response "OAuth failed"
// @Router       /auth/google/callback [get]
func (h *HandlerImpl) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GoogleCallback"))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "OAuth completion failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Google authentication failed")
		return
	}

	name := gothUser.Name
	if name == "" {
		name = gothUser.NickName
	}

	resp, err := h.service.LoginWithGoogle(ctx, gothUser.UserID, gothUser.Email, name)
	if err != nil {
		l.ErrorContext(ctx, "Google login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to complete Google login")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
