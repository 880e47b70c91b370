package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/koinbeefs/IntelliTravel/config"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// ErrInvalidCredentials covers both unknown emails and wrong passwords, so
// responses never reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service defines the business logic contract for authentication.
type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (types.User, error)
	Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (types.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, userID uuid.UUID) (types.User, error)
	LoginWithGoogle(ctx context.Context, googleID, email, name string) (types.LoginResponse, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	jwtCfg config.JWTConfig
}

// NewService creates a new auth service instance.
func NewService(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

// Register creates an account with a bcrypt password hash.
func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (types.User, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", req.Email))

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return types.User{}, fmt.Errorf("email already registered")
	} else if !errors.Is(err, types.ErrNotFound) {
		return types.User{}, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return types.User{}, fmt.Errorf("error creating user: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair. The
// refresh token is stored server-side and rotated on every refresh.
func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", req.Email))

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.LoginResponse{}, ErrInvalidCredentials
		}
		return types.LoginResponse{}, fmt.Errorf("error fetching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		l.WarnContext(ctx, "Password mismatch")
		return types.LoginResponse{}, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return types.LoginResponse{}, err
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	return resp, nil
}

// Refresh rotates a refresh token: the old one is revoked, a new pair issued.
func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (types.LoginResponse, error) {
	l := s.logger.With(slog.String("method", "Refresh"))

	userID, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.LoginResponse{}, ErrInvalidCredentials
		}
		return types.LoginResponse{}, fmt.Errorf("error resolving refresh token: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return types.LoginResponse{}, fmt.Errorf("error fetching user: %w", err)
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return types.LoginResponse{}, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		// The new pair is already issued; the stale token ages out at expiry.
		l.WarnContext(ctx, "Failed to revoke old refresh token", slog.Any("error", err))
	}

	return resp, nil
}

// Logout revokes the presented refresh token.
func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// GetUser returns the account for an authenticated user id.
func (s *ServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (types.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.User{}, err
		}
		return types.User{}, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}

// LoginWithGoogle resolves an OAuth identity to a local account and issues a
// token pair for it.
func (s *ServiceImpl) LoginWithGoogle(ctx context.Context, googleID, email, name string) (types.LoginResponse, error) {
	l := s.logger.With(slog.String("method", "LoginWithGoogle"), slog.String("email", email))

	user, err := s.repo.GetOrCreateGoogleUser(ctx, googleID, email, name)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve google user", slog.Any("error", err))
		return types.LoginResponse{}, fmt.Errorf("error resolving google user: %w", err)
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return types.LoginResponse{}, err
	}

	l.InfoContext(ctx, "Google login", slog.String("userID", user.ID.String()))
	return resp, nil
}

func (s *ServiceImpl) issueTokens(ctx context.Context, user types.User) (types.LoginResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return types.LoginResponse{}, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := time.Now().Add(s.jwtCfg.RefreshTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return types.LoginResponse{}, fmt.Errorf("error storing refresh token: %w", err)
	}

	return types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *ServiceImpl) generateAccessToken(user types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTTL)),
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}
