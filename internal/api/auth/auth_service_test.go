package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/koinbeefs/IntelliTravel/config"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// MockAuthRepository is a mock implementation of Repository
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (types.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockAuthRepository) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockAuthRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (types.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockAuthRepository) GetOrCreateGoogleUser(ctx context.Context, googleID, email, name string) (types.User, error) {
	args := m.Called(ctx, googleID, email, name)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockAuthRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepository) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthRepository) RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:  "test-secret",
		Issuer:     "intellitravel-test",
		Audience:   "intellitravel-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 720 * time.Hour,
	}
}

func setupAuthServiceTest() (*ServiceImpl, *MockAuthRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockAuthRepository)
	service := NewService(mockRepo, testJWTConfig(), logger)
	return service, mockRepo
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestServiceImpl_Register(t *testing.T) {
	ctx := context.Background()
	req := types.RegisterRequest{Username: "rio", Email: "rio@example.com", Password: "hunter22"}

	t.Run("success", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		created := types.User{ID: uuid.New(), Username: req.Username, Email: req.Email}
		mockRepo.On("GetUserByEmail", mock.Anything, req.Email).
			Return(types.User{}, types.ErrNotFound).Once()
		mockRepo.On("CreateUser", mock.Anything, req.Username, req.Email, mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) == nil
		})).Return(created, nil).Once()

		user, err := service.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("email already registered", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("GetUserByEmail", mock.Anything, req.Email).
			Return(types.User{ID: uuid.New(), Email: req.Email}, nil).Once()

		_, err := service.Register(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email already registered")
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("lookup failure", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		repoErr := errors.New("connection reset")
		mockRepo.On("GetUserByEmail", mock.Anything, req.Email).
			Return(types.User{}, repoErr).Once()

		_, err := service.Register(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		assert.Contains(t, err.Error(), "error checking existing user")
	})
}

func TestServiceImpl_Login(t *testing.T) {
	ctx := context.Background()
	password := "hunter22"

	t.Run("success issues token pair", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		user := types.User{
			ID:           uuid.New(),
			Username:     "rio",
			Email:        "rio@example.com",
			PasswordHash: mustHash(t, password),
		}
		mockRepo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything).
			Return(nil).Once()

		resp, err := service.Login(ctx, types.LoginRequest{Email: user.Email, Password: password})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		// The access token must be verifiable with the configured secret.
		parsed, err := jwt.ParseWithClaims(resp.AccessToken, &types.Claims{}, func(tok *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims, ok := parsed.Claims.(*types.Claims)
		require.True(t, ok)
		assert.Equal(t, user.ID.String(), claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		user := types.User{
			ID:           uuid.New(),
			Email:        "rio@example.com",
			PasswordHash: mustHash(t, password),
		}
		mockRepo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		_, err := service.Login(ctx, types.LoginRequest{Email: user.Email, Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "StoreRefreshToken")
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(types.User{}, types.ErrNotFound).Once()

		_, err := service.Login(ctx, types.LoginRequest{Email: "ghost@example.com", Password: password})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestServiceImpl_Refresh(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	oldToken := uuid.NewString()
	user := types.User{ID: userID, Username: "rio", Email: "rio@example.com"}

	t.Run("rotates the refresh token", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("GetRefreshToken", mock.Anything, oldToken).Return(userID, nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, userID, mock.MatchedBy(func(token string) bool {
			return token != oldToken
		}), mock.Anything).Return(nil).Once()
		mockRepo.On("RevokeRefreshToken", mock.Anything, oldToken).Return(nil).Once()

		resp, err := service.Refresh(ctx, oldToken)
		require.NoError(t, err)
		assert.NotEqual(t, oldToken, resp.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("revoke failure does not fail the refresh", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("GetRefreshToken", mock.Anything, oldToken).Return(userID, nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil).Once()
		mockRepo.On("RevokeRefreshToken", mock.Anything, oldToken).
			Return(errors.New("update failed")).Once()

		resp, err := service.Refresh(ctx, oldToken)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("GetRefreshToken", mock.Anything, oldToken).
			Return(uuid.Nil, types.ErrNotFound).Once()

		_, err := service.Refresh(ctx, oldToken)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "StoreRefreshToken")
	})
}

func TestServiceImpl_Logout(t *testing.T) {
	ctx := context.Background()
	token := uuid.NewString()

	t.Run("revokes the token", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		mockRepo.On("RevokeRefreshToken", mock.Anything, token).Return(nil).Once()

		require.NoError(t, service.Logout(ctx, token))
		mockRepo.AssertExpectations(t)
	})

	t.Run("revoke failure surfaces", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		repoErr := errors.New("update failed")
		mockRepo.On("RevokeRefreshToken", mock.Anything, token).Return(repoErr).Once()

		err := service.Logout(ctx, token)
		assert.True(t, errors.Is(err, repoErr))
	})
}

func TestServiceImpl_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves identity and issues tokens", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		user := types.User{ID: uuid.New(), Username: "rio", Email: "rio@example.com"}
		mockRepo.On("GetOrCreateGoogleUser", mock.Anything, "g-123", user.Email, "Rio").
			Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything).
			Return(nil).Once()

		resp, err := service.LoginWithGoogle(ctx, "g-123", user.Email, "Rio")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		mockRepo.AssertExpectations(t)
	})
}
