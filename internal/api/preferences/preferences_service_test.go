package preferences

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// MockPreferencesRepository is a mock implementation of Repository
type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserPreference, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.UserPreference), args.Error(1)
}

func (m *MockPreferencesRepository) Create(ctx context.Context, pref types.UserPreference) (types.UserPreference, error) {
	args := m.Called(ctx, pref)
	return args.Get(0).(types.UserPreference), args.Error(1)
}

func (m *MockPreferencesRepository) Update(ctx context.Context, userID uuid.UUID, params types.UpdateUserPreferenceParams) error {
	args := m.Called(ctx, userID, params)
	return args.Error(0)
}

func (m *MockPreferencesRepository) ApplyAnalysis(ctx context.Context, userID uuid.UUID, update types.PreferenceUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

// MockHistoryAnalyzer is a mock implementation of HistoryAnalyzer
type MockHistoryAnalyzer struct {
	mock.Mock
}

func (m *MockHistoryAnalyzer) AnalyzeHistory(ctx context.Context, userID uuid.UUID) (types.PreferenceUpdate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.PreferenceUpdate), args.Error(1)
}

func setupPreferencesServiceTest() (*ServiceImpl, *MockPreferencesRepository, *MockHistoryAnalyzer) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockPreferencesRepository)
	mockAnalyzer := new(MockHistoryAnalyzer)
	service := NewService(mockRepo, mockAnalyzer, logger)
	return service, mockRepo, mockAnalyzer
}

func TestServiceImpl_GetUserPreference(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns stored profile", func(t *testing.T) {
		service, mockRepo, _ := setupPreferencesServiceTest()

		stored := types.DefaultPreferences(userID)
		stored.PreferenceCoffee = 90
		mockRepo.On("GetByUserID", ctx, userID).Return(stored, nil).Once()

		pref, err := service.GetUserPreference(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 90, pref.PreferenceCoffee)
		mockRepo.AssertExpectations(t)
	})

	t.Run("creates defaults on first access", func(t *testing.T) {
		service, mockRepo, _ := setupPreferencesServiceTest()

		mockRepo.On("GetByUserID", ctx, userID).
			Return(types.UserPreference{}, types.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(p types.UserPreference) bool {
			return p.UserID == userID &&
				p.PreferenceRestaurant == types.DefaultCategoryScore &&
				p.AvgHoursPerStop == types.DefaultAvgHoursPerStop &&
				p.PreferredTransit == types.TransitCar
		})).Return(types.DefaultPreferences(userID), nil).Once()

		pref, err := service.GetUserPreference(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, types.DefaultCategoryScore, pref.PreferenceNature)
		mockRepo.AssertExpectations(t)
	})

	t.Run("fetch failure surfaces", func(t *testing.T) {
		service, mockRepo, _ := setupPreferencesServiceTest()

		repoErr := errors.New("connection reset")
		mockRepo.On("GetByUserID", ctx, userID).
			Return(types.UserPreference{}, repoErr).Once()

		_, err := service.GetUserPreference(ctx, userID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		assert.Contains(t, err.Error(), "error fetching preferences")
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestServiceImpl_UpdatePreferences(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	coffee := 85
	params := types.UpdateUserPreferenceParams{PreferenceCoffee: &coffee}

	t.Run("applies partial edit", func(t *testing.T) {
		service, mockRepo, _ := setupPreferencesServiceTest()

		stored := types.DefaultPreferences(userID)
		updated := stored
		updated.PreferenceCoffee = coffee

		mockRepo.On("GetByUserID", ctx, userID).Return(stored, nil).Once()
		mockRepo.On("Update", ctx, userID, params).Return(nil).Once()
		mockRepo.On("GetByUserID", ctx, userID).Return(updated, nil).Once()

		pref, err := service.UpdatePreferences(ctx, userID, params)
		require.NoError(t, err)
		assert.Equal(t, coffee, pref.PreferenceCoffee)
		mockRepo.AssertExpectations(t)
	})

	t.Run("update failure surfaces", func(t *testing.T) {
		service, mockRepo, _ := setupPreferencesServiceTest()

		mockRepo.On("GetByUserID", ctx, userID).Return(types.DefaultPreferences(userID), nil).Once()
		mockRepo.On("Update", ctx, userID, params).Return(errors.New("update failed")).Once()

		_, err := service.UpdatePreferences(ctx, userID, params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error updating preferences")
	})
}

func TestServiceImpl_AnalyzeAndApply(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("recomputes and overwrites scores", func(t *testing.T) {
		service, mockRepo, mockAnalyzer := setupPreferencesServiceTest()

		update := types.PreferenceUpdate{
			Scores: map[types.Category]int{
				types.CategoryRestaurant: 100,
				types.CategoryCoffee:     40,
			},
			AvgHoursPerStop: 2,
		}
		recomputed := types.DefaultPreferences(userID)
		recomputed.PreferenceRestaurant = 100
		recomputed.PreferenceCoffee = 40
		recomputed.AvgHoursPerStop = 2

		mockAnalyzer.On("AnalyzeHistory", mock.Anything, userID).Return(update, nil).Once()
		mockRepo.On("GetByUserID", mock.Anything, userID).Return(types.DefaultPreferences(userID), nil).Once()
		mockRepo.On("ApplyAnalysis", mock.Anything, userID, update).Return(nil).Once()
		mockRepo.On("GetByUserID", mock.Anything, userID).Return(recomputed, nil).Once()

		pref, err := service.AnalyzeAndApply(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 100, pref.PreferenceRestaurant)
		assert.Equal(t, 2, pref.AvgHoursPerStop)
		mockRepo.AssertExpectations(t)
		mockAnalyzer.AssertExpectations(t)
	})

	t.Run("empty history leaves profile untouched", func(t *testing.T) {
		service, mockRepo, mockAnalyzer := setupPreferencesServiceTest()

		mockAnalyzer.On("AnalyzeHistory", mock.Anything, userID).
			Return(types.PreferenceUpdate{}, types.ErrNoHistory).Once()

		_, err := service.AnalyzeAndApply(ctx, userID)
		assert.ErrorIs(t, err, types.ErrNoHistory)
		mockRepo.AssertNotCalled(t, "ApplyAnalysis")
	})

	t.Run("analyzer failure surfaces", func(t *testing.T) {
		service, mockRepo, mockAnalyzer := setupPreferencesServiceTest()

		mockAnalyzer.On("AnalyzeHistory", mock.Anything, userID).
			Return(types.PreferenceUpdate{}, errors.New("visit query failed")).Once()

		_, err := service.AnalyzeAndApply(ctx, userID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error analyzing history")
		mockRepo.AssertNotCalled(t, "ApplyAnalysis")
	})
}
