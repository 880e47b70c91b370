package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/koinbeefs/IntelliTravel/app/db"
	"github.com/koinbeefs/IntelliTravel/config"
	"github.com/koinbeefs/IntelliTravel/internal/api/auth"
	"github.com/koinbeefs/IntelliTravel/internal/api/chat"
	"github.com/koinbeefs/IntelliTravel/internal/api/invite"
	"github.com/koinbeefs/IntelliTravel/internal/api/itinerary"
	"github.com/koinbeefs/IntelliTravel/internal/api/place"
	"github.com/koinbeefs/IntelliTravel/internal/api/planner"
	"github.com/koinbeefs/IntelliTravel/internal/api/preferences"
	"github.com/koinbeefs/IntelliTravel/internal/api/routing"
	"github.com/koinbeefs/IntelliTravel/internal/api/trip"
	"github.com/koinbeefs/IntelliTravel/internal/api/weather"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	AuthHandler        *auth.HandlerImpl
	TripHandler        *trip.HandlerImpl
	ItineraryHandler   *itinerary.HandlerImpl
	PreferencesHandler *preferences.HandlerImpl
	PlannerHandler     *planner.HandlerImpl
	ChatHandler        *chat.HandlerImpl
	InviteHandler      *invite.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// Initialize repositories
	authRepo := auth.NewRepository(pool, logger)
	tripRepo := trip.NewRepository(pool, logger)
	itineraryRepo := itinerary.NewRepository(pool, logger)
	prefsRepo := preferences.NewRepository(pool, logger)
	visitRepo := planner.NewPostgresVisitRepo(pool, logger)
	chatRepo := chat.NewRepository(pool, logger)
	inviteRepo := invite.NewRepository(pool, logger)

	// Initialize external providers
	routeProvider := routing.NewOSRMClient(cfg.Providers.OSRM.BaseURL, cfg.Providers.OSRM.Timeout, logger)
	placeService := place.NewNominatimService(place.Config{
		BaseURL:      cfg.Providers.Nominatim.BaseURL,
		UserAgent:    cfg.Providers.Nominatim.UserAgent,
		CountryCodes: cfg.Providers.Nominatim.CountryCodes,
		Timeout:      cfg.Providers.Nominatim.Timeout,
	}, logger)
	weatherService := weather.NewOpenWeatherService(weather.Config{
		BaseURL: cfg.Providers.OpenWeather.BaseURL,
		APIKey:  cfg.Providers.OpenWeather.APIKey,
		Timeout: cfg.Providers.OpenWeather.Timeout,
	}, logger)

	// Initialize services. The preferences service doubles as the planner's
	// preference source, and the planner is the preferences service's
	// analyzer, so the analyzer link is wired after both exist.
	authService := auth.NewService(authRepo, cfg.JWT, logger)
	prefsService := preferences.NewService(prefsRepo, nil, logger)
	plannerService := planner.NewService(prefsService, visitRepo, cfg.Planner.HistoryWindowMonths, logger)
	prefsService.SetAnalyzer(plannerService)

	tripService := trip.NewService(tripRepo, plannerService, itineraryRepo, logger)
	itineraryService := itinerary.NewService(itineraryRepo, tripRepo, routeProvider, weatherService, placeService, logger)
	inviteService := invite.NewService(inviteRepo, tripRepo, authRepo, logger)
	chatService := chat.NewService(chatRepo, inviteService, logger)

	return &Container{
		Config:             cfg,
		Logger:             logger,
		Pool:               pool,
		AuthHandler:        auth.NewHandlerImpl(authService, logger),
		TripHandler:        trip.NewHandlerImpl(tripService, logger),
		ItineraryHandler:   itinerary.NewHandlerImpl(itineraryService, logger),
		PreferencesHandler: preferences.NewHandlerImpl(prefsService, logger),
		PlannerHandler:     planner.NewHandlerImpl(plannerService, logger),
		ChatHandler:        chat.NewHandlerImpl(chatService, logger),
		InviteHandler:      invite.NewHandlerImpl(inviteService, logger),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
