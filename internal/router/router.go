package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/koinbeefs/IntelliTravel/internal/container"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Container              *container.Container
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	c := cfg.Container
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public Auth Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", c.AuthHandler.Register)
			r.Post("/auth/login", c.AuthHandler.Login)
			r.Post("/auth/refresh", c.AuthHandler.Refresh)
			r.Get("/auth/google", c.AuthHandler.BeginGoogleAuth)
			r.Get("/auth/google/callback", c.AuthHandler.GoogleCallback)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", c.AuthHandler.Logout)
			r.Get("/user", c.AuthHandler.GetCurrentUser)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", c.TripHandler.GetTrips)
				r.Post("/", c.TripHandler.CreateTrip)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", c.TripHandler.GetTrip)
					r.Put("/", c.TripHandler.UpdateTrip)
					r.Delete("/", c.TripHandler.DeleteTrip)
					r.Post("/activate", c.TripHandler.ActivateTrip)
					r.Get("/recommendations", c.TripHandler.GetRecommendations)

					r.Get("/itineraries", c.ItineraryHandler.ListByTrip)
					r.Post("/calculate-route", c.ItineraryHandler.CalculateRoute)
					r.Get("/route-details", c.ItineraryHandler.RouteDetails)
					r.Get("/places/search", c.ItineraryHandler.SearchPlaces)
					r.Get("/places/suggest", c.ItineraryHandler.SuggestPlaces)

					r.Get("/chat", c.ChatHandler.GetMessages)
					r.Post("/chat", c.ChatHandler.PostMessage)

					r.Get("/invites", c.InviteHandler.ListCollaborators)
					r.Post("/invites", c.InviteHandler.Invite)
					r.Post("/invites/accept", c.InviteHandler.AcceptInvite)
					r.Delete("/invites/{userID}", c.InviteHandler.RemoveCollaborator)
				})
			})

			r.Route("/itineraries", func(r chi.Router) {
				r.Post("/", c.ItineraryHandler.CreateEntry)
				r.Put("/{entryID}", c.ItineraryHandler.UpdateEntry)
				r.Delete("/{entryID}", c.ItineraryHandler.DeleteEntry)
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", c.PreferencesHandler.GetPreferences)
				r.Put("/", c.PreferencesHandler.UpdatePreferences)
				r.Post("/analyze", c.PreferencesHandler.AnalyzeHistory)
			})

			r.Route("/visits", func(r chi.Router) {
				r.Get("/", c.PlannerHandler.GetVisitHistory)
				r.Post("/", c.PlannerHandler.RecordVisit)
			})
		})
	})

	return r
}
