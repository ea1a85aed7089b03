package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	allowedOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.HealthHandler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/", tournamentHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", tournamentHandler.CreateHandler)
		})

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/bracket", tournamentHandler.BracketHandler)
			r.Get("/standings", tournamentHandler.StandingsHandler)
			r.Get("/participants/{participantID}/matches", tournamentHandler.PlayerMatchesHandler)

			// Любой авторизованный пользователь; права проверяются в хендлере
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/participants", tournamentHandler.RegisterHandler)
				r.Delete("/participants/{participantID}", tournamentHandler.UnregisterHandler)
				r.Post("/participants/{participantID}/check-in", tournamentHandler.CheckInHandler)
			})

			// Только организатор турнира или админ
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(organizerOnly)

				r.Post("/registration/open", tournamentHandler.OpenRegistrationHandler)
				r.Post("/registration/close", tournamentHandler.CloseRegistrationHandler)
				r.Post("/start", tournamentHandler.StartHandler)
				r.Post("/cancel", tournamentHandler.CancelHandler)
				r.Post("/complete", tournamentHandler.CompleteHandler)

				r.Route("/matches/{matchID}", func(r chi.Router) {
					r.Post("/start", tournamentHandler.StartMatchHandler)
					r.Post("/result", tournamentHandler.ReportResultHandler)
					r.Post("/battle-royale-result", tournamentHandler.ReportBattleRoyaleResultHandler)
					r.Post("/forfeit", tournamentHandler.ForfeitHandler)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
}
