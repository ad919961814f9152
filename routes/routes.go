package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/footmatch/handlers"
	"github.com/Dosada05/footmatch/middleware"
	"github.com/Dosada05/footmatch/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Results   *handlers.ResultsHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Get("/ws/matches/{matchID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(chiMiddleware.Timeout(60 * time.Second))

		r.Get("/matches/{matchID}/results", h.Results.GetResults)

		r.Route("/operator", func(r chi.Router) {
			r.Use(middleware.Authorize(string(models.RoleOperator)))

			r.Post("/submit-results", h.Results.SubmitResults)
			r.Get("/matches/{matchID}/results/draft", h.Results.GetDraft)
			r.Get("/matches/{matchID}/results/report", h.Results.DownloadReport)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
