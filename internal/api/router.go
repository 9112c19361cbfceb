package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kdimtricp/cuetrainer/internal/logging"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
)

func NewRouter(h *Handlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.RequestMiddleware(m))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		// Any origin, echoed back so credentialed browser requests work.
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/ping", PingHandler)
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/videos", func(r chi.Router) {
			r.Post("/analyze", h.AnalyzeVideo)
			r.Get("/list", h.ListVideos)
			r.Get("/serve/{filename}", h.ServeVideo)
			r.Get("/{videoID}/attributes", h.VideoAttributes)
		})
		r.Post("/sessions/start", h.StartSession)
		r.Get("/sessions/history", h.SessionHistory)
		r.Post("/events/log", h.LogEvent)
	})

	return r
}
