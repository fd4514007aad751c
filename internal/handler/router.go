package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/session"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	sessionHandler  *SessionHandler
	analysisHandler *AnalysisHandler
	insightsHandler *InsightsHandler
	exportHandler   *ExportHandler
	healthHandler   *HealthHandler
	corsConfig      middleware.CORSConfig
}

// NewRouter wires every handler over one session manager
func NewRouter(
	sessions *session.Manager,
	maxUploadBytes int64,
	writeTimeout time.Duration,
	feed *notify.Recorder,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		sessionHandler:  NewSessionHandler(sessions, maxUploadBytes, writeTimeout, feed),
		analysisHandler: NewAnalysisHandler(sessions),
		insightsHandler: NewInsightsHandler(sessions),
		exportHandler:   NewExportHandler(sessions),
		healthHandler:   healthHandler,
		corsConfig:      corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CorrelationID,
		middleware.Logging,
		middleware.Recovery,
		middleware.CORS(rt.corsConfig),
		chimw.Compress(5),
	)

	r.Get("/health", rt.healthHandler.Health)
	r.Get("/ready", rt.healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", rt.insightsHandler.Models)

		r.Post("/sessions", rt.sessionHandler.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", rt.sessionHandler.Get)
			r.Delete("/", rt.sessionHandler.Delete)
			r.Get("/wait", rt.sessionHandler.Wait)
			r.Post("/refresh", rt.sessionHandler.Refresh)
			r.Get("/notifications", rt.sessionHandler.Notifications)

			r.Get("/report", rt.analysisHandler.Report)
			r.Post("/sort", rt.analysisHandler.ToggleSort)
			r.Get("/selection", rt.analysisHandler.Detail)
			r.Put("/selection", rt.analysisHandler.Select)
			r.Delete("/selection", rt.analysisHandler.ClearSelection)
			r.Get("/columns/{name}", rt.analysisHandler.Column)

			r.Get("/insights", rt.insightsHandler.Get)
			r.Post("/insights", rt.insightsHandler.Generate)

			r.Post("/exports", rt.exportHandler.Create)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
