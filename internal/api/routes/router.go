package routes

import (
	"net/http"

	"github.com/neuvia/backend/internal/api/handlers"
	"github.com/neuvia/backend/internal/api/middleware"
	"github.com/neuvia/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler *handlers.TriageHandler
	chatHandler   *handlers.ChatHandler
	intakeHandler *handlers.IntakeHandler
	reportHandler *handlers.ReportHandler
	alertHandler  *handlers.AlertStreamHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. alertHandler and cacheMiddleware may be nil.
func NewRouter(
	triageHandler *handlers.TriageHandler,
	chatHandler *handlers.ChatHandler,
	intakeHandler *handlers.IntakeHandler,
	reportHandler *handlers.ReportHandler,
	alertHandler *handlers.AlertStreamHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		triageHandler:   triageHandler,
		chatHandler:     chatHandler,
		intakeHandler:   intakeHandler,
		reportHandler:   reportHandler,
		alertHandler:    alertHandler,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Free-text triage
	r.mux.HandleFunc("POST /api/triage/classify", r.triageHandler.Classify)
	r.mux.HandleFunc("GET /api/triage/lexicon", r.triageHandler.Lexicon)

	// Chat sessions
	r.mux.HandleFunc("POST /api/chat/sessions", r.chatHandler.CreateSession)
	r.mux.HandleFunc("GET /api/chat/sessions/{id}/messages", r.chatHandler.ListMessages)
	r.mux.HandleFunc("POST /api/chat/sessions/{id}/messages", r.chatHandler.PostMessage)
	r.mux.HandleFunc("DELETE /api/chat/sessions/{id}", r.chatHandler.CloseSession)

	// Structured intake
	r.mux.HandleFunc("GET /api/intake/fields", r.intakeHandler.Fields)
	r.mux.HandleFunc("POST /api/intake", r.intakeHandler.Submit)
	r.mux.HandleFunc("GET /api/intake/notifications", r.intakeHandler.Notifications)

	// Reports
	r.mux.HandleFunc("POST /api/reports/export", r.reportHandler.Export)

	if r.alertHandler != nil {
		r.mux.HandleFunc("GET /api/stream/alerts", r.alertHandler.StreamAlerts)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
