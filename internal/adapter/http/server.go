package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session is the single in-memory simulation session.
type Session interface {
	Snapshot() domain.State
	Dispatch(e domain.Event) domain.State
}

// Simulator starts simulation runs.
type Simulator interface {
	Trigger(ctx context.Context) (domain.State, error)
}

// Server exposes the simulation API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	session    Session
	simulator  Simulator
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, session Session, simulator Simulator, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		session:   session,
		simulator: simulator,
		logger:    logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.logRequests)
		r.Get("/state", s.handleState)
		r.Put("/params", s.handleParams)
		r.Get("/presets", s.handlePresets)
		r.Post("/presets/select", s.handleSelectPreset)
		r.Post("/prediction/simulate", s.handleSimulatePrediction)
		r.Post("/simulate", s.handleSimulate)
		r.Get("/calculate", handleCalculate)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
