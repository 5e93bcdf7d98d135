package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is the form controller as seen by the HTTP surface.
type App interface {
	sharedobs.ReadinessChecker
	Submit(ctx context.Context, in form.Input) form.Outcome
	ResolveLocation(ctx context.Context) domain.LocationResolution
	DynamicLocationEnabled() bool
}

// Server exposes the prediction form, its JSON API, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	app        App
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the form, API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, app App, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           requestLogger(logger, mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Dynamic location makes two bounded outbound calls per request.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		app:    app,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /predict", s.handleFormSubmit)
	mux.HandleFunc("POST /api/v1/predictions", s.handlePredict)
	mux.HandleFunc("GET /api/v1/registries", handleRegistries)
	mux.HandleFunc("GET /api/v1/location", s.handleLocation)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(app))
	mux.Handle("GET /metrics", promhttp.Handler())

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

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", time.Since(start).String(),
		)
	})
}
