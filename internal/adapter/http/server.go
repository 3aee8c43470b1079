package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/couchcryptid/harbinger/internal/store"
	"github.com/couchcryptid/harbinger/internal/triage"
	"github.com/couchcryptid/harbinger/internal/worker"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMaxUploadBytes = 10 << 20

// Triager runs image analysis and report triage.
type Triager interface {
	Analyze(ctx context.Context, image []byte, location, extra string) (triage.Analysis, error)
	Triage(ctx context.Context, report domain.Report) (domain.Incident, error)
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Ready   sharedobs.ReadinessChecker
	Triager Triager
	Store   store.Store
	Metrics *observability.Metrics
	// Limiter throttles the POST routes per client address. Nil disables
	// rate limiting.
	Limiter        *worker.Limiter
	MaxUploadBytes int64
}

// Server exposes the incident API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	loader     *store.Loader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 incident routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultMaxUploadBytes
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		deps:   deps,
		loader: store.NewLoader(deps.Store, logger, deps.Metrics),
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /v1/analyze", s.rateLimit(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("POST /v1/reports", s.rateLimit(http.HandlerFunc(s.handleCreateReport)))
	mux.HandleFunc("GET /v1/incidents", s.handleListIncidents)
	mux.HandleFunc("GET /v1/incidents/{id}", s.handleGetIncident)
	mux.Handle("POST /v1/incidents/{id}/verify", s.rateLimit(http.HandlerFunc(s.handleVerify)))
	mux.Handle("POST /v1/incidents/{id}/assign", s.rateLimit(http.HandlerFunc(s.handleAssign)))
	mux.HandleFunc("GET /v1/priority", s.handlePriority)

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

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.deps.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Limiter.Allow(clientKey(r)) {
			s.deps.Metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
