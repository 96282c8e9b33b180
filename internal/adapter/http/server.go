package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

// AnalysisService runs and retrieves analyses.
type AnalysisService interface {
	sharedobs.ReadinessChecker
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Analysis, error)
	Get(ctx context.Context, id string) (domain.Analysis, error)
	List(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// WriteTimeout must cover a full analysis including enrichment retries.
	WriteTimeout time.Duration
	// Dependencies is reported by /api/health as configured or not.
	Dependencies map[string]bool
}

// Server exposes the analysis API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        AnalysisService
	deps       map[string]bool
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz,
// and /metrics.
func NewServer(opts Options, svc AnalysisService, logger *slog.Logger) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	mux := http.NewServeMux()

	s := &Server{
		svc:    svc,
		deps:   opts.Dependencies,
		logger: logger,
	}

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/analysis/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET /api/analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /api/health", s.handleAPIHealth)
	mux.HandleFunc("GET /api/subsidy-info/{state}", s.handleSubsidyInfo)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = cors(opts.AllowedOrigins, handler)
	handler = logRequests(logger, handler)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
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
