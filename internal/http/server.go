package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetwise/internal/log"
	"budgetwise/internal/middleware/ratelimit"
	"budgetwise/internal/middleware/security"
	"budgetwise/internal/middleware/trace"
	"budgetwise/internal/services"
)

// Deps are the services the API is built on.
type Deps struct {
	Transactions *services.TransactionService
	Profile      *services.ProfileService
	Insights     *services.InsightService
}

// Server is the JSON API. Writes are rate limited per client.
type Server struct {
	http.Server

	transactions *services.TransactionService
	profile      *services.ProfileService
	insights     *services.InsightService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		transactions: deps.Transactions,
		profile:      deps.Profile,
		insights:     deps.Insights,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleHealth)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleGetBudgets)
	mux.HandleFunc("PUT /api/budgets", s.handlePutBudgets)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/trend", s.handleTrend)

	mux.HandleFunc("POST /api/import", s.handleImportCSV)
	mux.HandleFunc("POST /api/import/snapshot", s.handleImportSnapshot)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("DELETE /api/data", s.handleClear)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		TooManyRequestsError().Write(w)
	}, http.MethodPost, http.MethodPut, http.MethodDelete)

	// Outermost first.
	s.Handler = chain(mux,
		log.Middleware(logger),
		s.tracer.Middleware,
		log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		headers.Middleware,
		s.detector.Middleware,
		limit,
	)
	return s
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Stats reports the middleware counters.
type Stats struct {
	Requests  trace.Metrics
	RateLimit ratelimit.Metrics
	Security  security.DetectionMetrics
}

func (s *Server) Stats() Stats {
	return Stats{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
