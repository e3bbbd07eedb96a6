// Package http exposes the cashflow services as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Installments *services.InstallmentService
	Dashboard    *services.DashboardService

	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]Pinger
}

// Options tune the server. Zero values pick defaults.
type Options struct {
	RateLimitPerMinute int

	// TrustedProxies are CIDRs whose X-Forwarded-For is believed, on top of private ranges.
	TrustedProxies []string
	Logger         *applog.Logger

	// Now is the clock used for "today" in the dashboard.
	Now func() time.Time
}

// Server is an http.Server with the cashflow routes and middleware chain mounted.
type Server struct {
	http.Server

	deps     Deps
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time
	started  time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		deps:    deps,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		now:     now,
		started: now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	detector := security.NewDetector(logger)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			s.logger.WarnContext(context.Background(), "Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.detector = detector
	tracer := trace.NewMiddleware(logger, detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/series", s.handleCreateSeries)
	mux.HandleFunc("GET /api/series", s.handleListSeries)
	mux.HandleFunc("GET /api/series/{id}", s.handleGetSeries)
	mux.HandleFunc("DELETE /api/series/{id}", s.handleStopSeries)
	mux.HandleFunc("POST /api/series/{id}/materialize", s.handleMaterializeSeries)

	mux.HandleFunc("POST /api/cards", s.handleCreateCard)
	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("POST /api/purchases", s.handleCreatePurchase)
	mux.HandleFunc("POST /api/installments/preview", s.handlePreviewInstallments)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
}

// Shutdown drains connections and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
