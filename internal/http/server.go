package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/middleware/security"
	"budgetbuddy/internal/middleware/trace"
	"budgetbuddy/internal/services"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	// RateLimit is the number of requests per client per minute.
	RateLimit int
	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
	// Caches is stopped on Shutdown when set.
	Caches *cache.Manager
	Logger *log.Logger
	// TrustedProxies are CIDRs whose forwarded headers are honoured.
	TrustedProxies []string
}

// Server is the Record Store HTTP API.
type Server struct {
	http.Server
	svc      *services.Services
	tokens   auth.Verifier
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    func(ctx context.Context) error
	caches   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires every route behind the shared middleware chain. Data
// routes additionally require a bearer token verified by tokens.
func NewServer(addr string, svc *services.Services, tokens auth.Verifier, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		svc:      svc,
		tokens:   tokens,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		ready:    opts.Ready,
		caches:   opts.Caches,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, writeRateLimited)(h)
	h = detector.Middleware(writeSuspicious)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.LoggerMiddleware(logger)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	protect := auth.Require(s.tokens, writeUnauthorized)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	handle("GET /expenses", s.handleListExpenses)
	handle("POST /expenses", s.handleCreateExpense)
	handle("GET /expenses/{id}", s.handleGetExpense)
	handle("PUT /expenses/{id}", s.handleUpdateExpense)
	handle("DELETE /expenses/{id}", s.handleDeleteExpense)

	handle("GET /income", s.handleListIncome)
	handle("POST /income", s.handleCreateIncome)
	handle("GET /income/{id}", s.handleGetIncome)
	handle("PUT /income/{id}", s.handleUpdateIncome)
	handle("DELETE /income/{id}", s.handleDeleteIncome)

	handle("GET /budgets", s.handleListBudgets)
	handle("POST /budgets/bulk", s.handleBulkCreateBudgets)
	handle("POST /budgets/copy", s.handleCopyBudgets)
	handle("PUT /budgets/{id}", s.handleUpdateBudget)

	handle("GET /analytics/summary", s.handleSummary)
	handle("GET /analytics/available-months", s.handleAvailableMonths)

	handle("GET /activity/logs", s.handleActivityLogs)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: "no such endpoint"})
	})
}

// Shutdown stops background goroutines and drains the HTTP server. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// userID returns the authenticated user. auth.Require guarantees presence on
// protected routes.
func userID(r *http.Request) string {
	id, _ := auth.UserFrom(r.Context())
	return id
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", log.FieldComponent, log.ComponentHTTP, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "rate limit exceeded"})
}

func writeSuspicious(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "request rejected"})
}
