package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"carteira/internal/backend"
	"carteira/internal/cache"
	"carteira/internal/ledger"
	applog "carteira/internal/log"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/middleware/security"
	"carteira/internal/middleware/trace"
	"carteira/internal/services"
)

// Server exposes the JSON API. Read endpoints are backed by LRU
// response caches that every write invalidates wholesale; a stale
// running balance is worse than a recomputed one.
type Server struct {
	http.Server

	repo         backend.Repository
	transactions *services.TransactionService
	reports      *services.ReportService

	statementCache *cache.LRUCache[services.Statement]
	netWorthCache  *cache.LRUCache[ledger.NetWorthResult]
	seriesCache    *cache.LRUCache[seriesResponse]
	budgetCache    *cache.LRUCache[ledger.RollupReport]

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// Options carries the server dependencies.
type Options struct {
	Addr         string
	Repo         backend.Repository
	Transactions *services.TransactionService
	Reports      *services.ReportService
	Logger       *applog.Logger

	// CacheManager, when set, sweeps the response caches periodically.
	CacheManager *cache.Manager
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:         opts.Repo,
		transactions: opts.Transactions,
		reports:      opts.Reports,

		statementCache: cache.NewLRUCache[services.Statement](200, 5*time.Minute),
		netWorthCache:  cache.NewLRUCache[ledger.NetWorthResult](10, 5*time.Minute),
		seriesCache:    cache.NewLRUCache[seriesResponse](20, 10*time.Minute),
		budgetCache:    cache.NewLRUCache[ledger.RollupReport](50, 5*time.Minute),

		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(),
	}

	if opts.CacheManager != nil {
		opts.CacheManager.Register(s.statementCache)
		opts.CacheManager.Register(s.netWorthCache)
		opts.CacheManager.Register(s.seriesCache)
		opts.CacheManager.Register(s.budgetCache)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleArchiveAccount)
	mux.HandleFunc("GET /api/accounts/{id}/statement", s.handleAccountStatement)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("GET /api/tags/{id}", s.handleGetTag)
	mux.HandleFunc("PUT /api/tags/{id}", s.handleUpdateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", s.handleArchiveTag)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("GET /api/budgets/report", s.handleBudgetReport)

	mux.HandleFunc("GET /api/statement", s.handleCombinedStatement)
	mux.HandleFunc("GET /api/networth", s.handleNetWorth)
	mux.HandleFunc("GET /api/networth/series", s.handleNetWorthSeries)

	handler := s.buildMiddleware(mux, opts.Logger)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// buildMiddleware wraps the mux with security headers, rate limiting,
// tracing and contextual logging, outermost first.
func (s *Server) buildMiddleware(mux http.Handler, logger *applog.Logger) http.Handler {
	handler := mux

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler = headers.Middleware(handler)

	handler = s.flagProbes(handler)

	handler = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(handler)

	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	handler = tracer.Middleware(handler)

	if logger != nil {
		handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	}
	return handler
}

// flagProbes logs requests that look like scanner probes. They are
// served normally; the log line is for operators watching exposure.
func (s *Server) flagProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.SuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListAccounts(r.Context(), false); err != nil {
		http.Error(w, "storage not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateReports flushes every derived-data cache. Writes are rare
// relative to reads, so wholesale invalidation beats tracking which
// windows a transaction touches.
func (s *Server) invalidateReports() {
	s.statementCache.Flush()
	s.netWorthCache.Flush()
	s.seriesCache.Flush()
	s.budgetCache.Flush()
}

// Shutdown gracefully stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
