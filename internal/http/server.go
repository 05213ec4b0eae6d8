// Package http serves the JSON API over the document controller.
package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/app"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// ReadyFunc reports whether dependencies can serve traffic.
type ReadyFunc func(ctx context.Context) error

type Options struct {
	Logger    *log.Logger
	Limiter   *ratelimit.Limiter
	Views     *cache.LRUCache[any]
	Ready     ReadyFunc
	Resolver  *security.IPResolver
	Headers   security.HeadersConfig
	ReadLimit time.Duration
}

type Server struct {
	http.Server
	ctrl    *app.Controller
	logger  *log.Logger
	limiter *ratelimit.Limiter
	views   *cache.LRUCache[any]
	ready   ReadyFunc
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ctrl *app.Controller, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	if opts.Views == nil {
		opts.Views = cache.NewLRUCache[any](256, time.Minute)
	}
	if opts.Resolver == nil {
		opts.Resolver, _ = security.NewIPResolver()
	}
	if opts.Headers == (security.HeadersConfig{}) {
		opts.Headers = security.DefaultHeadersConfig()
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 15 * time.Second
	}

	s := &Server{
		ctrl:    ctrl,
		logger:  logger.WithComponent(log.ComponentHTTP),
		limiter: opts.Limiter,
		views:   opts.Views,
		ready:   opts.Ready,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = opts.Limiter.Middleware(opts.Resolver.ClientIP, s.onRateLimit)(h)
	h = security.Headers(opts.Headers)(h)
	h = trace.NewMiddleware(logger, opts.Resolver.ClientIP).Handler(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadLimit,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/document", s.handleDocument)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics/{view}", s.handleAnalytics)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/partitions", s.handlePartitions)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("PUT /api/accounts/{id}/rate", s.handleSetRate)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/pots", s.handleListPots)
	mux.HandleFunc("POST /api/pots", s.handleCreatePot)
	mux.HandleFunc("POST /api/pots/{id}/add", s.handleAddToPot)
	mux.HandleFunc("DELETE /api/pots/{id}", s.handleDeletePot)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("PUT /api/users/current/name", s.handleRenameCurrentUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/calc/interest", s.handleInterest)
	mux.HandleFunc("GET /api/calc/pension", s.handlePension)
	mux.HandleFunc("GET /api/calc/projection", s.handleProjection)

	mux.HandleFunc("POST /api/import/preview", s.handleImportPreview)
	mux.HandleFunc("POST /api/import", s.handleImport)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no such route"})
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "not ready"})
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
