package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneyflow/internal/extract"
	"moneyflow/internal/log"
	"moneyflow/internal/middleware/ratelimit"
	"moneyflow/internal/middleware/security"
	"moneyflow/internal/middleware/trace"
	"moneyflow/internal/services"
)

const (
	apiName    = "MoneyFlow API - Seu Dinheiro Sob Controle Total"
	apiVersion = "2.0.0"
)

// Dependencies are the services the handlers delegate to.
type Dependencies struct {
	Transactions *services.TransactionService
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Settings     *services.SettingsService
	Portfolio    *services.PortfolioService
	Invoices     *services.InvoiceProjector
	Dashboard    *services.DashboardAggregator
	// Extractor may be nil; /api/ai/extract then reports the missing key.
	Extractor *extract.Extractor
	// Ping checks the storage backend for /readyz.
	Ping func(ctx context.Context) error
}

// Options tune the middleware chain.
type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps Dependencies

	clientIP    *security.ClientIP
	rateLimiter *ratelimit.Limiter
	trace       *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies, opts Options) *Server {
	if deps.Extractor == nil {
		deps.Extractor = extract.New(nil)
	}

	s := &Server{
		deps:     deps,
		clientIP: security.NewClientIP(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			MutatingOnly:      true,
		}),
		started: time.Now(),
	}
	s.trace = trace.NewMiddleware(s.clientIP.Extract)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(s.routes(), opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("POST /api/categories/seed", s.handleSeedCategories)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("GET /api/accounts/{id}/invoice", s.handleInvoice)

	mux.HandleFunc("GET /api/dashboard/summary", s.handleDashboardSummary)

	mux.HandleFunc("GET /api/stocks", s.handleListStocks)
	mux.HandleFunc("POST /api/stocks", s.handleCreateStock)
	mux.HandleFunc("DELETE /api/stocks/{id}", s.handleDeleteStock)
	mux.HandleFunc("GET /api/stocks/grouped", s.handleGroupedStocks)
	mux.HandleFunc("GET /api/stocks/quote/{symbol}", s.handleQuote)

	mux.HandleFunc("POST /api/ai/extract", s.handleExtract)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	return mux
}

// middleware wraps h, outermost first: trace, request logger, CORS,
// security headers, rate limit.
func (s *Server) middleware(h http.Handler, opts Options) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.clientIP.Extract(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	h = s.rateLimiter.Middleware(s.clientIP.Extract, onLimit)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = security.NewCORS(opts.CORSOrigins).Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(log.Default(log.ComponentHTTP))(h)
	return s.trace.Middleware(h)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
