package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"poupa/internal/cache"
	"poupa/internal/categorize"
	"poupa/internal/core"
	applog "poupa/internal/log"
	"poupa/internal/middleware/ratelimit"
	"poupa/internal/middleware/security"
	"poupa/internal/middleware/trace"
	"poupa/internal/services"
)

// LedgerAPI is the slice of the ledger service the handlers use.
type LedgerAPI interface {
	Ledger(ctx context.Context) (core.Ledger, error)
	SetIncome(ctx context.Context, income core.Money) error
	AddExpense(ctx context.Context, n core.NewExpense) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	Catalog(ctx context.Context) (core.Catalog, error)
	SaveTargets(ctx context.Context, o core.TargetOverrides) error
	ResetTargets(ctx context.Context) error
	CheckPurchase(ctx context.Context, p services.Purchase, period core.Period) (services.Advice, error)
	Dashboard(ctx context.Context, period core.Period, today core.Date) (services.Dashboard, error)
	MonthReport(ctx context.Context, period core.Period) (services.MonthReport, error)
}

type Options struct {
	Addr   string
	Ledger LedgerAPI
	// Suggester defaults to the built-in keyword rules.
	Suggester *categorize.Suggester
	Logger    *applog.Logger
	// Ready backs /readyz; nil always reports ready.
	Ready func(ctx context.Context) error

	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
	Now                func() time.Time
}

type Server struct {
	http.Server

	ledger    LedgerAPI
	suggester *categorize.Suggester
	ready     func(ctx context.Context) error
	now       func() time.Time
	started   time.Time

	dashboards   cache.Cache[services.Dashboard]
	cacheManager *cache.Manager
	// generation counts invalidations; a view computed across one is not
	// cached. cacheMu orders the check-and-set against invalidate.
	generation atomic.Uint64
	cacheMu    sync.Mutex

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Suggester == nil {
		opts.Suggester = categorize.Default()
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Ready == nil {
		opts.Ready = func(context.Context) error { return nil }
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = 24
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	dashboards := cache.NewLRUCache[services.Dashboard](opts.CacheSize, opts.CacheTTL)
	manager := cache.NewManager()
	manager.Register(dashboards)
	manager.StartCleanup(opts.CacheTTL)

	limitCfg := ratelimit.DefaultConfig()
	limitCfg.RequestsPerMinute = opts.RateLimitPerMinute

	detector := security.NewDetector()
	s := &Server{
		ledger:       opts.Ledger,
		suggester:    opts.Suggester,
		ready:        opts.Ready,
		now:          opts.Now,
		started:      opts.Now(),
		dashboards:   dashboards,
		cacheManager: manager,
		limiter:      ratelimit.NewLimiter(limitCfg),
		tracer:       trace.NewMiddleware(opts.Logger.WithComponent(applog.ComponentHTTP), detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimit)(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/suggest", s.handleSuggestCategory)

	mux.HandleFunc("GET /api/targets", s.handleGetTargets)
	mux.HandleFunc("PUT /api/targets", s.handleSaveTargets)
	mux.HandleFunc("DELETE /api/targets", s.handleResetTargets)

	mux.HandleFunc("GET /api/income", s.handleGetIncome)
	mux.HandleFunc("PUT /api/income", s.handleSetIncome)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/advisor", s.handleAdvisor)
	mux.HandleFunc("GET /api/report", s.handleReport)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Recurso não encontrado.").Write(w)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w)
}

// invalidate drops cached views after a mutation. A single edit can touch
// several months, so everything goes.
func (s *Server) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation.Add(1)
	s.dashboards.Purge()
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	})
	return err
}
