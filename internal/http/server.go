package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/observability/metrics"
	"finboard/internal/ports"
)

// Store is the record and ledger data source behind the API.
type Store interface {
	ports.Store
	Ping(ctx context.Context) error
}

// Statements renders customer ledgers.
type Statements interface {
	Statement(ctx context.Context, customer string, opts ledger.Options) (ledger.Result, error)
	Customers(ctx context.Context) ([]string, error)
}

// Summarizer produces the dashboard overview.
type Summarizer interface {
	Summary(ctx context.Context) (core.Summary, error)
}

// Options configures NewServer. Store, Ledger and Dashboard are required.
type Options struct {
	Store     Store
	Ledger    Statements
	Dashboard Summarizer
	Logger    *log.Logger

	PageSize           int
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

// Server is the JSON API over records, customer ledgers and the dashboard.
type Server struct {
	http.Server
	store     Store
	ledger    Statements
	dashboard Summarizer
	logger    *log.Logger
	pageSize  int
	started   time.Time

	// Record listings per kind, purged on every record write
	listCache    cache.Cache[[]core.Record]
	listGen      atomic.Uint64
	cacheManager *cache.Manager

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	metrics.Init()

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:        opts.Store,
		ledger:       opts.Ledger,
		dashboard:    opts.Dashboard,
		logger:       logger.WithComponent(log.ComponentHTTP),
		pageSize:     pageSize,
		started:      time.Now(),
		listCache:    cache.NewLRUCache[[]core.Record]("records", 16, ttl, metrics.CacheObserver{}),
		cacheManager: cache.NewManager(logger.Logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			WritesOnly:        true,
		}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	if lc, ok := s.listCache.(cache.Cleaner); ok {
		s.cacheManager.Register(lc)
	}
	s.cacheManager.StartCleanup(5 * time.Minute)

	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	// trace wraps the chain above without copying the request, so it sees
	// the pattern the mux matched
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	records := log.ComponentMiddleware(log.ComponentRecord)
	mux.Handle("GET /api/{kind}", records(http.HandlerFunc(s.handleListRecords)))
	mux.Handle("POST /api/{kind}", records(http.HandlerFunc(s.handleCreateRecord)))
	mux.Handle("GET /api/{kind}/export.xlsx", records(http.HandlerFunc(s.handleExportRecords)))
	mux.Handle("GET /api/{kind}/{id}", records(http.HandlerFunc(s.handleGetRecord)))
	mux.Handle("PUT /api/{kind}/{id}", records(http.HandlerFunc(s.handleUpdateRecord)))
	mux.Handle("DELETE /api/{kind}/{id}", records(http.HandlerFunc(s.handleDeleteRecord)))

	ledgers := log.ComponentMiddleware(log.ComponentLedger)
	mux.Handle("GET /api/customers", ledgers(http.HandlerFunc(s.handleCustomers)))
	mux.Handle("GET /api/customers/{name}/ledger", ledgers(http.HandlerFunc(s.handleLedger)))
	mux.Handle("GET /api/customers/{name}/ledger.pdf", ledgers(http.HandlerFunc(s.handleLedgerPDF)))
	mux.Handle("GET /api/customers/{name}/ledger.xlsx", ledgers(http.HandlerFunc(s.handleLedgerXLSX)))
	mux.Handle("POST /api/customers/{name}/ledger", ledgers(http.HandlerFunc(s.handleAddLedgerEntry)))

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such endpoint").Write(w)
	})
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// listRecords serves a kind's full collection from the cache when possible.
// A fetch that races with a write is not cached.
func (s *Server) listRecords(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	key := string(kind)
	if recs, ok := s.listCache.Get(key); ok {
		return recs, nil
	}

	gen := s.listGen.Load()
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	recs, err := s.store.ListRecords(cctx, kind)
	if err != nil {
		return nil, err
	}
	if s.listGen.Load() == gen {
		s.listCache.Set(key, recs)
	}
	return recs, nil
}

// invalidateRecords drops cached listings after a write.
func (s *Server) invalidateRecords() {
	s.listGen.Add(1)
	s.listCache.Purge()
}

// errorResponse maps an error to its HTTP representation.
func errorResponse(ctx context.Context, op string, err error) *ResponseBuilder {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, core.ErrInvalidKind):
		return NotFoundError("unknown collection")
	case errors.Is(err, errBadRequest):
		return BadRequestError(err.Error())
	case errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCounterparty),
		errors.Is(err, core.ErrDescriptionTooLong):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ServiceUnavailableError("data source timed out")
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, "Request failed", err, log.FromContext(ctx).Component(), op, nil)
	return InternalServerError("internal error")
}
