package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finlens/internal/auth"
	"finlens/internal/core"
	"finlens/internal/log"
	"finlens/internal/metrics"
	"finlens/internal/middleware/ratelimit"
	"finlens/internal/middleware/security"
	"finlens/internal/middleware/trace"
	"finlens/internal/services"
	"finlens/internal/statement"
)

const (
	defaultModelTimeout = 30 * time.Second
	readyTimeout        = 2 * time.Second
)

// Deps are the collaborators of the API server. Records, Summaries and
// Insights are required; everything else has a usable default.
type Deps struct {
	Records   *services.RecordService
	Summaries *services.SummaryService
	Insights  *services.InsightService

	// Ready reports whether the record store can serve requests.
	Ready func(ctx context.Context) error

	Classifier *core.Classifier
	Auth       *auth.Middleware
	Limiter    *ratelimit.Limiter
	Detector   *security.Detector
	Logger     *log.Logger

	MaxUploadBytes int64
	ModelTimeout   time.Duration
}

// Server wraps http.Server with the finlens API routes and middleware.
type Server struct {
	http.Server

	records    *services.RecordService
	summaries  *services.SummaryService
	insights   *services.InsightService
	ready      func(ctx context.Context) error
	classifier *core.Classifier
	limiter    *ratelimit.Limiter
	logger     *log.Logger

	maxUploadBytes int64
	modelTimeout   time.Duration
	now            func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = core.NewClassifier(core.DefaultRuleBook())
	}
	detector := deps.Detector
	if detector == nil {
		detector = security.NewDetector()
	}

	s := &Server{
		records:        deps.Records,
		summaries:      deps.Summaries,
		insights:       deps.Insights,
		ready:          deps.Ready,
		classifier:     classifier,
		limiter:        deps.Limiter,
		logger:         logger.WithComponent(log.ComponentHTTP),
		maxUploadBytes: deps.MaxUploadBytes,
		modelTimeout:   deps.ModelTimeout,
		now:            time.Now,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = statement.DefaultMaxUploadBytes
	}
	if s.modelTimeout <= 0 {
		s.modelTimeout = defaultModelTimeout
	}

	mux := http.NewServeMux()
	s.routes(mux)

	// Outermost first: detector, security headers, trace, rate limit, auth.
	var h http.Handler = trace.RecordPattern(mux)
	h = deps.Auth.Wrap(h)
	if s.limiter != nil {
		h = s.limiter.Middleware(detector.ExtractClientIP, s.rateLimited)(h)
	}
	h = trace.NewMiddleware(s.logger, detector.ExtractClientIP).Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)

	s.Server = http.Server{
		Addr:    addr,
		Handler: h,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/amount-extract", s.handleAmountExtract)
	mux.HandleFunc("POST /api/file-transaction", s.handleFileTransaction)
	mux.HandleFunc("POST /api/transactions/commit", s.handleCommitTransactions)

	mux.HandleFunc("GET /api/incomes", s.handleListRecords(core.Income))
	mux.HandleFunc("POST /api/incomes", s.handleCreateRecord(core.Income))
	mux.HandleFunc("GET /api/expenses", s.handleListRecords(core.Expense))
	mux.HandleFunc("POST /api/expenses", s.handleCreateRecord(core.Expense))

	mux.HandleFunc("GET /api/stats/summary", s.handleSummary)
	mux.HandleFunc("POST /api/stats/insights", s.handleStatsInsights)
	mux.HandleFunc("POST /api/insight", s.handleInsight)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/insight", s.handleDashboardInsight)
	mux.HandleFunc("GET /api/savings-trend.csv", s.handleSavingsTrend)
	mux.HandleFunc("GET /api/statements/monthly", s.handleMonthlyStatement)
}

// Shutdown stops the rate limiter cleanup and gracefully shuts down the
// HTTP server.
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

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// modelContext bounds a model-backed request.
func (s *Server) modelContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.modelTimeout)
}

// resolveUser picks the acting user from the token or the uid parameter and
// writes the rejection when there is none.
func (s *Server) resolveUser(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	uid, err := auth.ResolveUser(r.Context(), sanitizeInput(requested))
	switch {
	case err == nil:
		return uid, true
	case errors.Is(err, auth.ErrUserMismatch):
		writeError(w, http.StatusForbidden, "uid does not match the authenticated user")
	default:
		writeError(w, http.StatusBadRequest, "Missing 'uid' parameter.")
	}
	return "", false
}

// writeModelError maps a failed model-backed operation to a response.
func (s *Server) writeModelError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg, log.FieldError, err)
	switch {
	case errors.Is(err, services.ErrNoGenerator):
		writeError(w, http.StatusServiceUnavailable, "Text generation is not configured.")
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: msg, Message: err.Error()})
	default:
		writeFailure(w, msg, err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
