// Package http serves the dashboard JSON API and the static frontend.
package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator"

	"findash/internal/auth"
	"findash/internal/dataset"
	"findash/internal/insights"
	"findash/internal/log"
	"findash/internal/metrics"
	"findash/internal/middleware/ratelimit"
	"findash/internal/middleware/security"
	"findash/internal/middleware/trace"
	"findash/internal/privacy"
	"findash/internal/services"
)

const (
	maxUploadSize  = 32 << 20
	requestTimeout = 90 * time.Second
)

// Options wires the server's collaborators.
type Options struct {
	Addr string

	Gate     *auth.Gate
	Data     *dataset.Service
	Admin    *services.AdminService
	Insights *insights.Service
	Factors  privacy.FactorSource
	Detector *security.Detector
	Metrics  *metrics.Metrics
	Logger   *log.Logger

	CORSOrigins    []string
	FrontendDist   string
	MetricsEnabled bool

	LoginPerMinute    int
	InsightsPerMinute int
	APIPerMinute      int
}

// Server is the HTTP front of the dashboard.
type Server struct {
	http.Server

	gate     *auth.Gate
	data     *dataset.Service
	admin    *services.AdminService
	insights *insights.Service
	factors  privacy.FactorSource
	detector *security.Detector
	trace    *trace.Middleware
	metrics  *metrics.Metrics
	logger   *log.Logger
	validate *validator.Validate

	loginLimiter    *ratelimit.Limiter
	insightsLimiter *ratelimit.Limiter
	apiLimiter      *ratelimit.Limiter

	frontendDist string
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Factors == nil {
		opts.Factors = privacy.DailySource{}
	}
	if opts.Detector == nil {
		opts.Detector, _ = security.NewDetector(nil, opts.Logger)
	}

	s := &Server{
		gate:            opts.Gate,
		data:            opts.Data,
		admin:           opts.Admin,
		insights:        opts.Insights,
		factors:         opts.Factors,
		detector:        opts.Detector,
		metrics:         opts.Metrics,
		logger:          opts.Logger.WithComponent(log.ComponentHTTP),
		validate:        newValidator(),
		loginLimiter:    ratelimit.NewLimiter(ratelimit.Config{Policy: "login", RequestsPerMinute: opts.LoginPerMinute}),
		insightsLimiter: ratelimit.NewLimiter(ratelimit.Config{Policy: "insights", RequestsPerMinute: opts.InsightsPerMinute}),
		apiLimiter:      ratelimit.NewLimiter(ratelimit.Config{Policy: "api", RequestsPerMinute: opts.APIPerMinute}),
		frontendDist:    opts.FrontendDist,
	}
	s.trace = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      2 * requestTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		s.trace.Middleware,
		middleware.Recoverer,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.detector.Middleware,
		s.metrics.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if opts.MetricsEnabled {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(
			security.NoStore,
			s.apiLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited(s.apiLimiter)),
			middleware.Timeout(requestTimeout),
			s.gate.Middleware,
		)

		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.loginLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited(s.loginLimiter))).
				Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/status", s.handleAuthStatus)
		})

		r.Get("/summary", s.handleSummary)
		r.Get("/expenses", s.handleExpenses)
		r.Get("/income", s.handleIncome)
		r.Get("/search", s.handleSearch)
		r.Get("/categories", s.handleCategories)
		r.Get("/tags", s.handleTags)

		r.With(
			s.insightsLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited(s.insightsLimiter)),
			auth.RequireTrusted(s.forbidden("AI insights are only available for authenticated users. Please log in to access this feature.")),
		).Post("/insights", s.handleInsights)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireTrusted(s.forbidden("Admin operations require authentication")))
			r.Post("/reset-database", s.handleResetDatabase)
			r.Post("/migrate-csv", s.handleMigrateCSV)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	r.NotFound(s.handleFrontend)
	return r
}

func (s *Server) onRateLimited(l *ratelimit.Limiter) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.ObserveRateLimited(l.Policy())
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldPolicy, l.Policy(),
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	}
}

func (s *Server) forbidden(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusForbidden, msg)
	}
}

// handleFrontend serves the built single-page app, falling back to
// index.html for client-side routes.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, r, http.StatusNotFound, "Not found")
		return
	}
	if s.frontendDist == "" {
		writeError(w, r, http.StatusNotFound, "Not found")
		return
	}
	index := filepath.Join(s.frontendDist, "index.html")
	if _, err := os.Stat(index); err != nil {
		writeError(w, r, http.StatusNotFound, "Frontend not built")
		return
	}

	clean := filepath.Clean("/" + r.URL.Path)
	file := filepath.Join(s.frontendDist, filepath.FromSlash(clean))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		if strings.HasPrefix(clean, "/assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		http.ServeFile(w, r, file)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}

// Shutdown stops the limiters' cleanup goroutines and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		s.insightsLimiter.Stop()
		s.apiLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
