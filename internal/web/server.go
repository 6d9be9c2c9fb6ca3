// Package web provides the HTTP API for the card import/export service.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardforge/cardforge/internal/pipeline"
	"github.com/cardforge/cardforge/internal/schema"
	"github.com/cardforge/cardforge/internal/web/middleware"
)

// Server is the HTTP front end over the import/export pipelines.
type Server struct {
	registry  *schema.Registry
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
	maxUpload int64
	router    *chi.Mux
	server    *http.Server
}

// Options carries the server's tunables.
type Options struct {
	// MaxUploadBytes bounds one multipart request body.
	MaxUploadBytes int64
	// RatePerMinute bounds requests per client IP. Zero disables limiting.
	RatePerMinute int
	// Metrics is the registry exposed on /metrics; also the registerer
	// the HTTP middleware counts into.
	Metrics *prometheus.Registry
}

// NewServer wires routes and middleware.
func NewServer(registry *schema.Registry, pl *pipeline.Pipeline, logger *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 256 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry:  registry,
		pipeline:  pl,
		logger:    logger,
		maxUpload: opts.MaxUploadBytes,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware(opts)
	s.setupRoutes(opts)
	return s
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(5 * time.Minute))

	s.router.Use(securityHeaders)

	if opts.Metrics != nil {
		s.router.Use(middleware.HTTPMetrics(opts.Metrics))
	}
	if opts.RatePerMinute > 0 {
		limiter := newRateLimiter(opts.RatePerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

func (s *Server) setupRoutes(opts Options) {
	s.router.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{table}", s.handleGetTable)

		r.Post("/tables/{table}/import", s.handleImport)
		r.Post("/tables/{table}/reupload", s.handleReupload)

		r.Get("/tables/{table}/export/xlsx", s.handleExportTabular)
		r.Get("/tables/{table}/export/images", s.handleExportImages)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("http server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds response hardening headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow consumes a token for the IP if one is available.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}
		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
