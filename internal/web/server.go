// Package web provides the HTTP API for the mapping service: dataset
// lookups, mapping document validation and CSV harmonization jobs.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/r2x-tools/reedsmap/internal/config"
	"github.com/r2x-tools/reedsmap/internal/harmonize"
	"github.com/r2x-tools/reedsmap/internal/mapping"
	"github.com/r2x-tools/reedsmap/internal/store"
	"github.com/r2x-tools/reedsmap/internal/web/middleware"
)

// Server is the HTTP server for the mapping API.
type Server struct {
	cfg      *config.Config
	registry *mapping.Registry
	schema   *jsonschema.Schema
	limiter  *harmonize.Limiter
	runs     store.Store
	router   *chi.Mux
	server   *http.Server
	watcher  *Watcher
	limiters []*rateLimiter
}

// NewServer wires the API around a mapping registry and run store.
func NewServer(cfg *config.Config, registry *mapping.Registry, runs store.Store) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		schema:   mapping.MustCompileEntrySchema(),
		limiter:  harmonize.NewLimiter(cfg.Harmonize.MaxConcurrent, cfg.Harmonize.MaxWaitTime),
		runs:     runs,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

// setupRoutes configures all HTTP routes. The request timeout applies to
// every route except harmonize, whose jobs run under the longer
// HARMONIZE_TIMEOUT deadline set inside the handler.
func (s *Server) setupRoutes() {
	withTimeout := chimw.Timeout(s.cfg.Server.RequestTimeout)

	s.router.Group(func(r chi.Router) {
		r.Use(withTimeout)
		r.Get("/healthz", s.handleHealth)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(withTimeout)

			// Mapping catalog
			r.Get("/datasets", s.handleListDatasets)
			r.Get("/datasets/{key}", s.handleGetDataset)
			r.Get("/datasets/{key}/columns", s.handleDatasetColumns)

			// Mapping document validation
			r.Post("/validate", s.handleValidate)

			// Run history
			r.Get("/runs", s.handleListRuns)
		})

		// Harmonization jobs, separately rate limited and deliberately
		// outside the request timeout.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled && s.cfg.Rate.HarmonizeLimit > 0 {
				r.Use(s.newRateLimiter(s.cfg.Rate.HarmonizeLimit, time.Minute).middleware)
			}
			r.Post("/harmonize/{key}", s.handleHarmonize)
		})
	})
}

// Start begins listening for HTTP requests and, when configured, starts the
// mapping file watcher.
func (s *Server) Start(addr string) error {
	if s.cfg.Mapping.Watch && s.cfg.Mapping.Path != "" {
		w, err := NewWatcher(s.cfg.Mapping, s.registry)
		if err != nil {
			return err
		}
		s.watcher = w
		go s.watcher.Run()
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight harmonization
// jobs to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	for _, rl := range s.limiters {
		rl.Stop()
	}
	if s.server == nil {
		return nil
	}
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		slog.Warn("shutdown with jobs still active", "active", s.limiter.Active())
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
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
	rate     int           // requests per window
	window   time.Duration // time window

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window
// and registers it for cleanup shutdown.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute until Stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *rateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
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

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, UserMessage{
				Code:    codeRateLimited,
				Message: "rate limit exceeded",
				Action:  "Wait a minute before retrying.",
			}, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
