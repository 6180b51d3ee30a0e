// Package api serves the analysis service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/report"
)

// Deps are the services the API delegates to.
type Deps struct {
	Auth    *auth.Service
	Reports *report.Service
	Ready   monitoring.Pinger
	Metrics *monitoring.Metrics
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
}

// NewServer builds the router and the underlying http.Server.
func NewServer(cfg config.ServerConfig, authCfg config.AuthConfig, deps Deps) *Server {
	h := &handlers{auth: deps.Auth, reports: deps.Reports, ready: deps.Ready}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	requestTimeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	limiter := newClientLimiter(authCfg.SigninRate, authCfg.SigninBurst)

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(instrument(deps.Metrics))
	router.Use(middleware.Timeout(requestTimeout))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", h.health)
	router.Get("/readyz", h.readiness)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.middleware).Post("/signup", h.signUp)
			r.With(limiter.middleware).Post("/signin", h.signIn)
			r.Post("/signout", h.signOut)
			r.With(h.requireAuth).Get("/me", h.me)
		})

		r.Get("/coordinates/validate", h.validateCoordinate)

		r.Route("/analyses", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/", h.createAnalysis)
			r.Get("/", h.listAnalyses)
			r.Post("/batch", h.createBatch)
			r.Get("/{id}", h.getAnalysis)
		})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router}
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
