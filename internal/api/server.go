// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the composition root for the HTTP transport (chi router).
  - Only this package and cmd/api import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/catalog"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/config"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/constants"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/middleware"
	"github.com/RuneBingo/RuneBingo-sub000/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups every HTTP handler set mounted by the server.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 503 while a dependency is down.
	Readiness http.HandlerFunc

	// Metrics serves the Prometheus registry. Nil disables /metrics.
	Metrics http.Handler

	// Auth handles registration, login and refresh sessions.
	Auth *auth.Handler

	// Bingo handles competitions, rosters, teams and tiles.
	Bingo *bingo.Handler

	// Catalog exposes the item search used by the tile editor.
	Catalog *catalog.Handler
}

// Middlewares groups the request-scoped collaborators of the middleware chain.
type Middlewares struct {
	Verifier middleware.TokenVerifier
	Locales  middleware.LocaleNegotiator
	Recorder middleware.HTTPRecorder
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, mw Middlewares, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.NewRateLimiter(ctx).Handler)
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Locale(mw.Locales))
	if mw.Recorder != nil {
		r.Use(middleware.Metrics(mw.Recorder))
	}
	r.Use(middleware.Authenticate(mw.Verifier))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/bingos", h.Bingo.Routes())
		api.Mount("/items", h.Catalog.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server and blocks until it is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
