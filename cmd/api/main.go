// Copyright (c) 2026 RuneBingo. All rights reserved.

// Command api is the entry point for the RuneBingo HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Load message catalogs.
//  4. Connect to PostgreSQL (pgxpool) and Redis.
//  5. Run database migrations (idempotent).
//  6. Start the activity event bus.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/api"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/catalog"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/config"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/constants"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/eventbus"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/i18n"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/metrics"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/migration"
	pgstore "github.com/RuneBingo/RuneBingo-sub000/internal/platform/postgres"
	redisstore "github.com/RuneBingo/RuneBingo-sub000/internal/platform/redis"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
	"github.com/RuneBingo/RuneBingo-sub000/internal/users/auth"
	"github.com/RuneBingo/RuneBingo-sub000/migrations"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/clock"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("[RuneBingo] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// ── 3. Message Catalogs ───────────────────────────────────────────────
	messages, err := i18n.Load(cfg.DefaultLocale)
	must(log, err, "load message catalogs")
	respond.SetTranslator(messages)

	// Startup deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 4. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log, cfg.Debug)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	if cfg.MigrationPath != "" {
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")
	} else {
		must(log, migration.RunUpFS(cfg.DatabaseURL, migrations.FS, log), "run embedded migrations")
	}

	// ── 6. Event Bus ──────────────────────────────────────────────────────
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	registry := metrics.New()

	bus, err := eventbus.New(log)
	must(log, err, "create event bus")

	activityStore := activity.NewPostgresStore(pool)
	activity.NewConsumer(activityStore, registry, log).Register(bus.Router(), bus.Subscriber())

	go func() {
		if err := bus.Run(appCtx); err != nil {
			log.Error("event_bus_stopped", slog.Any("error", err))
		}
	}()
	<-bus.Running()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(rdb),
		tokens,
		clock.Real(),
		log,
	)

	catalogService := catalog.NewService(
		catalog.NewCachedStore(catalog.NewPostgresStore(pool), rdb, log),
		log,
	)

	activityService := activity.NewService(bus.Publisher(), activityStore, authService, messages, log)

	bingoService := bingo.NewService(
		bingo.NewPostgresStore(pool),
		authService,
		catalogService,
		activityService,
		clock.Real(),
		log,
	).WithMetrics(registry)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Bingo:     bingo.NewHandler(bingoService),
		Catalog:   catalog.NewHandler(catalogService),
	}
	middlewares := api.Middlewares{
		Verifier: tokens,
		Locales:  messages,
	}
	if cfg.MetricsEnabled {
		handlers.Metrics = registry.Handler()
		middlewares.Recorder = registry
	}

	server := api.NewServer(appCtx, cfg, log, middlewares, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	shutdownErr := server.Shutdown(constants.ShutdownTimeout)

	// Drain pending activity messages before the pool closes.
	appCancel()
	if err := bus.Close(); err != nil {
		log.Error("event_bus_close_error", slog.Any("error", err))
	}

	if shutdownErr != nil {
		log.Error("shutdown_error", slog.Any("error", shutdownErr))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "runebingo"))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
