// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mcardoso/planner/backend/internal/config"
	"github.com/mcardoso/planner/backend/internal/handler"
	"github.com/mcardoso/planner/backend/internal/mail"
	"github.com/mcardoso/planner/backend/internal/metrics"
	"github.com/mcardoso/planner/backend/internal/middleware"
	"github.com/mcardoso/planner/backend/internal/notify"
	"github.com/mcardoso/planner/backend/internal/repo"
	"github.com/mcardoso/planner/backend/internal/service"
	"github.com/mcardoso/planner/backend/migrations"
	"github.com/mcardoso/planner/backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic. The ping is
	// retried with exponential backoff so the server survives being started
	// before its database container (compose ordering is not guaranteed).
	backoff := retry.WithMaxRetries(5, retry.NewExponential(time.Second))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("database not reachable yet", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// goose needs database/sql; stdlib.OpenDBFromPool borrows the pool's config.
	migrationDB := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, migrationDB, migrations.FS)
	if err != nil {
		slog.Error("failed to create migration provider", "error", err)
		os.Exit(1)
	}
	applied, err := provider.Up(context.Background())
	if err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := migrationDB.Close(); err != nil {
		slog.Error("failed to close migration connection", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", len(applied))

	// --- Mail -------------------------------------------------------------
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		FromName:    cfg.MailFromName,
		FromAddress: cfg.MailFromAddress,
	})
	if err != nil {
		slog.Error("failed to create mail sender", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(sender, logger, notify.DefaultSendTimeout)

	// --- Services ---------------------------------------------------------
	links := service.Links{
		APIBaseURL:      cfg.APIBaseURL,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	trips := service.NewTripService(repo.NewTripRepo(pool), dispatcher, links)
	participants := service.NewParticipantService(repo.NewParticipantRepo(pool), links)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → logging → Recoverer → CORS →
	// body cap → rate limit → metrics. RealIP must precede the rate limiter
	// so clients behind the proxy are keyed by their forwarded address.
	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(rateLimiter.Middleware())
	r.Use(metrics.Middleware)

	r.Mount("/", handler.NewServer(trips, participants).Routes())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(spec.OpenAPI)
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// (including any running notification fan-out) up to 15 seconds to
	// complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
