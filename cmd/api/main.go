// Package main is the entry point for the Lifelog API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
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
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/dkeeling/lifelog/internal/config"
	"github.com/dkeeling/lifelog/internal/handler"
	"github.com/dkeeling/lifelog/internal/middleware"
	"github.com/dkeeling/lifelog/internal/notes"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/service"
	"github.com/dkeeling/lifelog/internal/store"
	"github.com/dkeeling/lifelog/internal/taxonomy"
	"github.com/dkeeling/lifelog/migrations"
)

// maxBodySize caps the size of any request body. Note payloads with embedded
// photos are the largest expected documents; 4 MiB leaves generous headroom.
const maxBodySize = 4 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
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

	// --- Document store ---------------------------------------------------
	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store; all data is lost on shutdown")
		st = store.NewMemory()

	case "postgres":
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately — the first query does.
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")

		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}

		st = store.NewPostgres(pool)
	}

	// --- Repositories and services ----------------------------------------
	tagRepo := repo.NewTagRepo(st.Tags())
	personRepo := repo.NewPersonRepo(st.People())
	noteRepo := repo.NewNoteRepo(st.Notes())

	graph := taxonomy.New(tagRepo)
	registry := notes.Default()
	integrity := service.NewIntegrityChecker(noteRepo, personRepo)

	tagSvc := service.NewTagService(tagRepo, integrity)
	personSvc := service.NewPersonService(personRepo, graph, integrity)
	noteSvc := service.NewNoteService(noteRepo, personRepo, graph, registry)
	exportSvc := service.NewExportService(noteRepo, tagRepo, personRepo)

	srvHandler := handler.NewServer(tagSvc, personSvc, noteSvc, exportSvc, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
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

// migrate applies all pending goose migrations using a short-lived
// database/sql connection. goose requires *sql.DB, so this does not share
// the pgxpool used for serving requests.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("applied migration", "migration", res.Source.Path)
	}
	return nil
}
