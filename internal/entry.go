// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/labnote/internal/api"
	"github.com/starford/labnote/internal/index"
	"github.com/starford/labnote/internal/labservice"
	"github.com/starford/labnote/internal/mcpserver"
	"github.com/starford/labnote/internal/sse"
	"github.com/starford/labnote/internal/storage"
)

const snapshotThrottle = 2 * time.Second

func newApplication(opts []Option, defaultLog io.Writer) (*application, *slog.Logger, error) {
	app := &application{version: "dev", logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// Lab bundles the opened vault, index and service.
type Lab struct {
	Service *labservice.Service
	DB      *index.DB
	Store   *storage.FS
}

// Close releases the index.
func (l *Lab) Close() error {
	return l.DB.Close()
}

// OpenLab opens the vault and index described by cfg and performs an
// initial sync. The caller must Close the returned Lab.
func OpenLab(ctx context.Context, cfg *Config, logger *slog.Logger) (*Lab, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svc := labservice.NewService(store, db, labservice.Options{
		HistoryLimit: cfg.Search.HistoryLimit,
		Search:       cfg.Search.Options(),
	}, logger)

	if err := svc.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
		if err := svc.Refresh(); err != nil {
			db.Close()
			return nil, fmt.Errorf("load index: %w", err)
		}
	}

	return &Lab{Service: svc, DB: db, Store: store}, nil
}

// Run starts the HTTP server and the vault watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	lab, err := OpenLab(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lab.Close()

	broker := sse.NewBroker(snapshotThrottle)
	defer broker.Close()
	lab.Service.SetNotifier(broker)

	apiRouter := api.NewRouter(lab.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := lab.DB.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return index.Watch(gCtx, lab.DB, lab.Store, cfg.Vault.Path, logger, lab.Service.HandleChange)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio while the vault watcher keeps the
// snapshot fresh.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	lab, err := OpenLab(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lab.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := index.Watch(ctx, lab.DB, lab.Store, cfg.Vault.Path, logger, lab.Service.HandleChange); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Starting MCP server", slog.String("version", app.version))
	return mcpserver.New(lab.Service, app.version).ServeStdio()
}
