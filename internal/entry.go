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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notesapp/internal/api"
	"github.com/starford/notesapp/internal/livews"
	"github.com/starford/notesapp/internal/mcpserver"
	"github.com/starford/notesapp/internal/noteservice"
	"github.com/starford/notesapp/internal/notestore"
	"github.com/starford/notesapp/internal/shell"
	"github.com/starford/notesapp/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("sqlite_watch", cfg.SQLite.Watch),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := openStore(cfg.SQLite.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker fed by store changes.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()
	db.OnChange(broker.PublishChange)

	svc := noteservice.NewService(db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, api.Streams{
		Events: broker,
		Live:   livews.NewHandler(svc, cfg.App.HTTP.AllowedOrigins...),
	})

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.List(r.Context(), noteservice.ListQuery{}); err != nil {
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

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.SQLite.Watch {
		g.Go(func() error {
			return db.WatchFile(gCtx, logger)
		})
	}

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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Streams never end on their own; closing the broker releases them.
		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunShell starts the interactive terminal front-end.
func RunShell(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := textLogger(app.stderr, cfg)

	db, err := openStore(cfg.SQLite.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	shellCtx, cancelShell := context.WithCancel(gCtx)
	defer cancelShell()

	if cfg.SQLite.Watch {
		watchCtx, cancelWatch := context.WithCancel(gCtx)
		defer cancelWatch()
		g.Go(func() error {
			// A failing watcher only costs live refresh of outside writes.
			if err := db.WatchFile(watchCtx, logger); err != nil {
				logger.Warn("external change watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
		g.Go(func() error {
			<-shellCtx.Done()
			cancelWatch()
			return nil
		})
	}

	g.Go(func() error {
		defer cancelShell()
		err := shell.New(db, app.stdin, app.stdout).Run(shellCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// RunMCP serves the MCP tools over stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := textLogger(app.stderr, cfg)

	db, err := openStore(cfg.SQLite.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(noteservice.NewService(db), app.version).ServeStdio()
}

// textLogger logs to w, leaving stdout to the terminal UI or protocol.
func textLogger(w io.Writer, cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func openStore(path string, logger *slog.Logger) (*notestore.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := notestore.OpenWithLogger(path, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return db, nil
}
