// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/sse"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	app.logger = NewLogger(app.logOutput, app.config.App.LogLevel)
	slog.SetDefault(app.logger)
	return app, nil
}

// Run starts the HTTP server and the collection watcher. The booklet is
// exported to the configured output once the server has stopped.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("settings_path", cfg.Output.SettingsPath),
		slog.String("toc", cfg.Booklet.TOC),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	ws, err := OpenWorkspace(cfg, logger, noteservice.WithChangeHook(func(kind noteservice.ChangeKind, id string) {
		broker.PublishChange(sse.Kind(kind), id)
	}))
	if err != nil {
		return err
	}
	defer ws.Close()
	svc := ws.Service

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","notes":%d}`, svc.Len(req.Context()))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the collection when the CSV is edited outside this process.
	g.Go(func() error {
		err := index.Watch(gCtx, ws.Dir(), ws.File(), index.DefaultDebounce, logger, func() {
			if _, err := svc.Reload(gCtx); err != nil {
				logger.Error("reload failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			logger.Warn("file watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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
		return errShutdown
	})

	err = g.Wait()
	if errors.Is(err, errShutdown) {
		err = nil
	}

	if path, exportErr := svc.Export(context.Background(), ""); exportErr != nil {
		logger.Error("booklet export on exit failed", slog.String("error", exportErr.Error()))
	} else {
		logger.Info("Booklet exported on exit", slog.String("path", path))
	}

	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the errgroup so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to the configured
// log output, which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	ws, err := OpenWorkspace(app.config, app.logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	app.logger.Info("Serving MCP on stdio", slog.String("store_path", app.config.Store.Path))
	return mcpserver.New(ws.Service).ServeStdio()
}
