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

	"github.com/starford/magazine/internal/api"
	"github.com/starford/magazine/internal/magazine"
	"github.com/starford/magazine/internal/mcpserver"
	"github.com/starford/magazine/internal/sse"
	"github.com/starford/magazine/internal/storage"
	"github.com/starford/magazine/internal/validate"
	"github.com/starford/magazine/internal/watcher"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("content_base_url", cfg.Content.BaseURL),
		slog.String("warm_cache", cfg.WarmCache.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, cache, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newRouter(svc, broker, cfg.App.HTTP.SecureCookies),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Live reload only makes sense for a local content directory.
	if cfg.Watch.Enabled && cfg.Content.Local() {
		g.Go(func() error {
			err := watcher.Watch(gCtx, cfg.Content.Dir,
				watcher.Options{Debounce: cfg.Watch.Debounce, Extensions: []string{".txt", ".json"}},
				logger, broker.PublishChange)
			if err != nil {
				logger.Warn("live reload disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		return cache.RunPurge(gCtx, cfg.WarmCache.PurgeInterval)
	})

	// Start HTTP server.
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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the background workers stop
// once the server has shut down.
var errShutdown = errors.New("shutdown")

func newRouter(svc *magazine.Service, events http.Handler, secureCookies bool) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, events, secureCookies))
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
// Logs go to stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))}, opts...))
	if err != nil {
		return err
	}

	svc, cache, err := newService(app.config, app.logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	return mcpserver.New(svc, app.version).ServeStdio()
}

// RunValidate checks the local content directory. A non-nil error means
// the check could not run; findings are reported in the returned Report.
func RunValidate(ctx context.Context, opts ...Option) (*validate.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config.Content
	if !cfg.Local() {
		return nil, fmt.Errorf("validate: content.dir is required")
	}
	store, err := storage.NewFS(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return validate.Run(ctx, store, validate.Options{
		ManifestPath: cfg.Manifest,
		ArticleDir:   cfg.ArticleDir,
	})
}
