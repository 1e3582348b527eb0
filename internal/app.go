package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/starford/magazine/internal/magazine"
	"github.com/starford/magazine/internal/render"
	"github.com/starford/magazine/internal/repository"
	"github.com/starford/magazine/internal/storage"
	"github.com/starford/magazine/internal/view"
	"github.com/starford/magazine/internal/warmcache"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// newSource opens the configured content origin.
func newSource(cfg ContentConfig) (storage.Provider, error) {
	if cfg.Local() {
		store, err := storage.NewFS(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewHTTP(cfg.BaseURL, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// newService wires the content pipeline. The returned cache must be closed
// by the caller.
func newService(cfg *Config, logger *slog.Logger) (*magazine.Service, *warmcache.Cache, error) {
	src, err := newSource(cfg.Content)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.New(src,
		repository.WithManifest(cfg.Content.Manifest),
		repository.WithArticleDir(cfg.Content.ArticleDir),
		repository.WithConcurrency(cfg.Content.Concurrency),
		repository.WithLogger(logger),
	)

	backend, err := warmcache.Open(cfg.WarmCache.Backend, cfg.WarmCache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init warm cache: %w", err)
	}
	cache := warmcache.New(backend, repo, cfg.WarmCache.TTL, logger)

	views := view.New(cfg.View.Projection(), render.NewMarkdown())
	return magazine.NewService(repo, cache, views, logger), cache, nil
}
