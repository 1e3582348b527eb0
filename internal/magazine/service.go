// Package magazine ties the content pipeline together for the adapters.
package magazine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/magazine/internal/apperr"
	"github.com/starford/magazine/internal/checksum"
	"github.com/starford/magazine/internal/facet"
	"github.com/starford/magazine/internal/manifest"
	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/repository"
	"github.com/starford/magazine/internal/search"
	"github.com/starford/magazine/internal/view"
	"github.com/starford/magazine/internal/warmcache"
)

// ArticleDetail is the single-article view plus transport metadata.
type ArticleDetail struct {
	view.Article
	ETag      string `json:"-"`
	FromCache bool   `json:"from_cache"`
}

// Facets holds every category and tag count of the visible collection.
type Facets struct {
	Categories []models.Facet `json:"categories"`
	Tags       []models.Facet `json:"tags"`
}

// Service coordinates the repository, warm cache and view projection.
type Service struct {
	repo  *repository.Repository
	cache *warmcache.Cache
	views *view.Projector
	log   *slog.Logger
}

// NewService creates a new site service. cache may be nil.
func NewService(repo *repository.Repository, cache *warmcache.Cache, views *view.Projector, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: cache, views: views, log: log}
}

// Collection loads the visible articles in canonical order.
func (s *Service) Collection(ctx context.Context) models.Collection {
	return s.repo.LoadVisibleSorted(ctx)
}

// Home returns the home page view model.
func (s *Service) Home(ctx context.Context, loc view.Locale) view.Home {
	return s.views.Home(s.Collection(ctx), loc)
}

// List returns the list page view model for q.
func (s *Service) List(ctx context.Context, q view.Query, loc view.Locale) view.List {
	return s.views.List(s.Collection(ctx), q, loc)
}

// Search ranks the visible collection against query. A limit of zero or
// less returns every match.
func (s *Service) Search(ctx context.Context, query string, limit int) []models.SearchResult {
	res := search.Rank(s.Collection(ctx), query)
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	if res == nil {
		res = []models.SearchResult{}
	}
	return res
}

// Facets counts categories and tags over the visible collection.
func (s *Service) Facets(ctx context.Context) Facets {
	items := s.Collection(ctx)
	return Facets{Categories: facet.Categories(items), Tags: facet.Tags(items)}
}

// Article loads one article for reading. The session's warm cache is
// consulted before the repository. It returns apperr.ErrInvalidArticle for
// a rejected name and apperr.ErrNotFound when the article cannot be loaded.
func (s *Service) Article(ctx context.Context, session, name string, loc view.Locale) (*ArticleDetail, error) {
	file, ok := manifest.Sanitize(name)
	if !ok {
		return nil, apperr.ErrInvalidArticle
	}

	if s.cache != nil {
		if raw, ok := s.cache.Read(ctx, session, string(file)); ok {
			return s.detail(file, raw, loc, true), nil
		}
	}

	raw, err := s.repo.ReadRaw(ctx, file)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArticle) {
			return nil, err
		}
		s.log.Warn("could not load article", slog.String("file", file.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("magazine: %s: %w", file, apperr.ErrNotFound)
	}
	return s.detail(file, string(raw), loc, false), nil
}

// Prime warms the session cache with name. Only an invalid name is
// reported; everything else is best effort.
func (s *Service) Prime(ctx context.Context, session, name string) error {
	if _, ok := manifest.Sanitize(name); !ok {
		return apperr.ErrInvalidArticle
	}
	if s.cache != nil {
		s.cache.Prime(ctx, session, name)
	}
	return nil
}

func (s *Service) detail(file models.ArticleFile, raw string, loc view.Locale, cached bool) *ArticleDetail {
	a := repository.Build(file, raw)
	return &ArticleDetail{
		Article:   s.views.Article(a, loc),
		ETag:      checksum.ETag([]byte(raw)),
		FromCache: cached,
	}
}
