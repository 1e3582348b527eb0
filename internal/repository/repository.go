// Package repository loads, derives, filters and orders the site's articles.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/magazine/internal/apperr"
	"github.com/starford/magazine/internal/manifest"
	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/parser"
	"github.com/starford/magazine/internal/storage"
)

// DefaultConcurrency bounds the number of article fetches in flight.
const DefaultConcurrency = 16

// Repository reads articles listed in the manifest from a storage.Provider.
type Repository struct {
	src          storage.Provider
	manifestPath string
	dir          string
	concurrency  int
	log          *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithManifest sets the manifest path relative to the content root.
func WithManifest(p string) Option {
	return func(r *Repository) { r.manifestPath = p }
}

// WithArticleDir sets the directory un-namespaced entries are read from.
func WithArticleDir(dir string) Option {
	return func(r *Repository) { r.dir = dir }
}

// WithConcurrency sets the fetch limit. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger used for dropped items.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a Repository over src.
func New(src storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		src:          src,
		manifestPath: manifest.DefaultPath,
		dir:          manifest.DefaultDir,
		concurrency:  DefaultConcurrency,
		log:          slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Manifest returns the sanitized manifest entries.
func (r *Repository) Manifest(ctx context.Context) []models.ArticleFile {
	return manifest.Load(ctx, r.src, r.manifestPath, r.log)
}

// LoadVisibleSorted loads every manifest entry concurrently, drops the ones
// that fail or are hidden, and returns the rest in canonical order.
// The result never depends on fetch completion order.
func (r *Repository) LoadVisibleSorted(ctx context.Context) models.Collection {
	files := r.Manifest(ctx)
	if len(files) == 0 {
		return models.Collection{}
	}

	results := make([]*models.Article, len(files))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			a, err := r.LoadArticle(ctx, f)
			if err != nil {
				r.log.Warn("dropping article", slog.String("file", f.String()), slog.String("error", err.Error()))
				return nil
			}
			results[i] = &a
			return nil
		})
	}
	_ = g.Wait()

	items := make(models.Collection, 0, len(results))
	for _, a := range results {
		if a != nil && !a.Hidden() {
			items = append(items, *a)
		}
	}
	Sort(items)
	return items
}

// LoadArticle fetches and parses a single article. Hidden articles are
// returned as well; filtering is up to the caller.
func (r *Repository) LoadArticle(ctx context.Context, file models.ArticleFile) (models.Article, error) {
	raw, err := r.ReadRaw(ctx, file)
	if err != nil {
		return models.Article{}, err
	}
	return Build(file, string(raw)), nil
}

// ReadRaw returns the unparsed text of file.
func (r *Repository) ReadRaw(ctx context.Context, file models.ArticleFile) ([]byte, error) {
	f, ok := manifest.Sanitize(string(file))
	if !ok {
		return nil, fmt.Errorf("repository: %q: %w", file, apperr.ErrInvalidArticle)
	}
	raw, err := r.src.Read(ctx, manifest.ArticlePath(r.dir, f))
	if err != nil {
		return nil, fmt.Errorf("repository: load %s: %w", f, err)
	}
	return raw, nil
}

// Build parses raw article text and attaches the derived date and tags.
func Build(file models.ArticleFile, raw string) models.Article {
	res := parser.Parse(raw)
	return models.Article{
		File: file,
		Meta: res.Meta,
		Body: res.Body,
		Date: ParseDate(res.Meta.Date),
		Tags: models.SplitTags(res.Meta.Tags),
	}
}

// ParseDate leniently interprets a header date in UTC. Anything it cannot
// read yields the zero time.
func ParseDate(s string) (t time.Time) {
	if s == "" {
		return time.Time{}
	}
	// dateparse can panic on malformed input.
	defer func() {
		if recover() != nil {
			t = time.Time{}
		}
	}()
	d, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return d.UTC()
}

// Sort orders items canonically in place: dated articles first, newest
// first; undated ones after them by filename, descending.
func Sort(items models.Collection) {
	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		return Less(c, items[i], items[j])
	})
}

// Less reports whether a sorts before b in canonical order.
func Less(c *collate.Collator, a, b models.Article) bool {
	switch {
	case a.HasDate() && b.HasDate():
		return a.Date.After(b.Date)
	case a.HasDate():
		return true
	case b.HasDate():
		return false
	}
	return c.CompareString(string(a.File), string(b.File)) > 0
}
