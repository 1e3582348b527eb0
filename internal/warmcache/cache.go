package warmcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/magazine/internal/manifest"
	"github.com/starford/magazine/internal/models"
)

// KeyPrefix namespaces cached article text.
const KeyPrefix = "pre:"

// Key returns the store key for file.
func Key(file models.ArticleFile) string { return KeyPrefix + string(file) }

// Fetcher reads the raw text of an article.
type Fetcher interface {
	ReadRaw(ctx context.Context, file models.ArticleFile) ([]byte, error)
}

// Cache is a best-effort, session-scoped store of raw article text.
// None of its operations report failures to the caller.
type Cache struct {
	backend Backend
	fetch   Fetcher
	ttl     time.Duration
	log     *slog.Logger
}

// New creates a Cache. A ttl of zero disables purging.
func New(backend Backend, fetch Fetcher, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{backend: backend, fetch: fetch, ttl: ttl, log: log}
}

// Prime stores the raw text of file for session unless it is already
// stored. Invalid names, fetch failures and store failures are ignored.
func (c *Cache) Prime(ctx context.Context, session, file string) {
	f, ok := manifest.Sanitize(file)
	if !ok || session == "" {
		return
	}
	key := Key(f)
	if v, ok, err := c.backend.Load(ctx, session, key); err == nil && ok && v != "" {
		return
	}
	raw, err := c.fetch.ReadRaw(ctx, f)
	if err != nil {
		c.log.Debug("warm cache prime failed", slog.String("file", string(f)), slog.String("error", err.Error()))
		return
	}
	if err := c.backend.Save(ctx, session, key, string(raw)); err != nil {
		c.log.Debug("warm cache store failed", slog.String("file", string(f)), slog.String("error", err.Error()))
	}
}

// Read returns the stored text of file for session. A blank stored value
// reads as absent.
func (c *Cache) Read(ctx context.Context, session, file string) (string, bool) {
	f, ok := manifest.Sanitize(file)
	if !ok || session == "" {
		return "", false
	}
	v, ok, err := c.backend.Load(ctx, session, Key(f))
	if err != nil {
		c.log.Debug("warm cache read failed", slog.String("file", string(f)), slog.String("error", err.Error()))
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// RunPurge removes expired entries every interval until ctx is done.
func (c *Cache) RunPurge(ctx context.Context, interval time.Duration) error {
	if c.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			c.PurgeExpired(ctx, now)
		}
	}
}

// PurgeExpired removes entries older than the TTL as of now.
func (c *Cache) PurgeExpired(ctx context.Context, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	n, err := c.backend.Purge(ctx, now.Add(-c.ttl))
	if err != nil {
		c.log.Warn("warm cache purge failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		c.log.Debug("warm cache purged", slog.Int("entries", n))
	}
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}
