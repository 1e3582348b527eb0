package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/magazine/internal/manifest"
	"github.com/starford/magazine/internal/repository"
	"github.com/starford/magazine/internal/view"
	"github.com/starford/magazine/internal/warmcache"
	"github.com/starford/magazine/internal/watcher"
)

var httpURLRe = regexp.MustCompile(`^https?://`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	View      ViewConfig        `yaml:"view"`
	WarmCache WarmCacheConfig   `yaml:"warm_cache"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.View.Validate(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if err := c.WarmCache.Validate(); err != nil {
		return fmt.Errorf("warm_cache: %w", err)
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool `yaml:"secure_cookies"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig says where the manifest and articles are read from.
// Exactly one of Dir and BaseURL is set.
type ContentConfig struct {
	Dir         string `yaml:"dir"`
	BaseURL     string `yaml:"base_url"`
	Manifest    string `yaml:"manifest"`
	ArticleDir  string `yaml:"article_dir"`
	Concurrency int    `yaml:"concurrency"`
}

// UnmarshalYAML drops a default Dir when the file names a BaseURL, so a
// remote origin does not need an explicit empty dir.
func (c *ContentConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ContentConfig
	def := c.Dir
	p := plain(*c)
	p.Dir = ""
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Dir == "" && p.BaseURL == "" {
		p.Dir = def
	}
	*c = ContentConfig(p)
	return nil
}

// Local reports whether content is read from a directory.
func (c *ContentConfig) Local() bool { return c.Dir != "" }

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if (c.Dir == "") == (c.BaseURL == "") {
		return errors.New("exactly one of dir and base_url must be set")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Match(httpURLRe).Error("must be an http or https URL")),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.Concurrency, validation.Min(0)),
	)
}

// ViewConfig holds page limits. A zero limit leaves that section empty.
type ViewConfig struct {
	TopStories       int    `yaml:"top_stories"`
	LatestLimit      int    `yaml:"latest_limit"`
	SidebarLimit     int    `yaml:"sidebar_limit"`
	TrendingTags     int    `yaml:"trending_tags"`
	TagCloud         int    `yaml:"tag_cloud"`
	WordsPerMinute   int    `yaml:"words_per_minute"`
	DefaultThumbnail string `yaml:"default_thumbnail"`
}

// Validate validates the view configuration.
func (c *ViewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TopStories, validation.Min(0)),
		validation.Field(&c.LatestLimit, validation.Min(0)),
		validation.Field(&c.SidebarLimit, validation.Min(0)),
		validation.Field(&c.TrendingTags, validation.Min(0)),
		validation.Field(&c.TagCloud, validation.Min(0)),
		validation.Field(&c.WordsPerMinute, validation.Required, validation.Min(1)),
	)
}

// Projection converts the settings into view.Config.
func (c *ViewConfig) Projection() view.Config {
	out := view.DefaultConfig()
	out.TopStories = c.TopStories
	out.LatestLimit = c.LatestLimit
	out.SidebarLimit = c.SidebarLimit
	out.TrendingTags = c.TrendingTags
	out.TagCloud = c.TagCloud
	out.WordsPerMinute = c.WordsPerMinute
	if c.DefaultThumbnail != "" {
		out.DefaultThumbnail = c.DefaultThumbnail
	}
	return out
}

// WarmCacheConfig configures the per-session article cache.
type WarmCacheConfig struct {
	Backend       string        `yaml:"backend"`
	Path          string        `yaml:"path"`
	TTL           time.Duration `yaml:"ttl"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

// Validate validates the warm cache configuration.
func (c *WarmCacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(warmcache.KindMemory, warmcache.KindSQLite, warmcache.KindBolt)),
		validation.Field(&c.Path, validation.When(c.Backend == warmcache.KindSQLite || c.Backend == warmcache.KindBolt, validation.Required)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
		validation.Field(&c.PurgeInterval, validation.Min(time.Duration(0))),
	)
}

// WatchConfig configures live reload for a local content directory.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	v := view.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:         "./site",
			Manifest:    manifest.DefaultPath,
			ArticleDir:  manifest.DefaultDir,
			Concurrency: repository.DefaultConcurrency,
		},
		View: ViewConfig{
			TopStories:       v.TopStories,
			LatestLimit:      v.LatestLimit,
			SidebarLimit:     v.SidebarLimit,
			TrendingTags:     v.TrendingTags,
			TagCloud:         v.TagCloud,
			WordsPerMinute:   v.WordsPerMinute,
			DefaultThumbnail: v.DefaultThumbnail,
		},
		WarmCache: WarmCacheConfig{
			Backend:       warmcache.KindMemory,
			TTL:           30 * time.Minute,
			PurgeInterval: 5 * time.Minute,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: watcher.DefaultDebounce,
		},
	}
}
