// Package view projects an ordered article collection into the view models
// of the home, list and article pages. Projection is pure: no I/O.
package view

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/magazine/internal/facet"
	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/search"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Config holds the projection limits and link targets.
type Config struct {
	TopStories       int
	LatestLimit      int
	SidebarLimit     int
	TrendingTags     int
	TagCloud         int
	WordsPerMinute   int
	DefaultThumbnail string
	ArticlePage      string
	ListPage         string
}

// DefaultConfig returns the stock projection settings.
func DefaultConfig() Config {
	return Config{
		TopStories:       4,
		LatestLimit:      12,
		SidebarLimit:     8,
		TrendingTags:     6,
		TagCloud:         20,
		WordsPerMinute:   200,
		DefaultThumbnail: "thumbnails/placeholder.png",
		ArticlePage:      "article.html",
		ListPage:         "newsletters.html",
	}
}

// BodyRenderer turns an article body into HTML.
type BodyRenderer interface {
	Render(body string) (string, error)
}

// Projector builds view models.
type Projector struct {
	cfg      Config
	renderer BodyRenderer
}

// New creates a Projector. A nil renderer falls back to escaped paragraphs.
func New(cfg Config, renderer BodyRenderer) *Projector {
	def := DefaultConfig()
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = def.WordsPerMinute
	}
	if cfg.DefaultThumbnail == "" {
		cfg.DefaultThumbnail = def.DefaultThumbnail
	}
	if cfg.ArticlePage == "" {
		cfg.ArticlePage = def.ArticlePage
	}
	if cfg.ListPage == "" {
		cfg.ListPage = def.ListPage
	}
	return &Projector{cfg: cfg, renderer: renderer}
}

// Card is the summary of one article used in every listing.
type Card struct {
	File      string   `json:"file"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Author    string   `json:"author"`
	Category  string   `json:"category,omitempty"`
	Date      string   `json:"date"`
	Thumbnail string   `json:"thumbnail"`
	Tags      []string `json:"tags"`
	URL       string   `json:"url"`
}

// Link is a facet value with a target URL.
type Link struct {
	Value  string `json:"value"`
	Count  int    `json:"count"`
	URL    string `json:"url"`
	Active bool   `json:"active,omitempty"`
}

// Home is the home page view model.
type Home struct {
	Empty      bool   `json:"empty"`
	Notice     string `json:"notice,omitempty"`
	Lead       *Card  `json:"lead,omitempty"`
	TopStories []Card `json:"top_stories,omitempty"`
	Latest     []Card `json:"latest,omitempty"`
	Sidebar    []Card `json:"sidebar,omitempty"`
	Trending   []Link `json:"trending,omitempty"`
}

// Query holds the list page parameters.
type Query struct {
	Text     string
	Category string
	Tags     []string
}

// List is the list page view model.
type List struct {
	Query      string   `json:"query,omitempty"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Count      int      `json:"count"`
	Summary    string   `json:"summary,omitempty"`
	Notice     string   `json:"notice,omitempty"`
	Items      []Card   `json:"items"`
	Categories []Link   `json:"categories"`
	TagCloud   []Link   `json:"tag_cloud"`
}

// Article is the single-article view model.
type Article struct {
	File        string `json:"file"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Author      string `json:"author"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
	Byline      string `json:"byline"`
	ReadingTime string `json:"reading_time"`
	Thumbnail   string `json:"thumbnail"`
	Tags        []Link `json:"tags"`
	Body        string `json:"body"`
	BodyHTML    string `json:"body_html"`
}

// Home projects the canonical collection into the home page. The latest
// grid and the sidebar are independent windows over the same range.
func (p *Projector) Home(items models.Collection, loc Locale) Home {
	if len(items) == 0 {
		return Home{Empty: true, Notice: "No articles yet"}
	}
	lead := p.Card(items[0], loc)
	start := 1 + p.cfg.TopStories
	return Home{
		Lead:       &lead,
		TopStories: p.cards(window(items, 1, p.cfg.TopStories), loc),
		Latest:     p.cards(window(items, start, p.cfg.LatestLimit), loc),
		Sidebar:    p.cards(window(items, start, p.cfg.SidebarLimit), loc),
		Trending:   p.tagLinks(facet.Top(facet.Tags(items), p.cfg.TrendingTags), Query{}, false),
	}
}

// List applies the category, tag and text filters in that order to the full
// visible collection. Facets are computed over the unfiltered collection.
func (p *Projector) List(items models.Collection, q Query, loc Locale) List {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)

	filtered := facet.Filter(items, q.Category, nil)
	filtered = facet.Filter(filtered, "", q.Tags)
	filtered = search.Search(filtered, q.Text)

	out := List{
		Query:      q.Text,
		Category:   q.Category,
		Tags:       q.Tags,
		Count:      len(filtered),
		Items:      p.cards(filtered, loc),
		Categories: p.categoryLinks(facet.Categories(items)),
		TagCloud:   p.tagLinks(facet.Top(facet.Tags(items), p.cfg.TagCloud), q, true),
	}
	if desc := describe(q); len(desc) > 0 {
		out.Summary = fmt.Sprintf("%d result(s) \u2014 %s", len(filtered), strings.Join(desc, " \u2022 "))
	}
	if len(filtered) == 0 {
		out.Notice = emptyNotice(q)
	}
	return out
}

// Article projects one article for reading.
func (p *Projector) Article(a models.Article, loc Locale) Article {
	title := a.Meta.Title
	if title == "" {
		title = "Untitled"
	}
	author := authorOf(a)
	date := loc.FormatDate(a.Date)

	tags := make([]Link, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, Link{Value: t, URL: p.listURL(Query{Tags: []string{t}})})
	}
	return Article{
		File:        string(a.File),
		Title:       title,
		Subtitle:    a.Meta.Subtitle,
		Author:      author,
		Category:    strings.TrimSpace(a.Meta.Category),
		Date:        date,
		Byline:      byline(date, author),
		ReadingTime: ReadingTime(a.Body, p.cfg.WordsPerMinute),
		Thumbnail:   ResolveThumbnail(a.Meta.Thumbnail, p.cfg.DefaultThumbnail),
		Tags:        tags,
		Body:        a.Body,
		BodyHTML:    p.renderBody(a.Body),
	}
}

// Card summarises one article.
func (p *Projector) Card(a models.Article, loc Locale) Card {
	title := a.Meta.Title
	if title == "" {
		title = string(a.File)
	}
	tags := a.Tags
	if len(tags) > 2 {
		tags = tags[:2]
	}
	return Card{
		File:      string(a.File),
		Title:     title,
		Subtitle:  a.Meta.Subtitle,
		Author:    authorOf(a),
		Category:  a.Meta.Category,
		Date:      loc.FormatDate(a.Date),
		Thumbnail: ResolveThumbnail(a.Meta.Thumbnail, p.cfg.DefaultThumbnail),
		Tags:      append([]string{}, tags...),
		URL:       p.ArticleURL(a.File),
	}
}

// ArticleURL returns the link to the single-article page for file.
func (p *Projector) ArticleURL(file models.ArticleFile) string {
	return p.cfg.ArticlePage + "?article=" + url.QueryEscape(string(file))
}

func (p *Projector) cards(items models.Collection, loc Locale) []Card {
	out := make([]Card, len(items))
	for i, a := range items {
		out[i] = p.Card(a, loc)
	}
	return out
}

func (p *Projector) renderBody(body string) string {
	if p.renderer != nil {
		if out, err := p.renderer.Render(body); err == nil {
			return out
		}
	}
	return Paragraphs(body)
}

func (p *Projector) categoryLinks(facets []models.Facet) []Link {
	out := make([]Link, len(facets))
	for i, f := range facets {
		out[i] = Link{Value: f.Value, Count: f.Count, URL: p.listURL(Query{Category: f.Value})}
	}
	return out
}

// tagLinks builds tag links. In toggle mode each link adds or removes its
// tag from the current query; otherwise it selects just that tag.
func (p *Projector) tagLinks(facets []models.Facet, q Query, toggleMode bool) []Link {
	out := make([]Link, len(facets))
	for i, f := range facets {
		l := Link{Value: f.Value, Count: f.Count}
		if toggleMode {
			next, on := toggle(q.Tags, strings.ToLower(f.Value))
			nq := q
			nq.Tags = next
			l.Active = on
			l.URL = p.listURL(nq)
		} else {
			l.URL = p.listURL(Query{Tags: []string{f.Value}})
		}
		out[i] = l
	}
	return out
}

func (p *Projector) listURL(q Query) string {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if len(q.Tags) > 0 {
		v.Set("tag", strings.Join(q.Tags, ","))
	}
	if len(v) == 0 {
		return p.cfg.ListPage
	}
	return p.cfg.ListPage + "?" + v.Encode()
}

// toggle removes tag from active if present, or appends it. It reports
// whether tag was active.
func toggle(active []string, tag string) ([]string, bool) {
	next := make([]string, 0, len(active)+1)
	on := false
	for _, t := range active {
		if t == tag {
			on = true
			continue
		}
		next = append(next, t)
	}
	if !on {
		next = append(next, tag)
	}
	return next, on
}

func describe(q Query) []string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, "\u201c"+q.Text+"\u201d")
	}
	if q.Category != "" {
		parts = append(parts, "Category: "+q.Category)
	}
	if len(q.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(q.Tags, ", "))
	}
	return parts
}

func emptyNotice(q Query) string {
	var b strings.Builder
	b.WriteString("No items found")
	if q.Text != "" {
		b.WriteString(" for \u201c" + q.Text + "\u201d")
	}
	if q.Category != "" {
		b.WriteString(" in " + q.Category)
	}
	if len(q.Tags) > 0 {
		b.WriteString(" with tags: " + strings.Join(q.Tags, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func window(items models.Collection, start, n int) models.Collection {
	if start >= len(items) || n <= 0 {
		return nil
	}
	end := min(start+n, len(items))
	return items[start:end]
}

func authorOf(a models.Article) string {
	if a.Meta.Author == "" {
		return "Staff"
	}
	return a.Meta.Author
}

func byline(date, author string) string {
	if date == "" {
		return author
	}
	return date + " \u2022 " + author
}

// ReadingTime estimates reading time at wpm words per minute, never less
// than one minute.
func ReadingTime(body string, wpm int) string {
	if wpm <= 0 {
		wpm = 200
	}
	words := len(strings.Fields(body))
	mins := int(math.Floor(float64(words)/float64(wpm) + 0.5))
	return fmt.Sprintf("%d min read", max(1, mins))
}

// ResolveThumbnail returns the thumbnail reference to use for value.
// Absolute URLs, protocol-relative URLs, absolute paths and relative paths
// all pass through; only an empty value is replaced by def.
func ResolveThumbnail(value, def string) string {
	if s := strings.TrimSpace(value); s != "" {
		return s
	}
	return def
}

// Paragraphs renders body as escaped paragraphs split on blank lines.
func Paragraphs(body string) string {
	var b strings.Builder
	for _, p := range blankLine.Split(body, -1) {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		b.WriteString("<p>" + html.EscapeString(p) + "</p>")
	}
	return b.String()
}
