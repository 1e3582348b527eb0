// Package models defines the domain types for the magazine.
package models

import (
	"regexp"
	"strings"
	"time"
)

// ArticleFile is a sanitized path, relative to the content root, that
// identifies one article's source text. Values are only produced by
// manifest.Sanitize.
type ArticleFile string

func (f ArticleFile) String() string { return string(f) }

// Recognised front-matter keys.
const (
	KeyTitle     = "Title"
	KeySubtitle  = "Subtitle"
	KeyAuthor    = "Author"
	KeyCategory  = "Category"
	KeyTags      = "Tags"
	KeyDate      = "Date"
	KeyThumbnail = "Thumbnail"
	KeyHidden    = "Hidden"
	KeyDraft     = "Draft"
)

// FrontMatter holds the raw string values of an article header.
// Unrecognised keys are kept in Extra.
type FrontMatter struct {
	Title     string            `json:"title,omitempty"`
	Subtitle  string            `json:"subtitle,omitempty"`
	Author    string            `json:"author,omitempty"`
	Category  string            `json:"category,omitempty"`
	Tags      string            `json:"tags,omitempty"`
	Date      string            `json:"date,omitempty"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	Hidden    string            `json:"hidden,omitempty"`
	Draft     string            `json:"draft,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`

	present map[string]struct{}
}

// Set stores value under key, overwriting any earlier value.
func (fm *FrontMatter) Set(key, value string) {
	switch key {
	case KeyTitle:
		fm.Title = value
	case KeySubtitle:
		fm.Subtitle = value
	case KeyAuthor:
		fm.Author = value
	case KeyCategory:
		fm.Category = value
	case KeyTags:
		fm.Tags = value
	case KeyDate:
		fm.Date = value
	case KeyThumbnail:
		fm.Thumbnail = value
	case KeyHidden:
		fm.Hidden = value
	case KeyDraft:
		fm.Draft = value
	default:
		if fm.Extra == nil {
			fm.Extra = make(map[string]string)
		}
		fm.Extra[key] = value
	}
	if fm.present == nil {
		fm.present = make(map[string]struct{})
	}
	fm.present[key] = struct{}{}
}

// Get returns the value stored under key.
func (fm FrontMatter) Get(key string) (string, bool) {
	if _, ok := fm.present[key]; !ok {
		return "", false
	}
	switch key {
	case KeyTitle:
		return fm.Title, true
	case KeySubtitle:
		return fm.Subtitle, true
	case KeyAuthor:
		return fm.Author, true
	case KeyCategory:
		return fm.Category, true
	case KeyTags:
		return fm.Tags, true
	case KeyDate:
		return fm.Date, true
	case KeyThumbnail:
		return fm.Thumbnail, true
	case KeyHidden:
		return fm.Hidden, true
	case KeyDraft:
		return fm.Draft, true
	}
	v, ok := fm.Extra[key]
	return v, ok
}

// Has reports whether the header declared key, even with an empty value.
func (fm FrontMatter) Has(key string) bool {
	_, ok := fm.present[key]
	return ok
}

// Len returns the number of distinct keys in the header.
func (fm FrontMatter) Len() int { return len(fm.present) }

// Map flattens the header into a key/value map.
func (fm FrontMatter) Map() map[string]string {
	out := make(map[string]string, len(fm.present))
	for k := range fm.present {
		v, _ := fm.Get(k)
		out[k] = v
	}
	return out
}

// Article is one parsed, derived manifest entry. It is not modified after
// construction.
type Article struct {
	File ArticleFile `json:"file"`
	Meta FrontMatter `json:"meta"`
	Body string      `json:"body"`
	// Date is the zero time when Meta.Date is missing or unparseable.
	Date time.Time `json:"date,omitzero"`
	Tags []string  `json:"tags"`
}

// HasDate reports whether a date could be derived from the header.
func (a Article) HasDate() bool { return !a.Date.IsZero() }

// Hidden reports whether the article is excluded from every listing.
func (a Article) Hidden() bool { return Truthy(a.Meta.Hidden) }

// Collection is a sequence of articles in canonical order.
type Collection []Article

// SearchResult pairs an article with its relevance score.
type SearchResult struct {
	Article Article `json:"article"`
	Score   int     `json:"score"`
}

// Facet is a category or tag value with its occurrence count.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var truthyRe = regexp.MustCompile(`(?i)^(true|yes|1)$`)

// Truthy interprets a boolean-ish flag value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthyRe.MatchString(strings.TrimSpace(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return false
}

// SplitTags splits a comma-separated tag list, dropping blank segments.
// Order and duplicates are preserved.
func SplitTags(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
