// Package facet filters articles by category and tag and counts facet values.
package facet

import (
	"sort"
	"strings"

	"github.com/starford/magazine/internal/models"
)

// Filter returns the items matching category and any of tags, preserving
// their order. An empty category or an empty tag set disables that check.
// Comparisons are case-insensitive.
func Filter(items models.Collection, category string, tags []string) models.Collection {
	cat := strings.TrimSpace(category)
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want[t] = struct{}{}
		}
	}
	if cat == "" && len(want) == 0 {
		return items
	}

	out := make(models.Collection, 0, len(items))
	for _, a := range items {
		if cat != "" && !strings.EqualFold(strings.TrimSpace(a.Meta.Category), cat) {
			continue
		}
		if len(want) > 0 && !hasAnyTag(a, want) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func hasAnyTag(a models.Article, want map[string]struct{}) bool {
	for _, t := range a.Tags {
		if _, ok := want[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}

// Categories counts the distinct non-empty categories in items.
func Categories(items models.Collection) []models.Facet {
	var c counter
	for _, a := range items {
		c.add(a.Meta.Category)
	}
	return c.facets()
}

// Tags counts the distinct non-empty tags in items. An article contributes
// once per occurrence of a tag.
func Tags(items models.Collection) []models.Facet {
	var c counter
	for _, a := range items {
		for _, t := range a.Tags {
			c.add(t)
		}
	}
	return c.facets()
}

// Top returns at most n facets.
func Top(facets []models.Facet, n int) []models.Facet {
	if n >= 0 && len(facets) > n {
		return facets[:n]
	}
	return facets
}

// ParseTags splits a comma-separated tag parameter into lowercased tags.
func ParseTags(param string) []string {
	out := []string{}
	for _, t := range models.SplitTags(param) {
		out = append(out, strings.ToLower(t))
	}
	return out
}

// counter tallies values, remembering first-seen order for ties.
type counter struct {
	index map[string]int
	seen  []models.Facet
}

func (c *counter) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[v]; ok {
		c.seen[i].Count++
		return
	}
	c.index[v] = len(c.seen)
	c.seen = append(c.seen, models.Facet{Value: v, Count: 1})
}

func (c *counter) facets() []models.Facet {
	out := append([]models.Facet{}, c.seen...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
