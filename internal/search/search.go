// Package search ranks articles against a free-text query.
package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/magazine/internal/models"
)

// Field weights. A field contributes its weight when it contains the query.
const (
	WeightTitle    = 8
	WeightSubtitle = 5
	WeightAuthor   = 4
	WeightCategory = 4
	WeightTag      = 3
	WeightBody     = 1
)

// bodyPrefix is how many characters of the body are searched.
const bodyPrefix = 800

// Score returns the relevance of a for the lowercased, trimmed query q.
func Score(a models.Article, q string) int {
	if q == "" {
		return 0
	}
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	score := 0
	if contains(a.Meta.Title) {
		score += WeightTitle
	}
	if contains(a.Meta.Subtitle) {
		score += WeightSubtitle
	}
	if contains(a.Meta.Author) {
		score += WeightAuthor
	}
	if contains(a.Meta.Category) {
		score += WeightCategory
	}
	for _, t := range a.Tags {
		if contains(t) {
			score += WeightTag
			break
		}
	}
	body := []rune(strings.ToLower(a.Body))
	if len(body) > bodyPrefix {
		body = body[:bodyPrefix]
	}
	if strings.Contains(string(body), q) {
		score += WeightBody
	}
	return score
}

// Rank scores every item, drops the ones that do not match and orders the
// rest by score, then date (newest first, undated last), then filename
// descending. A blank query yields nil.
func Rank(items models.Collection, query string) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	results := make([]models.SearchResult, 0, len(items))
	for _, a := range items {
		if s := Score(a, q); s > 0 {
			results = append(results, models.SearchResult{Article: a, Score: s})
		}
	}

	c := collate.New(language.Und)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.Article.HasDate() && b.Article.HasDate():
			if !a.Article.Date.Equal(b.Article.Date) {
				return a.Article.Date.After(b.Article.Date)
			}
		case a.Article.HasDate():
			return true
		case b.Article.HasDate():
			return false
		}
		return c.CompareString(string(a.Article.File), string(b.Article.File)) > 0
	})
	return results
}

// Search returns the articles matching query in ranked order. A blank query
// returns items unchanged.
func Search(items models.Collection, query string) models.Collection {
	if strings.TrimSpace(query) == "" {
		return items
	}
	ranked := Rank(items, query)
	out := make(models.Collection, len(ranked))
	for i, r := range ranked {
		out[i] = r.Article
	}
	return out
}
