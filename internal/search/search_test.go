package search

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/repository"
)

func article(file, raw string) models.Article {
	return repository.Build(models.ArticleFile(file), raw)
}

func names(items models.Collection) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = string(a.File)
	}
	return out
}

func TestScore_Weights(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"title", "---\nTitle: Quantum Leap\n---\n", 8},
		{"subtitle", "---\nSubtitle: quantum things\n---\n", 5},
		{"author", "---\nAuthor: Dr Quantum\n---\n", 4},
		{"category", "---\nCategory: Quantum\n---\n", 4},
		{"tag once", "---\nTags: quantum, QUANTUM computing\n---\n", 3},
		{"body", "---\n---\nAll about quantum.", 1},
		{"additive", "---\nTitle: Quantum\nSubtitle: Quantum\nTags: quantum\n---\nquantum", 17},
		{"none", "---\nTitle: Classical\n---\nNothing here.", 0},
	}
	for _, c := range cases {
		if got := Score(article("a.txt", c.raw), "quantum"); got != c.want {
			t.Errorf("%s: score = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestScore_BodyPrefixOnly(t *testing.T) {
	long := make([]rune, 0, 900)
	for range 800 {
		long = append(long, 'x')
	}
	body := string(long) + " needle"
	if got := Score(article("a.txt", body), "needle"); got != 0 {
		t.Errorf("match past the first 800 characters scored %d", got)
	}
	if got := Score(article("a.txt", "\u00e9\u00e9\u00e9 needle"), "needle"); got != 1 {
		t.Errorf("short body score = %d", got)
	}
}

func TestRank_SubtitleBelowTitle(t *testing.T) {
	items := models.Collection{
		article("sub.txt", "---\nSubtitle: Solar power\n---\n"),
		article("title.txt", "---\nTitle: Solar power\n---\n"),
		article("miss.txt", "---\nTitle: Wind\n---\n"),
	}
	got := Rank(items, "  SOLAR ")
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2 (zero score excluded)", len(got))
	}
	if got[0].Article.File != "title.txt" || got[0].Score != 8 {
		t.Errorf("first = %s/%d", got[0].Article.File, got[0].Score)
	}
	if got[1].Article.File != "sub.txt" || got[1].Score != 5 {
		t.Errorf("second = %s/%d", got[1].Article.File, got[1].Score)
	}
}

func TestRank_TieBreak(t *testing.T) {
	items := models.Collection{
		article("a.txt", "---\nTitle: go\n---\n"),
		article("old.txt", "---\nTitle: go\nDate: 2020-01-01\n---\n"),
		article("c.txt", "---\nTitle: go\n---\n"),
		article("new.txt", "---\nTitle: go\nDate: 2024-01-01\n---\n"),
	}
	got := names(Search(items, "go"))
	want := []string{"new.txt", "old.txt", "c.txt", "a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSearch_BlankQueryIsIdentity(t *testing.T) {
	items := models.Collection{
		article("z.txt", "body"),
		article("a.txt", "body"),
	}
	items[0].Date = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, q := range []string{"", "   "} {
		if got := Search(items, q); !reflect.DeepEqual(got, items) {
			t.Errorf("Search(%q) changed the input: %v", q, names(got))
		}
	}
}
