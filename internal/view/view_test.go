package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/repository"
)

func collection(n int) models.Collection {
	items := make(models.Collection, n)
	for i := range items {
		items[i] = repository.Build(models.ArticleFile(fmt.Sprintf("%02d.txt", i)),
			fmt.Sprintf("---\nTitle: T%d\nTags: t%d, common\n---\nbody", i, i%3))
	}
	return items
}

func TestHome_Windows(t *testing.T) {
	p := New(DefaultConfig(), nil)
	h := p.Home(collection(30), DefaultLocale)

	if h.Empty || h.Lead == nil || h.Lead.File != "00.txt" {
		t.Fatalf("lead = %+v", h.Lead)
	}
	if len(h.TopStories) != 4 || h.TopStories[0].File != "01.txt" || h.TopStories[3].File != "04.txt" {
		t.Errorf("top stories = %v", h.TopStories)
	}
	if len(h.Latest) != 12 || h.Latest[0].File != "05.txt" || h.Latest[11].File != "16.txt" {
		t.Errorf("latest window wrong: %d items", len(h.Latest))
	}
	if len(h.Sidebar) != 8 || h.Sidebar[0].File != "05.txt" || h.Sidebar[7].File != "12.txt" {
		t.Errorf("sidebar window wrong: %d items", len(h.Sidebar))
	}
	if len(h.Trending) != 4 || h.Trending[0].Value != "common" || h.Trending[0].Count != 30 {
		t.Errorf("trending = %v", h.Trending)
	}
	if h.Trending[0].URL != "newsletters.html?tag=common" {
		t.Errorf("trending url = %q", h.Trending[0].URL)
	}
}

func TestHome_ShortAndEmpty(t *testing.T) {
	p := New(DefaultConfig(), nil)
	h := p.Home(collection(3), DefaultLocale)
	if len(h.TopStories) != 2 || len(h.Latest) != 0 || len(h.Sidebar) != 0 {
		t.Errorf("short home = %+v", h)
	}

	e := p.Home(models.Collection{}, DefaultLocale)
	if !e.Empty || e.Lead != nil || e.TopStories != nil || e.Notice == "" {
		t.Errorf("empty home = %+v", e)
	}
}

func TestList_FiltersInOrder(t *testing.T) {
	items := models.Collection{
		repository.Build("a.txt", "---\nTitle: Go news\nCategory: Tech\nTags: go\n---\n"),
		repository.Build("b.txt", "---\nTitle: Rust news\nCategory: Tech\nTags: rust\n---\n"),
		repository.Build("c.txt", "---\nTitle: Go party\nCategory: Life\nTags: go\n---\n"),
	}
	p := New(DefaultConfig(), nil)

	l := p.List(items, Query{Text: "news", Category: "tech", Tags: []string{"go"}}, DefaultLocale)
	if l.Count != 1 || l.Items[0].File != "a.txt" {
		t.Fatalf("items = %+v", l.Items)
	}
	want := "1 result(s) \u2014 \u201cnews\u201d \u2022 Category: tech \u2022 Tags: go"
	if l.Summary != want {
		t.Errorf("summary = %q, want %q", l.Summary, want)
	}
	if len(l.Categories) != 2 || l.Categories[0].Value != "Tech" || l.Categories[0].Count != 2 {
		t.Errorf("categories = %v", l.Categories)
	}
	for _, link := range l.TagCloud {
		switch link.Value {
		case "go":
			if !link.Active || link.URL != "newsletters.html?category=tech&q=news" {
				t.Errorf("go link = %+v", link)
			}
		case "rust":
			if link.Active || link.URL != "newsletters.html?category=tech&q=news&tag=go%2Crust" {
				t.Errorf("rust link = %+v", link)
			}
		}
	}
}

func TestList_NoFiltersAndEmptyNotice(t *testing.T) {
	items := collection(3)
	p := New(DefaultConfig(), nil)

	all := p.List(items, Query{}, DefaultLocale)
	if all.Count != 3 || all.Summary != "" || all.Notice != "" {
		t.Errorf("unfiltered list = %+v", all)
	}

	none := p.List(items, Query{Text: "zzz", Category: "Sport"}, DefaultLocale)
	if none.Count != 0 || none.Notice != "No items found for \u201czzz\u201d in Sport." {
		t.Errorf("notice = %q", none.Notice)
	}
}

func TestArticle_Fallbacks(t *testing.T) {
	a := repository.Build("x.txt", "---\nTags: a, b, c\n---\nFirst para.\n\n<b>Second</b>")
	v := New(DefaultConfig(), nil).Article(a, DefaultLocale)
	if v.Title != "Untitled" || v.Author != "Staff" || v.Date != "" || v.Byline != "Staff" {
		t.Errorf("fallbacks = %+v", v)
	}
	if v.Thumbnail != "thumbnails/placeholder.png" {
		t.Errorf("thumbnail = %q", v.Thumbnail)
	}
	if len(v.Tags) != 3 || v.Tags[2].URL != "newsletters.html?tag=c" {
		t.Errorf("tags = %v", v.Tags)
	}
	if v.BodyHTML != "<p>First para.</p><p>&lt;b&gt;Second&lt;/b&gt;</p>" {
		t.Errorf("body html = %q", v.BodyHTML)
	}
}

func TestCard(t *testing.T) {
	a := repository.Build("newsletters/a b.txt", "---\nDate: 2024-03-01\nTags: one, two, three\nThumbnail: https://cdn.example/x.png\n---\n")
	c := New(DefaultConfig(), nil).Card(a, DefaultLocale)
	if c.Title != "newsletters/a b.txt" || c.Author != "Staff" {
		t.Errorf("card fallbacks = %+v", c)
	}
	if len(c.Tags) != 2 {
		t.Errorf("tag chips = %v", c.Tags)
	}
	if c.URL != "article.html?article=newsletters%2Fa+b.txt" {
		t.Errorf("url = %q", c.URL)
	}
	if c.Date != "March 1, 2024" || c.Thumbnail != "https://cdn.example/x.png" {
		t.Errorf("date/thumb = %q / %q", c.Date, c.Thumbnail)
	}
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string { return strings.Repeat("word ", n) }
	cases := []struct {
		body string
		want string
	}{
		{words(400), "2 min read"},
		{words(50), "1 min read"},
		{"", "1 min read"},
		{words(300), "2 min read"},
		{words(299), "1 min read"},
		{"  spaced\n\tout   words ", "1 min read"},
	}
	for _, c := range cases {
		if got := ReadingTime(c.body, 200); got != c.want {
			t.Errorf("ReadingTime(%d words) = %q, want %q", len(strings.Fields(c.body)), got, c.want)
		}
	}
}

func TestResolveThumbnail(t *testing.T) {
	const def = "thumbnails/placeholder.png"
	cases := map[string]string{
		"":                          def,
		"   ":                       def,
		"https://cdn.example/a.png": "https://cdn.example/a.png",
		"//cdn.example/a.png":       "//cdn.example/a.png",
		"/img/a.png":                "/img/a.png",
		"thumbnails/a.png":          "thumbnails/a.png",
		"a.png":                     "a.png",
	}
	for in, want := range cases {
		if got := ResolveThumbnail(in, def); got != want {
			t.Errorf("ResolveThumbnail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNegotiateLocale(t *testing.T) {
	d := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		accept string
		want   string
	}{
		{"", "March 1, 2024"},
		{"en-GB,en;q=0.8", "1 March 2024"},
		{"de-DE,de;q=0.9", "1. M\u00e4rz 2024"},
		{"xx-invalid;;", "March 1, 2024"},
	}
	for _, c := range cases {
		if got := NegotiateLocale(c.accept).FormatDate(d); got != c.want {
			t.Errorf("NegotiateLocale(%q).FormatDate = %q, want %q", c.accept, got, c.want)
		}
	}
	if got := DefaultLocale.FormatDate(time.Time{}); got != "" {
		t.Errorf("zero date = %q", got)
	}
}
