package repository

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/magazine/internal/apperr"
	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/storage"
	"github.com/starford/magazine/internal/testutil"
)

func files(items models.Collection) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = string(a.File)
	}
	return out
}

func TestLoadVisibleSorted_CanonicalOrder(t *testing.T) {
	_, store := testutil.TestSite(t,
		[]string{"a.txt", "jan.txt", "z.txt", "mar.txt"},
		map[string]string{
			"newsletters/a.txt":   testutil.Article("A", "Title", "Undated A"),
			"newsletters/jan.txt": testutil.Article("J", "Title", "January", "Date", "2024-01-01"),
			"newsletters/z.txt":   testutil.Article("Z", "Title", "Undated Z"),
			"newsletters/mar.txt": testutil.Article("M", "Title", "March", "Date", "2024-03-01"),
		})

	got := files(New(store).LoadVisibleSorted(context.Background()))
	want := []string{"mar.txt", "jan.txt", "z.txt", "a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestLoadVisibleSorted_HiddenFilter(t *testing.T) {
	_, store := testutil.TestSite(t,
		[]string{"new.txt", "old.txt", "yes.txt", "off.txt"},
		map[string]string{
			"newsletters/new.txt": testutil.Article("x", "Date", "2030-01-01", "Hidden", "true"),
			"newsletters/old.txt": testutil.Article("x", "Date", "2001-01-01"),
			"newsletters/yes.txt": testutil.Article("x", "Hidden", " YES "),
			"newsletters/off.txt": testutil.Article("x", "Hidden", "no"),
		})

	got := files(New(store).LoadVisibleSorted(context.Background()))
	want := []string{"old.txt", "off.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
}

func TestLoadVisibleSorted_PartialFailure(t *testing.T) {
	_, store := testutil.TestSite(t,
		[]string{"ok.txt", "missing.txt", "../escape.txt"},
		map[string]string{
			"newsletters/ok.txt": testutil.Article("body", "Title", "OK"),
		})

	got := New(store).LoadVisibleSorted(context.Background())
	if len(got) != 1 || got[0].Meta.Title != "OK" {
		t.Errorf("got %v, want only ok.txt", files(got))
	}
}

func TestLoadVisibleSorted_EmptyManifest(t *testing.T) {
	_, store := testutil.TestSite(t, []string{}, nil)
	got := New(store).LoadVisibleSorted(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty collection", got)
	}

	_, noManifest := testutil.TestSite(t, nil, nil)
	if got := New(noManifest).LoadVisibleSorted(context.Background()); len(got) != 0 {
		t.Errorf("missing manifest: got %v", files(got))
	}
}

func TestLoadVisibleSorted_Idempotent(t *testing.T) {
	_, store := testutil.TestSite(t,
		[]string{"b.txt", "a.txt", "c.txt"},
		map[string]string{
			"newsletters/a.txt": testutil.Article("a", "Date", "2024-05-01", "Tags", "x, y"),
			"newsletters/b.txt": testutil.Article("b", "Date", "2024-05-01"),
			"newsletters/c.txt": testutil.Article("c"),
		})
	r := New(store)
	first := r.LoadVisibleSorted(context.Background())
	second := r.LoadVisibleSorted(context.Background())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated loads differ:\n%v\n%v", files(first), files(second))
	}
	// Equal dates keep manifest order.
	if got := files(first); !reflect.DeepEqual(got, []string{"b.txt", "a.txt", "c.txt"}) {
		t.Errorf("order = %v", got)
	}
}

type jitterSource struct {
	storage.Provider
}

func (j jitterSource) Read(ctx context.Context, p string) ([]byte, error) {
	time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	return j.Provider.Read(ctx, p)
}

func TestLoadVisibleSorted_IndependentOfCompletionOrder(t *testing.T) {
	manifest := []string{"d1.txt", "u1.txt", "d2.txt", "u2.txt", "d3.txt"}
	_, store := testutil.TestSite(t, manifest, map[string]string{
		"newsletters/d1.txt": testutil.Article("x", "Date", "2023-01-01"),
		"newsletters/d2.txt": testutil.Article("x", "Date", "2024-01-01"),
		"newsletters/d3.txt": testutil.Article("x", "Date", "2022-01-01"),
		"newsletters/u1.txt": testutil.Article("x"),
		"newsletters/u2.txt": testutil.Article("x"),
	})
	want := []string{"d2.txt", "d1.txt", "d3.txt", "u2.txt", "u1.txt"}
	r := New(jitterSource{store}, WithConcurrency(3))
	for range 5 {
		if got := files(r.LoadVisibleSorted(context.Background())); !reflect.DeepEqual(got, want) {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLoadArticle(t *testing.T) {
	_, store := testutil.TestSite(t, []string{}, map[string]string{
		"newsletters/x.txt": testutil.Article("Hello world", "Title", "X", "Tags", "go, ,news", "Date", "not a date"),
	})
	r := New(store)

	a, err := r.LoadArticle(context.Background(), "newsletters/x.txt")
	if err != nil {
		t.Fatalf("LoadArticle: %v", err)
	}
	if a.Meta.Title != "X" || a.Body != "Hello world" {
		t.Errorf("article = %+v", a)
	}
	if a.HasDate() {
		t.Errorf("invalid date should derive to zero, got %v", a.Date)
	}
	if !reflect.DeepEqual(a.Tags, []string{"go", "news"}) {
		t.Errorf("tags = %v", a.Tags)
	}

	if _, err := r.LoadArticle(context.Background(), "../x.txt"); !errors.Is(err, apperr.ErrInvalidArticle) {
		t.Errorf("traversal err = %v", err)
	}
	if _, err := r.LoadArticle(context.Background(), "nope.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-02", "2024/01/02", "January 2, 2024"} {
		if got := ParseDate(in); !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "soon", "2024-13-45"} {
		if got := ParseDate(in); !got.IsZero() {
			t.Errorf("ParseDate(%q) = %v, want zero", in, got)
		}
	}
}

func TestReadRaw_EncodedTraversalOverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("secret"))
	}))
	t.Cleanup(srv.Close)

	src, err := storage.NewHTTP(srv.URL+"/site/", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	repo := New(src)
	_, err = repo.ReadRaw(context.Background(), "%2e%2e/%2e%2e/private/secret.txt")
	if !errors.Is(err, apperr.ErrInvalidArticle) {
		t.Errorf("err = %v, want ErrInvalidArticle", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("origin contacted %d times for a rejected name", n)
	}
}
