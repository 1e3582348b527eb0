// Package testutil provides shared test helpers for setting up content sites.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/magazine/internal/storage"
)

// Article renders an article with the given header entries and body.
// Entries are written in order as "key: value" lines.
func Article(body string, entries ...string) string {
	s := "---\n"
	for i := 0; i+1 < len(entries); i += 2 {
		s += entries[i] + ": " + entries[i+1] + "\n"
	}
	return s + "---\n\n" + body + "\n"
}

// TestSite creates a temporary content root with newsletters/index.json
// listing manifest and one file per entry of articles (keyed by path relative
// to the root). It returns the root and a storage.Provider over it.
func TestSite(t *testing.T, manifest []string, articles map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	if manifest != nil {
		data, err := json.Marshal(manifest)
		if err != nil {
			t.Fatal(err)
		}
		WriteFile(t, root, "newsletters/index.json", string(data))
	}
	for rel, content := range articles {
		WriteFile(t, root, rel, content)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile writes content under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
