package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu     sync.Mutex
	events map[string]string
}

func (r *recorder) cb(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[path] = kind
}

func (r *recorder) get(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[path]
}

func startWatcher(t *testing.T, root string) *recorder {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{events: make(map[string]string)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, root, Options{Debounce: 20 * time.Millisecond, Extensions: []string{".txt", ".json"}}, logger, rec.cb)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher time to register directories.
	time.Sleep(50 * time.Millisecond)
	return rec
}

func TestWatch_CreateUpdateDelete(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "newsletters"), 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(root, "newsletters", "old.txt")
	if err := os.WriteFile(existing, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "newsletters", "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "newsletters", "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return rec.get("newsletters/new.txt") == "created" && rec.get("newsletters/old.txt") == "updated"
	}, "expected created and updated events")

	if err := os.Remove(existing); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return rec.get("newsletters/old.txt") == "deleted"
	}, "expected deleted event")

	if got := rec.get("newsletters/notes.md"); got != "" {
		t.Errorf("unwatched extension reported: %q", got)
	}
}

func TestWatch_NewDirectory(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	dir := filepath.Join(root, "newsletters")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return rec.get("newsletters/index.json") == "created"
	}, "expected file in new directory to be reported")
}

func TestWanted(t *testing.T) {
	exts := []string{".txt"}
	if !wanted("a/B.TXT", exts) || wanted("a/b.md", exts) || !wanted("x", nil) {
		t.Error("extension filter mismatch")
	}
}
