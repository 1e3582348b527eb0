// Package watcher reports changes to article and manifest files under a
// local content root.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a quiet period before
// reporting a batch of changes.
const DefaultDebounce = 200 * time.Millisecond

// Callback receives one debounced change. kind is "created", "updated" or
// "deleted"; path is slash-separated and relative to the content root.
type Callback func(kind, path string)

// Options configures Watch.
type Options struct {
	Debounce   time.Duration
	Extensions []string // file extensions to report, e.g. ".txt"; empty means all
}

// Watch starts an fsnotify watcher on root and reports file changes until
// ctx is cancelled. Events are coalesced per path: the last kind seen during
// a debounce window wins, except that a create followed by writes stays a
// create.
//
// New directories created at runtime are added to the watch list and the
// files already inside them are reported as created.
func Watch(ctx context.Context, root string, opts Options, logger *slog.Logger, cb Callback) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]string)
	var timer *time.Timer
	var timerCh <-chan time.Time

	record := func(kind, abs string) {
		if !wanted(abs, opts.Extensions) {
			return
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		if prev, ok := pending[rel]; ok && prev == "created" && kind == "updated" {
			kind = prev
		}
		pending[rel] = kind
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(opts.Debounce)
		}
	}

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			logger.Debug("watcher: change", slog.String("path", p), slog.String("op", pending[p]))
			if cb != nil {
				cb(pending[p], p)
			}
		}
		clear(pending)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					_ = filepath.WalkDir(ev.Name, func(p string, d fs.DirEntry, err error) error {
						if err == nil && !d.IsDir() {
							record("created", p)
						}
						return nil
					})
					continue
				}
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				record("created", ev.Name)
			case ev.Op&fsnotify.Write != 0:
				record("updated", ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new one arrives as Create.
				record("deleted", ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func wanted(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
