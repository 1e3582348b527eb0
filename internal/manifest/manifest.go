// Package manifest loads the list of articles that make up the site.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/storage"
)

// DefaultPath is the manifest location relative to the content root.
const DefaultPath = "newsletters/index.json"

// DefaultDir is the directory articles live in.
const DefaultDir = "newsletters"

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// ErrNotArray is returned by Decode when the manifest is valid JSON but not
// an array.
var ErrNotArray = errors.New("manifest: not a JSON array")

// Sanitize turns a raw manifest entry or request parameter into an
// ArticleFile. It reports false for anything that could escape the content
// root or point at another origin.
func Sanitize(raw string) (models.ArticleFile, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/"))
	if strings.HasPrefix(s, "//") || schemeRe.MatchString(s) {
		return "", false
	}
	s = strings.TrimLeft(s, "/")
	if s == "" || strings.Contains(s, "..") || strings.Contains(strings.ToLower(s), "%2e") {
		return "", false
	}
	return models.ArticleFile(s), true
}

// ArticlePath returns the storage path of file. Entries already namespaced
// under dir are used as-is.
func ArticlePath(dir string, file models.ArticleFile) string {
	dir = strings.Trim(dir, "/")
	f := string(file)
	if dir == "" || strings.HasPrefix(f, dir+"/") {
		return f
	}
	return path.Join(dir, f)
}

// Decode parses manifest bytes into its raw entries without sanitizing them.
func Decode(data []byte) ([]json.RawMessage, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if _, ok := v.([]any); !ok {
		return nil, ErrNotArray
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return entries, nil
}

// Entry returns the string value of a raw manifest entry.
func Entry(raw json.RawMessage) (string, bool) {
	if b := bytes.TrimSpace(raw); len(b) == 0 || b[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Load reads the manifest at p and returns its sanitized entries in order.
// Any failure yields an empty slice; the cause is logged at WARN.
func Load(ctx context.Context, src storage.Provider, p string, log *slog.Logger) []models.ArticleFile {
	if log == nil {
		log = slog.Default()
	}
	data, err := src.Read(ctx, p)
	if err != nil {
		log.Warn("could not load manifest", slog.String("path", p), slog.String("error", err.Error()))
		return []models.ArticleFile{}
	}
	entries, err := Decode(data)
	if err != nil {
		log.Warn("could not load manifest", slog.String("path", p), slog.String("error", err.Error()))
		return []models.ArticleFile{}
	}

	files := make([]models.ArticleFile, 0, len(entries))
	for _, raw := range entries {
		s, ok := Entry(raw)
		if !ok {
			continue
		}
		if f, ok := Sanitize(s); ok {
			files = append(files, f)
		}
	}
	return files
}
