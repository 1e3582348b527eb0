// Package validate checks a local content tree: the manifest and the header
// of every article it lists.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/starford/magazine/internal/manifest"
	"github.com/starford/magazine/internal/models"
	"github.com/starford/magazine/internal/parser"
	"github.com/starford/magazine/internal/storage"
)

// FutureSlack is how far ahead of now a Date may lie before it is flagged.
const FutureSlack = 36 * time.Hour

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	boolRe = regexp.MustCompile(`(?i)^(true|false|yes|no|0|1)$`)
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem found in the content tree.
type Finding struct {
	Severity Severity `json:"severity"`
	Entry    string   `json:"entry,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Entry == "" {
		return f.Message
	}
	return f.Entry + ": " + f.Message
}

// Report collects the findings of one run.
type Report struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

func (r *Report) add(sev Severity, entry, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Severity: sev, Entry: entry, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the number of error findings.
func (r *Report) Errors() int { return r.count(SeverityError) }

// Warnings returns the number of warning findings.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

// OK reports whether the run found no errors. Warnings do not count.
func (r *Report) OK() bool { return r.Errors() == 0 }

func (r *Report) count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Log writes every finding to log, errors at ERROR and warnings at WARN.
func (r *Report) Log(log *slog.Logger) {
	for _, f := range r.Findings {
		level := slog.LevelWarn
		if f.Severity == SeverityError {
			level = slog.LevelError
		}
		log.Log(context.Background(), level, f.Message, slog.String("entry", f.Entry))
	}
}

// Options configures a run.
type Options struct {
	ManifestPath string
	ArticleDir   string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run validates the manifest and articles readable through src. The returned
// error is non-nil only when the check could not run at all: the manifest
// is unreadable, is not JSON or is not an array.
func Run(ctx context.Context, src storage.Provider, opts Options) (*Report, error) {
	if opts.ManifestPath == "" {
		opts.ManifestPath = manifest.DefaultPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	data, err := src.Read(ctx, opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("validate: load %s: %w", opts.ManifestPath, err)
	}
	entries, err := manifest.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("validate: %s: %w", opts.ManifestPath, err)
	}

	r := &Report{Findings: []Finding{}}
	if len(entries) == 0 {
		r.add(SeverityWarning, "", "manifest is empty")
	}

	for _, raw := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok := manifest.Entry(raw)
		if !ok {
			r.add(SeverityError, "", "manifest contains non-string entry: %s", strings.TrimSpace(string(raw)))
			continue
		}
		r.Checked++

		if !strings.HasSuffix(strings.ToLower(entry), ".txt") {
			r.add(SeverityWarning, entry, "not a .txt file (allowed, but check generator configuration)")
		}

		text, ok := readEntry(ctx, src, opts.ArticleDir, entry)
		if !ok {
			r.add(SeverityError, entry, "missing or unreadable file listed in manifest")
			continue
		}
		checkHeader(r, entry, parser.Parse(text).Meta, opts.Now())
	}
	return r, nil
}

func readEntry(ctx context.Context, src storage.Provider, dir, entry string) (string, bool) {
	file, ok := manifest.Sanitize(entry)
	if !ok {
		return "", false
	}
	data, err := src.Read(ctx, manifest.ArticlePath(dir, file))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func checkHeader(r *Report, entry string, fm models.FrontMatter, now time.Time) {
	if fm.Title == "" {
		r.add(SeverityWarning, entry, "missing Title in front matter")
	}

	if fm.Date != "" {
		d, ok := parseDay(fm.Date)
		switch {
		case !ok:
			r.add(SeverityError, entry, "Date must be YYYY-MM-DD (got: %s)", fm.Date)
		case d.Sub(now) > FutureSlack:
			r.add(SeverityWarning, entry, "Date appears to be in the future (%s)", fm.Date)
		}
	}

	for _, key := range []string{models.KeyHidden, models.KeyDraft} {
		if v, ok := fm.Get(key); ok && !boolRe.MatchString(strings.TrimSpace(v)) {
			r.add(SeverityWarning, entry, "%s should be boolean-ish (true/false/yes/no/0/1)", key)
		}
	}
}

func parseDay(s string) (time.Time, bool) {
	if !dateRe.MatchString(s) {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
