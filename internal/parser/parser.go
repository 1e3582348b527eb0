// Package parser splits article text into its front-matter header and body.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/magazine/internal/models"
)

const delim = "---"

var entryRe = regexp.MustCompile(`^([^:]+)\s*:\s*(.*)$`)

// Result holds the output of parsing an article.
type Result struct {
	Meta models.FrontMatter
	Body string
}

// Parse extracts the front-matter header and the body from raw article text.
// It never fails: text without a header yields empty metadata and the whole
// trimmed text as body.
func Parse(raw string) Result {
	src := normalize(raw)

	if !strings.HasPrefix(src, delim+"\n") && src != delim {
		return Result{Body: strings.TrimSpace(src)}
	}

	lines := strings.Split(src, "\n")
	var meta models.FrontMatter

	// Without a closing delimiter every line is header and the body is empty.
	i := 1
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == delim {
			i++
			break
		}
		if line == "" {
			continue
		}
		if m := entryRe.FindStringSubmatch(line); m != nil {
			meta.Set(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		}
	}

	var body string
	if i < len(lines) {
		body = strings.TrimSpace(strings.Join(lines[i:], "\n"))
	}
	return Result{Meta: meta, Body: body}
}

// normalize drops carriage returns, a leading byte-order mark and leading
// whitespace.
func normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r", "")
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
