package render

import (
	"strings"
	"testing"
)

func TestMarkdown_Render(t *testing.T) {
	out, err := NewMarkdown().Render("# Hello\n\nSome *emphasis* and a [link](https://example.com).")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{`<h1 id="hello">Hello</h1>`, "<em>emphasis</em>", `<a href="https://example.com">link</a>`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdown_DropsRawHTML(t *testing.T) {
	out, err := NewMarkdown().Render("<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html leaked:\n%s", out)
	}
	if strings.Contains(out, "javascript:") {
		t.Errorf("dangerous url leaked:\n%s", out)
	}
}
