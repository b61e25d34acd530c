package frontmatter

import (
	"strings"
	"testing"
)

func TestSplitNoFrontmatter(t *testing.T) {
	doc, body, err := Split([]byte("# Hello\n\nBody text.\n"))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if doc.HadFrontmatter() {
		t.Fatalf("expected no frontmatter")
	}
	if string(body) != "# Hello\n\nBody text.\n" {
		t.Fatalf("body mutated: %q", body)
	}
}

func TestSplitWithFrontmatter(t *testing.T) {
	src := "---\ntitle: Hello\ntags:\n  - a\n  - b\n---\nBody.\n"
	doc, body, err := Split([]byte(src))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !doc.HadFrontmatter() {
		t.Fatalf("expected frontmatter")
	}
	if string(body) != "Body.\n" {
		t.Fatalf("unexpected body: %q", body)
	}
	title, ok := doc.Get("title")
	if !ok || title != "Hello" {
		t.Fatalf("unexpected title: %v %v", title, ok)
	}
	if tags := doc.Tags(); len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("unexpected tags: %#v", tags)
	}
}

func TestSplitEmptyFrontmatter(t *testing.T) {
	doc, body, err := Split([]byte("---\n---\nBody.\n"))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !doc.HadFrontmatter() {
		t.Fatalf("expected frontmatter flag to be set even when empty")
	}
	if string(body) != "Body.\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestRenderStrategies(t *testing.T) {
	withFM, _, _ := Split([]byte("---\ntitle: Hello\n---\nBody.\n"))
	withoutFM, _, _ := Split([]byte("Body.\n"))

	out, _ := withFM.Render(StrategyNever)
	if out != nil {
		t.Fatalf("Never should drop frontmatter entirely, got %q", out)
	}

	out, _ = withoutFM.Render(StrategyIfPresent)
	if out != nil {
		t.Fatalf("IfPresent on no-frontmatter note should emit nothing, got %q", out)
	}

	out, _ = withoutFM.Render(StrategyAlways)
	if string(out) != "---\n---\n" {
		t.Fatalf("Always on no-frontmatter note should emit an empty block, got %q", out)
	}

	out, err := withFM.Render(StrategyIfPresent)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(out), "---\n") || !strings.Contains(string(out), "title: Hello") {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestSetPreservesOrderAndAppends(t *testing.T) {
	doc, _, _ := Split([]byte("---\na: 1\nb: 2\n---\nBody.\n"))
	if err := doc.Set("a", 99); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := doc.Set("c", "new"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, err := doc.Render(StrategyIfPresent)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\na: 99\nb: 2\nc: new\n---\n"
	if string(out) != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}

func TestSetOnDocumentWithoutFrontmatter(t *testing.T) {
	doc, _, _ := Split([]byte("Body.\n"))
	if err := doc.Set("title", "Added"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, err := doc.Render(StrategyAlways)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "---\ntitle: Added\n---\n" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"":         StrategyIfPresent,
		"ifpresent": StrategyIfPresent,
		"Always":   StrategyAlways,
		"never":    StrategyNever,
	}
	for in, want := range cases {
		got, err := ParseStrategy(in)
		if err != nil {
			t.Fatalf("ParseStrategy(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseStrategy(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseStrategy("bogus"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
