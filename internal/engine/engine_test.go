package engine

import (
	"strings"
	"testing"

	"github.com/goliatone/go-obsidian-export/internal/reference"
)

func passthroughLink(ref reference.Note) LinkResolution {
	return LinkResolution{Text: ref.LinkText(), Dest: ref.Target + ".md", Linked: true}
}

func passthroughEmbed(ref reference.Note) EmbedResolution {
	return EmbedResolution{Kind: EmbedKindImage, Text: ref.LinkText(), Dest: ref.Target}
}

func TestParseFlattensParagraphText(t *testing.T) {
	events := Parse([]byte("Hello world.\n"))
	found := false
	for _, e := range events {
		if e.Kind == KindText && strings.Contains(e.Text, "Hello world.") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected paragraph text event, got %#v", events)
	}
}

func TestParseRecognizesWikiLink(t *testing.T) {
	events := Parse([]byte("See [[Other Note|here]] for detail.\n"))
	var ref *reference.Note
	for i := range events {
		if events[i].Kind == KindWikiRef {
			ref = &events[i].Ref
		}
	}
	if ref == nil {
		t.Fatalf("expected a KindWikiRef event, got %#v", events)
	}
	if ref.Target != "Other Note" || ref.Label != "here" || ref.IsEmbed {
		t.Fatalf("unexpected ref: %#v", ref)
	}
}

func TestParseRecognizesEmbed(t *testing.T) {
	events := Parse([]byte("![[_underscored_asset.png]]\n"))
	var ref *reference.Note
	for i := range events {
		if events[i].Kind == KindWikiRef {
			ref = &events[i].Ref
		}
	}
	if ref == nil {
		t.Fatalf("expected a KindWikiRef event for embed, got %#v", events)
	}
	if ref.Target != "_underscored_asset.png" || !ref.IsEmbed {
		t.Fatalf("underscore target was mis-tokenized: %#v", ref)
	}
}

func TestResolveReplacesLink(t *testing.T) {
	events := Parse([]byte("See [[Other Note]].\n"))
	resolved := Resolve(events, passthroughLink, passthroughEmbed)
	for _, e := range resolved {
		if e.Kind == KindWikiRef {
			t.Fatalf("expected no surviving KindWikiRef, got %#v", resolved)
		}
	}
	out := string(Render(resolved))
	if !strings.Contains(out, "[Other Note](Other Note.md)") {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestResolveSoleParagraphEmbedSplicesBlocks(t *testing.T) {
	events := []Event{
		{Kind: KindParagraphStart},
		{Kind: KindWikiRef, Ref: reference.Note{Target: "Fragment", IsEmbed: true}},
		{Kind: KindParagraphEnd},
	}
	blockEmbed := func(ref reference.Note) EmbedResolution {
		return EmbedResolution{Kind: EmbedKindBlocks, Blocks: []Event{
			{Kind: KindHeadingStart, Level: 2},
			{Kind: KindText, Text: "Spliced"},
			{Kind: KindHeadingEnd, Level: 2},
		}}
	}
	resolved := Resolve(events, passthroughLink, blockEmbed)
	if len(resolved) != 3 || resolved[0].Kind != KindHeadingStart {
		t.Fatalf("expected paragraph wrapper to be replaced by spliced blocks, got %#v", resolved)
	}
}

func TestRunRoundTripsPlainText(t *testing.T) {
	src := "# Title\n\nSome *emphasis* and `code`.\n"
	out := string(Run([]byte(src), passthroughLink, passthroughEmbed))
	if !strings.Contains(out, "# Title") || !strings.Contains(out, "*emphasis*") || !strings.Contains(out, "`code`") {
		t.Fatalf("unexpected round-trip: %q", out)
	}
}

func TestRunResolvesLinkAndEmbed(t *testing.T) {
	src := "[[Target Note]] and ![[image.png]]\n"
	out := string(Run([]byte(src), passthroughLink, passthroughEmbed))
	if !strings.Contains(out, "[Target Note](Target Note.md)") {
		t.Fatalf("link not resolved: %q", out)
	}
	if !strings.Contains(out, "![image.png](image.png)") {
		t.Fatalf("embed not resolved: %q", out)
	}
}

func TestRunDoesNotEscapeNonAmbiguousUnderscoresAndAsterisks(t *testing.T) {
	src := "snake_case_name and 5 * 3 and a_b\n"
	out := string(Run([]byte(src), passthroughLink, passthroughEmbed))
	if strings.Contains(out, `\_`) || strings.Contains(out, `\*`) {
		t.Fatalf("expected no escaping of intraword/spaced punctuation, got %q", out)
	}
	if !strings.Contains(out, "snake_case_name") || !strings.Contains(out, "5 * 3") {
		t.Fatalf("text was mangled: %q", out)
	}
}

func TestRunEscapesGenuinelyAmbiguousEmphasisMarkers(t *testing.T) {
	events := []Event{
		{Kind: KindParagraphStart},
		{Kind: KindText, Text: "*leading star"},
		{Kind: KindParagraphEnd},
	}
	out := string(Render(events))
	if !strings.Contains(out, `\*leading star`) {
		t.Fatalf("expected a leading flanking '*' to be escaped, got %q", out)
	}
}

func TestRunRoundTripsFootnotes(t *testing.T) {
	src := "See the note.[^1]\n\n[^1]: Explanation here.\n"
	out := string(Run([]byte(src), passthroughLink, passthroughEmbed))
	if !strings.Contains(out, "[^1]") {
		t.Fatalf("expected footnote reference to round-trip, got %q", out)
	}
	if !strings.Contains(out, "[^1]: Explanation here.") {
		t.Fatalf("expected footnote definition to round-trip, got %q", out)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := []Event{{Kind: KindText, Text: "a"}}
	b := Clone(a)
	b[0].Text = "b"
	if a[0].Text != "a" {
		t.Fatalf("Clone shared backing array")
	}
}
