package postprocess

import (
	"testing"

	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
)

func TestHardLineBreaksConvertsSoftBreaks(t *testing.T) {
	events := []engine.Event{{Kind: engine.KindText, Text: "a"}, {Kind: engine.KindSoftBreak}, {Kind: engine.KindText, Text: "b"}}
	_, out := HardLineBreaks(&notectx.Context{}, events)
	if out[1].Kind != engine.KindHardBreak {
		t.Fatalf("expected hard break, got %#v", out[1])
	}
}

func TestObsidianCommentsElidesContent(t *testing.T) {
	events := []engine.Event{{Kind: engine.KindText, Text: "keep %%secret%% also keep"}}
	sink := diagnostics.New()
	_, out := ObsidianComments(sink)(&notectx.Context{}, events)
	var joined string
	for _, e := range out {
		joined += e.Text
	}
	if joined != "keep  also keep" {
		t.Fatalf("unexpected output: %q", joined)
	}
	if len(sink.Drain()) != 0 {
		t.Fatalf("expected no warning for balanced delimiters")
	}
}

func TestObsidianCommentsWarnsOnUnmatchedDelimiter(t *testing.T) {
	events := []engine.Event{{Kind: engine.KindText, Text: "oops %%unterminated"}}
	sink := diagnostics.New()
	ObsidianComments(sink)(&notectx.Context{CurrentPath: "note.md"}, events)
	warnings := sink.Drain()
	if len(warnings) != 1 || warnings[0].Kind != diagnostics.KindMalformedComment {
		t.Fatalf("expected malformed comment warning, got %#v", warnings)
	}
}

func TestStripIgnoreBlocksRemovesBothDelimiterStyles(t *testing.T) {
	body := "keep\n%% EXPORT_IGNORE_BEGIN %%\nsecret\n%% EXPORT_IGNORE_END %%\nkeep2\n# EXPORT_IGNORE_BEGIN\nhidden\n# EXPORT_IGNORE_END\nkeep3"
	out := StripIgnoreBlocks(body)
	if out != "keep\n\nkeep2\n\nkeep3" {
		t.Fatalf("unexpected result: %q", out)
	}
}

func TestTagFilterSkipWinsOverInclude(t *testing.T) {
	doc, _, _ := frontmatter.Split([]byte("---\ntags:\n  - skip\n  - publish\n---\nBody.\n"))
	ctx := &notectx.Context{Frontmatter: doc}
	pp := TagFilter([]string{"skip"}, []string{"publish"})
	directive, _ := pp(ctx, nil)
	if directive != StopAndSkipNote {
		t.Fatalf("expected StopAndSkipNote, got %v", directive)
	}
}

func TestTagFilterOnlyTagsExcludesUntagged(t *testing.T) {
	doc, _, _ := frontmatter.Split([]byte("Body.\n"))
	ctx := &notectx.Context{Frontmatter: doc}
	pp := TagFilter(nil, []string{"publish"})
	directive, _ := pp(ctx, nil)
	if directive != StopAndSkipNote {
		t.Fatalf("expected StopAndSkipNote for untagged note with only-tags set")
	}
}

func TestChainStopsAtStopHere(t *testing.T) {
	calledSecond := false
	chain := Chain{
		func(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
			return StopHere, events
		},
		func(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
			calledSecond = true
			return Continue, events
		},
	}
	directive, _ := chain.Run(&notectx.Context{}, nil)
	if directive != StopHere || calledSecond {
		t.Fatalf("chain did not stop at StopHere")
	}
}
