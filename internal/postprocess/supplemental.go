package postprocess

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
)

// HardLineBreaks converts every soft-break event into a hard-break event,
// mimicking Obsidian's "Strict line breaks" setting. The CLI registers
// this postprocessor only when --hard-linebreaks is passed; it is not a
// no-op toggle checked at call time.
func HardLineBreaks(_ *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
	for i := range events {
		if events[i].Kind == engine.KindSoftBreak {
			events[i].Kind = engine.KindHardBreak
		}
	}
	return Continue, events
}

// ObsidianComments rewrites "%% ... %%" comment spans into elided
// content: the matched text never reaches the serializer at all (unlike
// the original tool, which re-emits it as an HTML comment — this engine
// has no guaranteed downstream HTML renderer, so eliding is the one
// rendering that preserves the user-visible effect, which is that
// commented text never appears in exported output). An odd number of
// "%%" delimiters across the note is reported as KindMalformedComment on
// warn rather than aborting the export.
func ObsidianComments(warn *diagnostics.Sink) Postprocessor {
	return func(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
		inComment := false
		out := make([]engine.Event, 0, len(events))

		for _, e := range events {
			if e.Kind != engine.KindText {
				if !inComment {
					out = append(out, e)
				}
				continue
			}
			parts := strings.Split(e.Text, "%%")
			for i, part := range parts {
				if i > 0 {
					inComment = !inComment
				}
				if part == "" {
					continue
				}
				if !inComment {
					out = append(out, engine.Event{Kind: engine.KindText, Text: part})
				}
			}
		}

		if inComment {
			warn.Warn(diagnostics.Warning{
				Kind:    diagnostics.KindMalformedComment,
				Path:    ctx.CurrentPath,
				Message: "unmatched %% comment delimiter",
			})
		}

		return Continue, out
	}
}

var (
	ignoreBlockTilde = regexp.MustCompile(`(?s)%% EXPORT_IGNORE_BEGIN %%.*?%% EXPORT_IGNORE_END %%`)
	ignoreBlockHash  = regexp.MustCompile(`(?s)# EXPORT_IGNORE_BEGIN.*?# EXPORT_IGNORE_END`)
)

// StripIgnoreBlocks removes spans delimited by "%% EXPORT_IGNORE_BEGIN %%"
// / "%% EXPORT_IGNORE_END %%" or "# EXPORT_IGNORE_BEGIN" / "#
// EXPORT_IGNORE_END", inclusive of the delimiter lines. It operates on
// the raw note body, before the body reaches the Markdown Event Pipeline,
// and runs unconditionally (no CLI flag gates it).
func StripIgnoreBlocks(body string) string {
	body = ignoreBlockTilde.ReplaceAllString(body, "")
	body = ignoreBlockHash.ReplaceAllString(body, "")
	return body
}

// TagFilter returns a note-level postprocessor that stops and skips the
// note when its frontmatter tags match skipTags (any overlap) or fail to
// match onlyTags (when onlyTags is non-empty); skip wins over include on
// overlap, mirroring the original tool's precedence.
func TagFilter(skipTags, onlyTags []string) Postprocessor {
	return func(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
		var tags []string
		if ctx.Frontmatter != nil {
			tags = ctx.Frontmatter.Tags()
		}

		if anyMatch(tags, skipTags) {
			return StopAndSkipNote, events
		}
		if len(onlyTags) > 0 && !anyMatch(tags, onlyTags) {
			return StopAndSkipNote, events
		}
		return Continue, events
	}
}

func anyMatch(tags, set []string) bool {
	for _, t := range tags {
		for _, s := range set {
			if t == s {
				return true
			}
		}
	}
	return false
}
