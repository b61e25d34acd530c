package engine

import "github.com/goliatone/go-obsidian-export/internal/reference"

// LinkResolution is what a LinkResolver decides for one wiki-link reference:
// either the reference becomes a real link around Text, or it collapses to
// plain Text with no link wrapper (unresolved target, or target filtered out
// of the export).
type LinkResolution struct {
	Text   string
	Dest   string
	Linked bool
}

// LinkResolver turns a parsed wiki-link reference into its rendered form.
// It never sees embeds (Ref.IsEmbed is always false for a call through
// this type); the caller is expected to dispatch embeds to EmbedResolver
// before events reach the link pass, or to route both through one function
// that checks Ref.IsEmbed itself if Resolve is called directly.
type LinkResolver func(ref reference.Note) LinkResolution

// EmbedKind discriminates what an EmbedResolver decided to splice in place
// of a ![[...]] token.
type EmbedKind int

const (
	// EmbedKindText leaves a plain text fallback, e.g. for an unresolved
	// target or a target excluded by the embed configuration.
	EmbedKindText EmbedKind = iota
	// EmbedKindImage renders as a Markdown image (asset embed).
	EmbedKindImage
	// EmbedKindLink renders as a Markdown link (non-image asset embed).
	EmbedKindLink
	// EmbedKindBlocks splices a recursively-rendered event stream in place
	// of the embed (note embed).
	EmbedKindBlocks
)

// EmbedResolution is what an EmbedResolver decided for one ![[...]] token.
type EmbedResolution struct {
	Kind   EmbedKind
	Text   string  // EmbedKindText / EmbedKindLink link text / EmbedKindImage alt
	Dest   string  // EmbedKindImage / EmbedKindLink destination
	Blocks []Event // EmbedKindBlocks
}

// EmbedResolver turns a parsed wiki-embed reference into its rendered form.
type EmbedResolver func(ref reference.Note) EmbedResolution

// Resolve walks events in place, replacing every KindWikiRef event with the
// output of link or embed (based on Ref.IsEmbed). A block-level embed
// (EmbedKindBlocks) that is the sole content of its enclosing paragraph
// (immediately wrapped by KindParagraphStart/KindParagraphEnd with nothing
// else between) splices its Blocks in place of the whole
// [ParagraphStart, WikiRef, ParagraphEnd] triple, so a note embed produces
// real block structure instead of an inline run trapped inside a paragraph.
// An embed sharing a line with other inline content falls back to
// inlining its Blocks directly, without paragraph unwrapping; this is a
// deliberate, narrow divergence from the embedding note's original
// structure, acceptable because Obsidian itself only really supports
// block embeds as whole-line constructs.
func Resolve(events []Event, link LinkResolver, embed EmbedResolver) []Event {
	out := make([]Event, 0, len(events))

	for i := 0; i < len(events); i++ {
		e := events[i]
		if e.Kind != KindWikiRef {
			out = append(out, e)
			continue
		}

		if !e.Ref.IsEmbed {
			res := link(e.Ref)
			out = append(out, linkEvents(res)...)
			continue
		}

		res := embed(e.Ref)

		if res.Kind == EmbedKindBlocks && isSoleParagraphContent(out, events, i) {
			out = out[:len(out)-1] // drop the KindParagraphStart we just appended
			out = append(out, res.Blocks...)
			i++ // skip the matching KindParagraphEnd
			continue
		}

		out = append(out, embedEvents(res)...)
	}

	return out
}

func linkEvents(res LinkResolution) []Event {
	if !res.Linked {
		return []Event{{Kind: KindText, Text: res.Text}}
	}
	return []Event{
		{Kind: KindLinkStart, Dest: res.Dest},
		{Kind: KindText, Text: res.Text},
		{Kind: KindLinkEnd},
	}
}

func embedEvents(res EmbedResolution) []Event {
	switch res.Kind {
	case EmbedKindImage:
		return []Event{{Kind: KindImage, Dest: res.Dest, Alt: res.Text}}
	case EmbedKindLink:
		return []Event{
			{Kind: KindLinkStart, Dest: res.Dest},
			{Kind: KindText, Text: res.Text},
			{Kind: KindLinkEnd},
		}
	case EmbedKindBlocks:
		return res.Blocks
	default:
		return []Event{{Kind: KindText, Text: res.Text}}
	}
}

// isSoleParagraphContent reports whether events[i] (a KindWikiRef) is the
// only thing between the KindParagraphStart already appended to out and the
// KindParagraphEnd that must immediately follow in the original stream.
func isSoleParagraphContent(out []Event, events []Event, i int) bool {
	if len(out) == 0 || out[len(out)-1].Kind != KindParagraphStart {
		return false
	}
	if i+1 >= len(events) || events[i+1].Kind != KindParagraphEnd {
		return false
	}
	return true
}
