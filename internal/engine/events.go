// Package engine hosts the Markdown Event Pipeline: it drives a goldmark
// parse of a note's body into a flat, rewritable event stream, resolves
// wiki references in that stream via caller-supplied link/embed resolvers,
// and serializes the result back to CommonMark text. Rewrites happen on
// events, never on re-serialized Markdown text, so percent-encoding,
// escaping and structural nesting stay the serializer's job.
package engine

import "github.com/goliatone/go-obsidian-export/internal/reference"

// Kind discriminates the fields a given Event carries.
type Kind int

const (
	KindParagraphStart Kind = iota
	KindParagraphEnd
	KindHeadingStart
	KindHeadingEnd
	KindBlockquoteStart
	KindBlockquoteEnd
	KindListStart
	KindListEnd
	KindListItemStart
	KindListItemEnd
	KindCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindTableStart
	KindTableEnd
	KindTableRowStart
	KindTableRowEnd
	KindTableCellStart
	KindTableCellEnd

	KindText
	KindSoftBreak
	KindHardBreak
	KindCodeSpan
	KindRawHTML
	KindAutoLink
	KindEmphasisStart
	KindEmphasisEnd
	KindStrikethroughStart
	KindStrikethroughEnd
	KindLinkStart
	KindLinkEnd
	KindImage
	KindTaskCheckbox

	// KindFootnoteRef is an inline "[^label]" reference.
	KindFootnoteRef
	// KindFootnoteListStart/End bracket the block of footnote definitions
	// goldmark appends as the document's last block child.
	KindFootnoteListStart
	KindFootnoteListEnd
	// KindFootnoteDefStart/End bracket one "[^label]: ..." definition;
	// Text carries the label. The definition's body is the block events
	// nested between start and end.
	KindFootnoteDefStart
	KindFootnoteDefEnd

	// KindWikiRef is a not-yet-resolved Obsidian wiki reference. The
	// pipeline replaces every KindWikiRef event with the output of the
	// Link Rewriter or Embed Expander before the stream reaches the
	// serializer; one surviving in final output is a defensive fallback,
	// not an expected state.
	KindWikiRef
)

// Event is one element of the Markdown Event Stream. Only the fields
// relevant to Kind are meaningful; the struct is a flat union rather than
// an interface hierarchy so the pipeline, postprocessors, and serializer
// can all operate on a plain []Event with no type assertions.
type Event struct {
	Kind Kind

	Text string // KindText / KindCodeSpan / KindRawHTML literal, KindAutoLink label

	Level int // heading level (1-6) or emphasis level (1=*, 2=**)

	Ordered bool // KindListStart
	Start   int  // KindListStart: first item number

	Lang   string // KindCodeBlock info-string language
	Fenced bool   // KindCodeBlock: fenced vs indented

	Dest  string // link/image/autolink destination
	Title string // link/image title
	Alt   string // image alt text

	Checked bool // KindTaskCheckbox

	IsHeaderRow bool   // KindTableRowStart
	Align       string // KindTableCellStart: "", "left", "center", "right"

	Ref reference.Note // KindWikiRef
}

// Clone returns an independent copy of events, safe for a postprocessor to
// mutate without affecting the caller's slice (e.g. before splicing an
// embed's events into a host note's stream).
func Clone(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
