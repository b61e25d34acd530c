package engine

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// markdown is the shared goldmark instance every note in an export run
// parses through. Table, strikethrough, and task-list extensions (via
// extension.GFM) plus extension.Footnote are the GFM/footnote surface
// Obsidian notes commonly rely on; the typographer extension (smart
// quotes/dashes/ellipses) is deliberately left out so re-serialized
// punctuation stays byte-identical to the source instead of being
// "improved" into curly quotes, preserving a byte-identical round trip
// for untouched punctuation.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewWikiInlineParser(), wikiPriority),
		),
	),
)

// Parse runs source through the shared goldmark instance and flattens the
// resulting AST into an Event stream, without resolving any wiki
// references yet.
func Parse(source []byte) []Event {
	reader := text.NewReader(source)
	doc := markdown.Parser().Parse(reader)
	return Flatten(source, doc)
}

// Run parses source, resolves every wiki reference via link/embed, and
// serializes the result back to CommonMark bytes in one call.
// internal/embed and internal/export call Parse, Resolve and Render
// separately instead, so they can run the postprocessor chain on the
// resolved events before (or instead of) rendering them.
func Run(source []byte, link LinkResolver, embed EmbedResolver) []byte {
	events := Parse(source)
	events = Resolve(events, link, embed)
	return Render(events)
}
