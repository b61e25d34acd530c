package engine

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-obsidian-export/internal/reference"
)

// wikiPriority places the wiki-reference parser ahead of goldmark's
// built-in link/image parser (priority 200) so "[[" and "![[" get first
// look; when the token at hand isn't a double-bracket reference, Parse
// returns nil and goldmark falls through to its normal parsers for the
// same trigger byte.
const wikiPriority = 190

// wikiInlineParser recognizes [[target]], [[target|label]],
// [[target#section]] and ![[target]] tokens directly against the raw
// source bytes of the current line, before goldmark's emphasis or link
// tokenizer gets a chance to fragment the token body (this is the case,
// called out by the upstream tool this engine is modeled on, of a target
// beginning with "_" being misread as an emphasis delimiter).
type wikiInlineParser struct{}

// NewWikiInlineParser returns a goldmark inline parser for Obsidian wiki
// references, registered via WithInlineParsers.
func NewWikiInlineParser() parser.InlineParser {
	return &wikiInlineParser{}
}

func (p *wikiInlineParser) Trigger() []byte {
	return []byte{'[', '!'}
}

func (p *wikiInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()

	embed := false
	prefixLen := 2
	switch {
	case len(line) >= 2 && line[0] == '[' && line[1] == '[':
		// plain link/embed-target token
	case len(line) >= 3 && line[0] == '!' && line[1] == '[' && line[2] == '[':
		embed = true
		prefixLen = 3
	default:
		return nil
	}

	closeAt := findClose(line, prefixLen)
	if closeAt < 0 {
		return nil
	}

	body := string(line[prefixLen:closeAt])
	ref := reference.New(body, embed)

	totalLen := closeAt + 2
	block.Advance(totalLen)

	node := &WikiNode{Ref: ref}
	node.SetSegment(segment.WithStop(segment.Start + totalLen))
	return node
}

// findClose returns the index of the "]]" that closes the token, or -1 when
// the first "]" at or after from is not followed by another "]". It works
// on bytes, since it only needs to recognize the ASCII bracket pair; the
// reference body itself may contain arbitrary UTF-8.
func findClose(line []byte, from int) int {
	for j := from; j+1 < len(line); j++ {
		if line[j] == ']' {
			if line[j+1] == ']' {
				return j
			}
			return -1
		}
	}
	return -1
}
