package engine

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-obsidian-export/internal/reference"
)

// KindWikiNode is the ast.NodeKind used for a recognized [[...]] / ![[...]]
// token. It is an inline leaf: it never has children, since its body is
// consumed whole by wikiInlineParser before goldmark's own emphasis or
// link tokenizer ever sees the bytes inside the brackets.
var KindWikiNode = ast.NewNodeKind("ObsidianWikiRef")

// WikiNode wraps a parsed reference.Note as a goldmark inline AST node.
type WikiNode struct {
	ast.BaseInline
	Ref reference.Note

	// Segment is the source text position spanned by the [[...]] /
	// ![[...]] token, set via SetSegment by the inline parser.
	Segment text.Segment
}

// SetSegment records the source text position spanned by this node.
func (n *WikiNode) SetSegment(s text.Segment) {
	n.Segment = s
}

// Kind implements ast.Node.
func (n *WikiNode) Kind() ast.NodeKind {
	return KindWikiNode
}

// Dump implements ast.Node for debugging/printing goldmark trees.
func (n *WikiNode) Dump(source []byte, level int) {
	indent := ""
	for i := 0; i < level; i++ {
		indent += "    "
	}
	fmt.Printf("%sObsidianWikiRef target=%q section=%q label=%q embed=%v\n",
		indent, n.Ref.Target, n.Ref.Section, n.Ref.Label, n.Ref.IsEmbed)
}
