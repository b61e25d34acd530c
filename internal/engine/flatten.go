package engine

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// Flatten walks a parsed goldmark document and produces the flat Event
// stream the rest of the pipeline operates on. source must be the exact
// bytes the document was parsed from: block nodes only carry byte-range
// segments, not decoded text.
func Flatten(source []byte, doc ast.Node) []Event {
	f := &flattener{source: source, footnoteRefs: collectFootnoteRefs(doc)}
	ast.Walk(doc, f.visit)
	return f.events
}

type flattener struct {
	source       []byte
	events       []Event
	footnoteRefs map[int]string
}

// collectFootnoteRefs maps each footnote's 1-based Index to its label text
// ("1" in "[^1]", "note" in "[^note]"). goldmark appends the FootnoteList
// block (which carries the labels) as the document's last child, after
// every inline FootnoteLink that references it, so the labels have to be
// gathered in their own pass before the main flatten walk can use them.
func collectFootnoteRefs(doc ast.Node) map[int]string {
	refs := map[int]string{}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fn, ok := n.(*extast.Footnote); ok {
			refs[fn.Index] = string(fn.Ref)
		}
		return ast.WalkContinue, nil
	})
	return refs
}

func (f *flattener) emit(e Event) {
	f.events = append(f.events, e)
}

func (f *flattener) text(n ast.Node) string {
	return string(n.Text(f.source))
}

func (f *flattener) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindDocument:
		return ast.WalkContinue, nil

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			f.emit(Event{Kind: KindParagraphStart})
		} else {
			f.emit(Event{Kind: KindParagraphEnd})
		}
		return ast.WalkContinue, nil

	case ast.KindHeading:
		h := n.(*ast.Heading)
		if entering {
			f.emit(Event{Kind: KindHeadingStart, Level: h.Level})
		} else {
			f.emit(Event{Kind: KindHeadingEnd, Level: h.Level})
		}
		return ast.WalkContinue, nil

	case ast.KindBlockquote:
		if entering {
			f.emit(Event{Kind: KindBlockquoteStart})
		} else {
			f.emit(Event{Kind: KindBlockquoteEnd})
		}
		return ast.WalkContinue, nil

	case ast.KindList:
		l := n.(*ast.List)
		if entering {
			f.emit(Event{Kind: KindListStart, Ordered: l.IsOrdered(), Start: l.Start})
		} else {
			f.emit(Event{Kind: KindListEnd})
		}
		return ast.WalkContinue, nil

	case ast.KindListItem:
		if entering {
			f.emit(Event{Kind: KindListItemStart})
		} else {
			f.emit(Event{Kind: KindListItemEnd})
		}
		return ast.WalkContinue, nil

	case ast.KindCodeBlock, ast.KindFencedCodeBlock:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		var lang string
		fenced := n.Kind() == ast.KindFencedCodeBlock
		if fenced {
			lang = string(n.(*ast.FencedCodeBlock).Language(f.source))
		}
		f.emit(Event{Kind: KindCodeBlock, Text: linesText(n, f.source), Lang: lang, Fenced: fenced})
		return ast.WalkSkipChildren, nil

	case ast.KindHTMLBlock:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		hb := n.(*ast.HTMLBlock)
		text := linesText(n, f.source)
		if hb.HasClosure() {
			text += string(hb.ClosureLine.Value(f.source))
		}
		f.emit(Event{Kind: KindHTMLBlock, Text: text})
		return ast.WalkSkipChildren, nil

	case ast.KindThematicBreak:
		if entering {
			f.emit(Event{Kind: KindThematicBreak})
		}
		return ast.WalkContinue, nil

	case ast.KindText:
		if !entering {
			return ast.WalkContinue, nil
		}
		t := n.(*ast.Text)
		if last := len(f.events) - 1; last >= 0 && f.events[last].Kind == KindText {
			// goldmark splits one run of prose into several Text nodes at
			// inline-parser trigger bytes; keep the run as a single event.
			f.events[last].Text += f.text(n)
		} else {
			f.emit(Event{Kind: KindText, Text: f.text(n)})
		}
		if t.SoftLineBreak() {
			f.emit(Event{Kind: KindSoftBreak})
		}
		if t.HardLineBreak() {
			f.emit(Event{Kind: KindHardBreak})
		}
		return ast.WalkContinue, nil

	case ast.KindCodeSpan:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		f.emit(Event{Kind: KindCodeSpan, Text: childText(n, f.source)})
		return ast.WalkSkipChildren, nil

	case ast.KindAutoLink:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		al := n.(*ast.AutoLink)
		f.emit(Event{Kind: KindAutoLink, Dest: string(al.URL(f.source)), Text: string(al.Label(f.source))})
		return ast.WalkSkipChildren, nil

	case ast.KindRawHTML:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		rh := n.(*ast.RawHTML)
		var sb strings.Builder
		for i := 0; i < rh.Segments.Len(); i++ {
			seg := rh.Segments.At(i)
			sb.Write(seg.Value(f.source))
		}
		f.emit(Event{Kind: KindRawHTML, Text: sb.String()})
		return ast.WalkSkipChildren, nil

	case ast.KindEmphasis:
		em := n.(*ast.Emphasis)
		if entering {
			f.emit(Event{Kind: KindEmphasisStart, Level: em.Level})
		} else {
			f.emit(Event{Kind: KindEmphasisEnd, Level: em.Level})
		}
		return ast.WalkContinue, nil

	case ast.KindLink:
		l := n.(*ast.Link)
		if entering {
			f.emit(Event{Kind: KindLinkStart, Dest: string(l.Destination), Title: string(l.Title)})
		} else {
			f.emit(Event{Kind: KindLinkEnd})
		}
		return ast.WalkContinue, nil

	case ast.KindImage:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		img := n.(*ast.Image)
		f.emit(Event{Kind: KindImage, Dest: string(img.Destination), Title: string(img.Title), Alt: childText(n, f.source)})
		return ast.WalkSkipChildren, nil

	case KindWikiNode:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		wn := n.(*WikiNode)
		f.emit(Event{Kind: KindWikiRef, Ref: wn.Ref})
		return ast.WalkSkipChildren, nil

	case extast.KindStrikethrough:
		if entering {
			f.emit(Event{Kind: KindStrikethroughStart})
		} else {
			f.emit(Event{Kind: KindStrikethroughEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindTaskCheckBox:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		cb := n.(*extast.TaskCheckBox)
		f.emit(Event{Kind: KindTaskCheckbox, Checked: cb.IsChecked})
		return ast.WalkSkipChildren, nil

	case extast.KindTable:
		if entering {
			f.emit(Event{Kind: KindTableStart})
		} else {
			f.emit(Event{Kind: KindTableEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindTableHeader:
		if entering {
			f.emit(Event{Kind: KindTableRowStart, IsHeaderRow: true})
		} else {
			f.emit(Event{Kind: KindTableRowEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindTableRow:
		if entering {
			f.emit(Event{Kind: KindTableRowStart})
		} else {
			f.emit(Event{Kind: KindTableRowEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindTableCell:
		cell := n.(*extast.TableCell)
		if entering {
			f.emit(Event{Kind: KindTableCellStart, Align: alignString(cell.Alignment)})
		} else {
			f.emit(Event{Kind: KindTableCellEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindFootnoteLink:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		fl := n.(*extast.FootnoteLink)
		f.emit(Event{Kind: KindFootnoteRef, Text: f.footnoteRefs[fl.Index]})
		return ast.WalkSkipChildren, nil

	case extast.KindFootnoteBacklink:
		if !entering {
			return ast.WalkSkipChildren, nil
		}
		// The "↩" back-reference is an HTML-only affordance with no
		// CommonMark source representation; drop it rather than render it.
		return ast.WalkSkipChildren, nil

	case extast.KindFootnoteList:
		if entering {
			f.emit(Event{Kind: KindFootnoteListStart})
		} else {
			f.emit(Event{Kind: KindFootnoteListEnd})
		}
		return ast.WalkContinue, nil

	case extast.KindFootnote:
		fn := n.(*extast.Footnote)
		if entering {
			f.emit(Event{Kind: KindFootnoteDefStart, Text: string(fn.Ref)})
		} else {
			f.emit(Event{Kind: KindFootnoteDefEnd})
		}
		return ast.WalkContinue, nil
	}

	return ast.WalkContinue, nil
}

func alignString(a extast.Alignment) string {
	switch a {
	case extast.AlignLeft:
		return "left"
	case extast.AlignCenter:
		return "center"
	case extast.AlignRight:
		return "right"
	default:
		return ""
	}
}

// linesText concatenates a block node's raw source lines, used for code and
// HTML blocks whose content must survive byte-for-byte.
func linesText(n ast.Node, source []byte) string {
	lines := n.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// childText concatenates the decoded text of every descendant text-bearing
// node, used for inline containers (code spans, image alt text) whose
// content must be flattened to a plain string rather than re-emitted as
// nested events.
func childText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case ast.KindText:
			sb.Write(c.Text(source))
		case ast.KindCodeSpan, ast.KindAutoLink, ast.KindRawHTML:
			sb.Write(c.Text(source))
		default:
			sb.WriteString(childText(c, source))
		}
	}
	return sb.String()
}
