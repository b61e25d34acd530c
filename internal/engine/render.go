package engine

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

// listFrame tracks the nesting state the serializer needs while walking a
// KindListStart/KindListEnd region: whether the list is ordered and the
// next item number to print.
type listFrame struct {
	ordered bool
	next    int
}

// Render serializes an Event stream back to CommonMark text. It is the
// mirror image of Flatten+Resolve: by the time Render runs, every
// KindWikiRef event must already have been replaced by Resolve, since
// Render has no reference-resolution logic of its own and emits a
// surviving KindWikiRef as its literal bracket form only as a last-resort
// fallback.
func Render(events []Event) []byte {
	r := &renderer{}
	r.run(events)
	return r.buf.Bytes()
}

type renderer struct {
	buf        bytes.Buffer
	listStack  []listFrame
	linkStack  []Event
	quoteDepth int
	atLineHead bool
}

func (r *renderer) run(events []Event) {
	r.atLineHead = true
	for i := 0; i < len(events); i++ {
		// A footnote definition's first paragraph continues on its
		// "[^label]: " marker line instead of opening a new block.
		if events[i].Kind == KindParagraphStart && i > 0 && events[i-1].Kind == KindFootnoteDefStart {
			continue
		}
		r.emit(events[i])
	}
}

func (r *renderer) writeRaw(s string) {
	r.buf.WriteString(s)
	if len(s) > 0 {
		r.atLineHead = s[len(s)-1] == '\n'
	}
}

func (r *renderer) newline() {
	if !r.atLineHead {
		r.writeRaw("\n")
	}
}

func (r *renderer) blankLine() {
	r.newline()
	r.writeRaw("\n")
}

func (r *renderer) prefix() string {
	return strings.Repeat("> ", r.quoteDepth)
}

func (r *renderer) emit(e Event) {
	switch e.Kind {
	case KindParagraphStart:
		r.blankLine()
		r.writeRaw(r.prefix())
	case KindParagraphEnd:
		r.newline()

	case KindHeadingStart:
		r.blankLine()
		r.writeRaw(r.prefix() + strings.Repeat("#", e.Level) + " ")
	case KindHeadingEnd:
		r.newline()

	case KindBlockquoteStart:
		r.quoteDepth++
	case KindBlockquoteEnd:
		r.quoteDepth--

	case KindListStart:
		r.listStack = append(r.listStack, listFrame{ordered: e.Ordered, next: max(e.Start, 1)})
	case KindListEnd:
		r.listStack = r.listStack[:len(r.listStack)-1]
		r.blankLine()

	case KindListItemStart:
		r.newline()
		r.writeRaw(r.prefix() + r.itemMarker())
	case KindListItemEnd:
		r.newline()

	case KindCodeBlock:
		r.blankLine()
		if e.Fenced {
			fence := chooseFence(e.Text)
			r.writeRaw(r.prefix() + fence + e.Lang + "\n")
			r.writeFencedBody(e.Text)
			r.writeRaw(r.prefix() + fence + "\n")
		} else {
			for _, line := range strings.SplitAfter(e.Text, "\n") {
				if line == "" {
					continue
				}
				r.writeRaw(r.prefix() + "    " + line)
			}
		}

	case KindHTMLBlock:
		r.blankLine()
		r.writeRaw(e.Text)

	case KindThematicBreak:
		r.blankLine()
		r.writeRaw(r.prefix() + "---\n")

	case KindTableStart, KindTableEnd:
		// handled via row/cell events; no delimiter of its own.
	case KindTableRowStart:
		r.newline()
		r.writeRaw(r.prefix() + "|")
	case KindTableRowEnd:
		r.newline()
	case KindTableCellStart:
		r.writeRaw(" ")
	case KindTableCellEnd:
		r.writeRaw(" |")

	case KindText:
		r.writeRaw(escapeText(e.Text))
	case KindSoftBreak:
		r.writeRaw("\n" + r.prefix())
	case KindHardBreak:
		r.writeRaw("  \n" + r.prefix())
	case KindCodeSpan:
		r.writeRaw(wrapCodeSpan(e.Text))
	case KindRawHTML:
		r.writeRaw(e.Text)
	case KindAutoLink:
		r.writeRaw("<" + e.Dest + ">")

	case KindEmphasisStart:
		r.writeRaw(emphasisMarker(e.Level))
	case KindEmphasisEnd:
		r.writeRaw(emphasisMarker(e.Level))

	case KindStrikethroughStart, KindStrikethroughEnd:
		r.writeRaw("~~")

	case KindLinkStart:
		r.linkStack = append(r.linkStack, e)
		r.writeRaw("[")
	case KindLinkEnd:
		open := r.linkStack[len(r.linkStack)-1]
		r.linkStack = r.linkStack[:len(r.linkStack)-1]
		if open.Title != "" {
			r.writeRaw(fmt.Sprintf("](%s %q)", open.Dest, open.Title))
		} else {
			r.writeRaw(fmt.Sprintf("](%s)", open.Dest))
		}

	case KindImage:
		r.writeRaw(fmt.Sprintf("![%s](%s)", escapeText(e.Alt), e.Dest))

	case KindTaskCheckbox:
		if e.Checked {
			r.writeRaw("[x] ")
		} else {
			r.writeRaw("[ ] ")
		}

	case KindFootnoteRef:
		r.writeRaw("[^" + e.Text + "]")

	case KindFootnoteListStart, KindFootnoteListEnd:
		// no delimiter of its own; each definition prints its own marker.

	case KindFootnoteDefStart:
		r.blankLine()
		r.writeRaw(r.prefix() + "[^" + e.Text + "]: ")
	case KindFootnoteDefEnd:
		r.newline()

	case KindWikiRef:
		r.writeRaw(wikiFallback(e))
	}
}

func (r *renderer) itemMarker() string {
	f := &r.listStack[len(r.listStack)-1]
	if !f.ordered {
		return "- "
	}
	n := f.next
	f.next++
	return fmt.Sprintf("%d. ", n)
}

func (r *renderer) writeFencedBody(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		r.writeRaw(r.prefix() + line)
	}
	r.newline()
}

// chooseFence picks a backtick fence unless the body itself contains a
// backtick run, in which case it falls back to tildes, mirroring
// CommonMark's own fence-collision rule.
func chooseFence(body string) string {
	if strings.Contains(body, "```") {
		return "~~~"
	}
	return "```"
}

func wrapCodeSpan(text string) string {
	fence := "`"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") {
		return fence + " " + text + " " + fence
	}
	return fence + text + fence
}

func emphasisMarker(level int) string {
	if level >= 2 {
		return "**"
	}
	return "*"
}

// escapeText escapes the handful of ASCII punctuation characters that
// CommonMark treats as potential inline-markup delimiters, but only in
// positions where a subsequent parse could actually read the character as
// markup rather than as the literal prose goldmark already resolved it to
// be. "*" and "_" are escaped using CommonMark's own delimiter-run
// flanking rule, including the intraword exemption for "_", so
// "5 * 3" and "snake_case_name" round-trip unescaped. "[", "]", "<", ">"
// are escaped only when a matching counterpart elsewhere in the same run
// could pair up into a link or autolink/raw tag, and "`" only when it
// borders another backtick. "\" is always escaped: it is CommonMark's own
// escape trigger, so a literal backslash is ambiguous in any position.
func escapeText(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		switch r {
		case '\\':
			sb.WriteByte('\\')
		case '*', '_':
			if isFlankingDelimiter(runes, i, r) {
				sb.WriteByte('\\')
			}
		case '`':
			if bordersBacktick(runes, i) {
				sb.WriteByte('\\')
			}
		case '[':
			if runAfterContains(runes, i, ']') {
				sb.WriteByte('\\')
			}
		case ']':
			if runBeforeContains(runes, i, '[') {
				sb.WriteByte('\\')
			}
		case '<':
			if runAfterContains(runes, i, '>') {
				sb.WriteByte('\\')
			}
		case '>':
			if runBeforeContains(runes, i, '<') {
				sb.WriteByte('\\')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isFlankingDelimiter reports whether the "*" or "_" at runes[i] is left-
// or right-flanking per CommonMark's delimiter-run rule, meaning it could
// open or close emphasis if left unescaped. "_" additionally honors the
// intraword restriction: a run of letters on both sides never flanks.
func isFlankingDelimiter(runes []rune, i int, delim rune) bool {
	prev, hasPrev := runeBefore(runes, i)
	next, hasNext := runeAfter(runes, i)

	prevSpace := !hasPrev || unicode.IsSpace(prev)
	nextSpace := !hasNext || unicode.IsSpace(next)
	prevPunct := hasPrev && isMarkupPunct(prev)
	nextPunct := hasNext && isMarkupPunct(next)

	leftFlanking := !nextSpace && (!nextPunct || prevSpace || prevPunct)
	rightFlanking := !prevSpace && (!prevPunct || nextSpace || nextPunct)

	if delim == '_' {
		canOpen := leftFlanking && (!rightFlanking || prevPunct)
		canClose := rightFlanking && (!leftFlanking || nextPunct)
		return canOpen || canClose
	}
	return leftFlanking || rightFlanking
}

func isMarkupPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func runeBefore(runes []rune, i int) (rune, bool) {
	if i-1 < 0 {
		return 0, false
	}
	return runes[i-1], true
}

func runeAfter(runes []rune, i int) (rune, bool) {
	if i+1 >= len(runes) {
		return 0, false
	}
	return runes[i+1], true
}

func bordersBacktick(runes []rune, i int) bool {
	if prev, ok := runeBefore(runes, i); ok && prev == '`' {
		return true
	}
	if next, ok := runeAfter(runes, i); ok && next == '`' {
		return true
	}
	return false
}

func runAfterContains(runes []rune, from int, target rune) bool {
	for i := from + 1; i < len(runes); i++ {
		if runes[i] == target {
			return true
		}
	}
	return false
}

func runBeforeContains(runes []rune, upto int, target rune) bool {
	for i := 0; i < upto; i++ {
		if runes[i] == target {
			return true
		}
	}
	return false
}

func wikiFallback(e Event) string {
	prefix := "[["
	if e.Ref.IsEmbed {
		prefix = "![["
	}
	return prefix + e.Ref.Display() + "]]"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
