// Package reference parses the body of an Obsidian wiki-link or embed
// token ([[target]], [[target|label]], [[target#section]], ![[target]])
// into the (target, section, label, is_embed) tuple described by the
// vault's cross-reference grammar. The tokens themselves are located in
// note text by internal/engine's inline parser.
package reference

import "strings"

// Note is a single parsed wiki token. Target and Section are always
// space-trimmed; Label keeps its interior whitespace and has at most one
// leading space stripped, mirroring how Obsidian trims the pipe delimiter.
type Note struct {
	Target  string
	Section string
	Label   string
	IsEmbed bool
}

// IsSelf reports whether the reference has no target and therefore resolves
// to the current note (e.g. "[[#Some Heading]]").
func (n Note) IsSelf() bool {
	return n.Target == ""
}

// Display renders the reference's no-label fallback text: "target#section",
// "target", or "#section" depending on which parts are present.
func (n Note) Display() string {
	switch {
	case n.Target != "" && n.Section != "":
		return n.Target + "#" + n.Section
	case n.Target != "":
		return n.Target
	case n.Section != "":
		return "#" + n.Section
	default:
		return ""
	}
}

// LinkText returns the label when one was supplied, otherwise the display
// fallback.
func (n Note) LinkText() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Display()
}

// New parses the raw text between a token's brackets into a Note,
// following the first-| / first-# splitting rule. The engine package's
// goldmark inline parser (internal/engine/wikiparser.go) isolates the
// token body directly against raw source bytes and calls New with it,
// rather than scanning already-decoded text itself.
func New(body string, isEmbed bool) Note {
	return parseBody(body, isEmbed)
}

// parseBody splits the raw text between the brackets into target, section,
// and label, following the first-| / first-# splitting rule.
func parseBody(body string, isEmbed bool) Note {
	targetWithSection := body
	label := ""
	hasLabel := false
	if idx := strings.IndexByte(body, '|'); idx >= 0 {
		targetWithSection = body[:idx]
		label = body[idx+1:]
		hasLabel = true
	}

	target := targetWithSection
	section := ""
	if idx := strings.IndexByte(targetWithSection, '#'); idx >= 0 {
		target = targetWithSection[:idx]
		section = targetWithSection[idx+1:]
	}

	if hasLabel && strings.HasPrefix(label, " ") {
		label = label[1:]
	}

	return Note{
		Target:  strings.TrimSpace(target),
		Section: strings.TrimSpace(section),
		Label:   label,
		IsEmbed: isEmbed,
	}
}
