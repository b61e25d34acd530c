// Package config defines the exporter's runtime options and the
// stdlib flag wiring that populates them from the command line, following
// the same struct-plus-Validate() shape the CMS runtime config used for
// its own feature flags.
package config

import (
	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
	"github.com/goliatone/go-obsidian-export/internal/walker"
)

// StartAtMode selects how --start-at filters the notes walked from Source.
type StartAtMode int

const (
	// StartAtNone exports every note under Source.
	StartAtNone StartAtMode = iota
	// StartAtSubpath restricts the export to notes under a vault-relative
	// subdirectory, while still resolving links/embeds against the full
	// vault so references outside the subtree still work.
	StartAtSubpath
)

// Options is the fully-resolved set of options a single export run needs.
type Options struct {
	Source      string
	Destination string

	StartAt     string
	StartAtMode StartAtMode

	FrontmatterStrategy frontmatter.Strategy

	HardLineBreaks bool

	SkipTags       []string
	OnlyTags       []string
	EmbeddableExts []string
	NoteExtensions []string
	RecursionLimit int

	BreakCycles bool

	IncludeHidden  bool
	NoGit          bool
	IgnoreFilename string

	Workers int
}

// DefaultOptions returns the exporter's defaults: no tag filtering, one
// worker per CPU (Workers left at zero, resolved by the caller), frontmatter
// copied through only when present, and a recursion limit generous enough
// to catch runaway embed cycles without false positives on legitimately
// deep (but acyclic) embed chains.
func DefaultOptions() Options {
	return Options{
		FrontmatterStrategy: frontmatter.StrategyIfPresent,
		RecursionLimit:      10,
		EmbeddableExts: []string{
			".png", ".jpg", ".jpeg", ".gif", ".svg", ".bmp", ".webp", ".pdf",
			".mp4", ".webm", ".mp3", ".wav", ".flac", ".ogg", ".m4a",
		},
		NoteExtensions: []string{".md"},
		IgnoreFilename: walker.IgnoreFileName,
	}
}
