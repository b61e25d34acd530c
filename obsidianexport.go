// Package obsidianexport is the public entrypoint for embedding the
// exporter in another Go program: it re-exports the internal types an
// integrator needs to configure and run an export without reaching into
// internal packages directly.
package obsidianexport

import (
	"context"

	"github.com/goliatone/go-obsidian-export/internal/config"
	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/export"
	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
	"github.com/goliatone/go-obsidian-export/internal/postprocess"
	"github.com/goliatone/go-obsidian-export/pkg/interfaces"
)

type (
	// Options is the fully-resolved set of options a single export run
	// needs.
	Options = config.Options
	// StartAtMode selects how Options.StartAt filters the notes walked
	// from Options.Source.
	StartAtMode = config.StartAtMode
	// Driver runs one export given Options, note and embed postprocessor
	// chains, and a Logger for diagnostics logging.
	Driver = export.Driver
	// Result summarizes one export run.
	Result = export.Result
	// Warning is one non-fatal diagnostic produced during an export.
	Warning = diagnostics.Warning
	// Postprocessor transforms one note's or embed's event stream and
	// decides whether the chain continues, stops, or skips the note.
	Postprocessor = postprocess.Postprocessor
	// Chain runs an ordered list of Postprocessor values.
	Chain = postprocess.Chain
	// Strategy selects how frontmatter is emitted on write.
	Strategy = frontmatter.Strategy
	// Logger is the leveled logging contract the exporter logs through.
	Logger = interfaces.Logger
	// LoggerProvider exposes named, module-scoped Logger instances.
	LoggerProvider = interfaces.LoggerProvider
)

const (
	StartAtNone       = config.StartAtNone
	StartAtSubpath    = config.StartAtSubpath
	StrategyIfPresent = frontmatter.StrategyIfPresent
	StrategyAlways    = frontmatter.StrategyAlways
	StrategyNever     = frontmatter.StrategyNever
	Continue          = postprocess.Continue
	StopHere          = postprocess.StopHere
	StopAndSkipNote   = postprocess.StopAndSkipNote
)

// DefaultOptions returns the exporter's defaults: no tag filtering, one
// worker per CPU, frontmatter copied through only when present, and a
// recursion limit generous enough to catch runaway embed cycles without
// false positives on legitimately deep (but acyclic) embed chains.
func DefaultOptions() Options {
	return config.DefaultOptions()
}

// Run is a convenience wrapper around Driver.Run for callers that only
// need the default note/embed postprocessor chain (hard line breaks when
// requested, Obsidian comment elision always).
func Run(ctx context.Context, opts Options, logger Logger) (Result, error) {
	warn := diagnostics.New()
	chain := Chain{}
	if opts.HardLineBreaks {
		chain = append(chain, postprocess.HardLineBreaks)
	}
	chain = append(chain, postprocess.ObsidianComments(warn))

	driver := &Driver{
		Options:             opts,
		NotePostprocessors:  chain,
		EmbedPostprocessors: chain,
		Logger:              logger,
		Warn:                warn,
	}
	return driver.Run(ctx)
}
