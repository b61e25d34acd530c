// Package postprocess implements the Postprocessor Chain: ordered
// lists of user- or CLI-registered callbacks that get mutable access to a
// note's Context and its fully flattened (and, for embeds, already
// link/embed-resolved) event stream, plus the small set of supplemental
// postprocessors the CLI wires in unconditionally or by flag.
package postprocess

import (
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
)

// Directive is a postprocessor's decision about how the chain should
// proceed after it runs.
type Directive int

const (
	// Continue proceeds to the next postprocessor in the chain.
	Continue Directive = iota
	// StopHere commits the note (or embed) with the events produced so
	// far and skips any remaining postprocessors.
	StopHere
	// StopAndSkipNote discards the note (or embed) entirely; no output is
	// produced for it.
	StopAndSkipNote
)

// Postprocessor receives mutable access to ctx (it may, for example,
// redirect ctx.DestinationPath or edit ctx.Frontmatter) and to events,
// returning the directive that governs the rest of the chain along with
// the (possibly rewritten) event slice.
type Postprocessor func(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event)

// Chain is an ordered list of Postprocessor run in registration order.
type Chain []Postprocessor

// Run executes the chain against ctx and events, stopping early on
// StopHere or StopAndSkipNote. It returns the final directive and the
// event stream as of whichever postprocessor stopped the chain (or all of
// them, if every one returned Continue).
func (c Chain) Run(ctx *notectx.Context, events []engine.Event) (Directive, []engine.Event) {
	for _, pp := range c {
		directive, next := pp(ctx, events)
		events = next
		if directive != Continue {
			return directive, events
		}
	}
	return Continue, events
}
