// Package embed implements the Embed Expander: dispatching a
// ![[...]] reference to an image event, a link event, a recursively
// rendered block splice, or a literal-text fallback, with cycle detection
// and a depth backstop against runaway (but acyclic) embed chains.
package embed

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
	"github.com/goliatone/go-obsidian-export/internal/linkrewrite"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
	"github.com/goliatone/go-obsidian-export/internal/postprocess"
	"github.com/goliatone/go-obsidian-export/internal/reference"
	"github.com/goliatone/go-obsidian-export/internal/vaultindex"
)

// RecursionMode selects what happens when the Embed Expander detects that
// the target of a ![[...]] is already present in the current embed
// chain.
type RecursionMode int

const (
	// ModeError aborts the export with RecursionLimitExceeded, reporting
	// the full chain. This is the default: a real embed cycle is almost
	// certainly an authoring mistake.
	ModeError RecursionMode = iota
	// ModeBreakCycle emits a plain link to the cyclic target instead of
	// recursing, and continues the export.
	ModeBreakCycle
)

// LoadSource reads the raw bytes of a note at absPath. internal/export
// supplies the real os.ReadFile-backed implementation.
type LoadSource func(absPath string) ([]byte, error)

// Config bundles everything the Embed Expander needs beyond the Context
// it is invoked with.
type Config struct {
	Index               *vaultindex.Index
	DestinationFor      linkrewrite.DestinationFor
	Filtered            linkrewrite.FilterSet
	EmbeddableExts      []string
	Mode                RecursionMode
	RecursionLimit      int
	Warn                *diagnostics.Sink
	Load                LoadSource
	EmbedPostprocessors postprocess.Chain
}

// Expander runs the Embed Expander for one export run. It is shared
// across every note's resolver chain, including recursively across embed
// frames, since its Config and Fatal state are read-only except for the
// one-time Fatal transition.
type Expander struct {
	cfg Config

	fatalOnce sync.Once
	fatalErr  error
	onFatal   func(error)
}

// New returns an Expander. onFatal is invoked exactly once, the first
// time a RecursionLimitExceeded condition fires in ModeError; the driver
// passes a callback that cancels the shared export context so no further
// notes are dispatched to workers, matching the "per-note fatal error
// aborts the whole export" policy.
func New(cfg Config, onFatal func(error)) *Expander {
	return &Expander{cfg: cfg, onFatal: onFatal}
}

// Err returns the first fatal error recorded by this Expander, if any.
func (e *Expander) Err() error {
	return e.fatalErr
}

func (e *Expander) fatal(err error) {
	e.fatalOnce.Do(func() {
		e.fatalErr = err
		if e.onFatal != nil {
			e.onFatal(err)
		}
	})
}

// Resolvers returns the LinkResolver and EmbedResolver bound to ctx, for
// engine.Resolve to apply against ctx's note's event stream.
func (e *Expander) Resolvers(ctx notectx.Context) (engine.LinkResolver, engine.EmbedResolver) {
	link := linkrewrite.NewResolver(ctx, e.cfg.Index, e.cfg.DestinationFor, e.cfg.Filtered, e.cfg.Warn)
	return link, e.embedResolver(ctx)
}

func (e *Expander) embedResolver(ctx notectx.Context) engine.EmbedResolver {
	return func(ref reference.Note) engine.EmbedResolution {
		if ref.IsSelf() {
			return engine.EmbedResolution{Kind: engine.EmbedKindLink, Text: ref.LinkText(), Dest: linkrewrite.SelfAnchor(ref.Section)}
		}

		absPath, kind, ok := e.cfg.Index.Resolve(ref.Target)
		if !ok {
			e.cfg.Warn.Warn(diagnostics.Warning{
				Kind:       diagnostics.KindUnresolvedLink,
				Path:       ctx.CurrentPath,
				EmbedChain: chainNames(ctx),
				Message:    "unresolved embed target: " + ref.Target,
			})
			return engine.EmbedResolution{Kind: engine.EmbedKindText, Text: "![[" + ref.Display() + "]]"}
		}

		if e.cfg.Filtered != nil && e.cfg.Filtered.Excluded(absPath) {
			e.cfg.Warn.Warn(diagnostics.Warning{
				Kind:       diagnostics.KindFilteredEmbed,
				Path:       ctx.CurrentPath,
				EmbedChain: chainNames(ctx),
				Message:    "embed target filtered out of export: " + ref.Target,
			})
			return engine.EmbedResolution{Kind: engine.EmbedKindBlocks, Blocks: nil}
		}

		if kind == vaultindex.KindAsset {
			return e.resolveAssetEmbed(ctx, ref, absPath)
		}

		return e.resolveNoteEmbed(ctx, ref, absPath)
	}
}

func (e *Expander) resolveAssetEmbed(ctx notectx.Context, ref reference.Note, absPath string) engine.EmbedResolution {
	rootDestDir := path.Dir(ctx.DestinationPath)
	dest := linkrewrite.DestinationURL(rootDestDir, e.cfg.DestinationFor(absPath), "")

	alt := ref.Label
	if alt == "" {
		alt = path.Base(absPath)
	}

	if linkrewrite.IsEmbeddableAsset(absPath, e.cfg.EmbeddableExts) {
		return engine.EmbedResolution{Kind: engine.EmbedKindImage, Text: alt, Dest: dest}
	}
	return engine.EmbedResolution{Kind: engine.EmbedKindLink, Text: alt, Dest: dest}
}

func (e *Expander) resolveNoteEmbed(ctx notectx.Context, ref reference.Note, absPath string) engine.EmbedResolution {
	displayName := ref.LinkText()

	if ctx.HasVisited(absPath) {
		if e.cfg.Mode == ModeBreakCycle {
			rootDestDir := path.Dir(ctx.DestinationPath)
			dest := linkrewrite.DestinationURL(rootDestDir, e.cfg.DestinationFor(absPath), ref.Section)
			e.cfg.Warn.Warn(diagnostics.Warning{
				Kind:       diagnostics.KindBrokenCycle,
				Path:       ctx.CurrentPath,
				EmbedChain: chainNames(ctx),
				Message:    "embed cycle broken at: " + ref.Target,
			})
			return engine.EmbedResolution{Kind: engine.EmbedKindLink, Text: displayName, Dest: dest}
		}
		e.fatal(fmt.Errorf("embed recursion limit exceeded: %s", chainString(ctx, absPath)))
		return engine.EmbedResolution{Kind: engine.EmbedKindText, Text: displayName}
	}

	if len(ctx.EmbedChain) >= e.cfg.RecursionLimit {
		e.fatal(fmt.Errorf("embed depth exceeded limit of %d: %s", e.cfg.RecursionLimit, chainString(ctx, absPath)))
		return engine.EmbedResolution{Kind: engine.EmbedKindText, Text: displayName}
	}

	raw, err := e.cfg.Load(absPath)
	if err != nil {
		e.cfg.Warn.Warn(diagnostics.Warning{
			Kind:       diagnostics.KindUnresolvedLink,
			Path:       ctx.CurrentPath,
			EmbedChain: chainNames(ctx),
			Message:    "failed to read embed target: " + err.Error(),
		})
		return engine.EmbedResolution{Kind: engine.EmbedKindText, Text: displayName}
	}

	childCtx := ctx.WithEmbed(absPath, displayName)

	// The embedded note's own frontmatter never participates in output;
	// only its body is spliced into the host.
	_, body, err := frontmatter.Split(raw)
	if err != nil {
		body = raw
	}

	cleanBody := postprocess.StripIgnoreBlocks(string(body))

	link, embedResolver := e.Resolvers(childCtx)
	events := engine.Parse([]byte(cleanBody))
	events = engine.Resolve(events, link, embedResolver)

	directive, events := e.cfg.EmbedPostprocessors.Run(&childCtx, events)
	if directive == postprocess.StopAndSkipNote {
		return engine.EmbedResolution{Kind: engine.EmbedKindBlocks, Blocks: nil}
	}

	if ref.Section != "" {
		events = trimToHeadingSlice(events, ref.Section)
	}

	return engine.EmbedResolution{Kind: engine.EmbedKindBlocks, Blocks: events}
}

// trimToHeadingSlice narrows events to the span starting at the heading
// whose slugified text matches section (inclusive) and ending before the
// next heading of equal-or-shallower level (exclusive). If no heading
// matches, events is returned unchanged.
func trimToHeadingSlice(events []engine.Event, section string) []engine.Event {
	targetSlug := linkrewrite.Slugify(section)

	start := -1
	startLevel := 0
	for i := 0; i < len(events); i++ {
		if events[i].Kind != engine.KindHeadingStart {
			continue
		}
		text := headingText(events, i)
		if linkrewrite.Slugify(text) == targetSlug {
			start = i
			startLevel = events[i].Level
			break
		}
	}
	if start < 0 {
		return events
	}

	end := len(events)
	for i := start + 1; i < len(events); i++ {
		if events[i].Kind == engine.KindHeadingStart && events[i].Level <= startLevel {
			end = i
			break
		}
	}

	return engine.Clone(events[start:end])
}

func headingText(events []engine.Event, start int) string {
	var sb strings.Builder
	for i := start + 1; i < len(events) && events[i].Kind != engine.KindHeadingEnd; i++ {
		if events[i].Kind == engine.KindText {
			sb.WriteString(events[i].Text)
		}
	}
	return sb.String()
}

func chainNames(ctx notectx.Context) []string {
	names := make([]string, 0, len(ctx.EmbedChain))
	for _, frame := range ctx.EmbedChain {
		names = append(names, frame.DisplayName)
	}
	return names
}

func chainString(ctx notectx.Context, next string) string {
	paths := append(ctx.ChainPaths(), next)
	return strings.Join(paths, " -> ")
}
