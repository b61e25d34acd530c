package linkrewrite

import (
	"path/filepath"

	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
	"github.com/goliatone/go-obsidian-export/internal/reference"
	"github.com/goliatone/go-obsidian-export/internal/vaultindex"
)

// DestinationFor maps an absolute vault source path to its mirrored
// export destination path. internal/export supplies the real
// implementation (mirroring the source-relative subpath under the
// destination root); tests can stub it trivially.
type DestinationFor func(absSourcePath string) string

// FilterSet reports whether an absolute vault path was excluded from this
// export run by the driver's tag/start-at filters (but still exists in
// the vault and therefore still resolves through the Vault Index).
type FilterSet interface {
	Excluded(absPath string) bool
}

// NewResolver returns a LinkResolver bound to one note's Context: ctx
// supplies the root note's destination directory that every relative URL
// is computed against, idx resolves wiki targets to vault paths, dest
// turns a resolved vault path into its destination path, filtered reports
// exclusion, and warn records unresolved-target diagnostics.
func NewResolver(ctx notectx.Context, idx *vaultindex.Index, dest DestinationFor, filtered FilterSet, warn *diagnostics.Sink) engine.LinkResolver {
	rootDestDir := filepath.Dir(ctx.DestinationPath)

	return func(ref reference.Note) engine.LinkResolution {
		fallback := ref.LinkText()

		if ref.IsSelf() {
			return engine.LinkResolution{Text: fallback, Dest: SelfAnchor(ref.Section), Linked: ref.Section != ""}
		}

		absPath, _, ok := idx.Resolve(ref.Target)
		if !ok {
			warn.Warn(diagnostics.Warning{
				Kind:       diagnostics.KindUnresolvedLink,
				Path:       ctx.CurrentPath,
				EmbedChain: chainNames(ctx),
				Message:    "unresolved link target: " + ref.Target,
			})
			return engine.LinkResolution{Text: fallback, Linked: false}
		}

		if filtered != nil && filtered.Excluded(absPath) {
			return engine.LinkResolution{Text: fallback, Linked: false}
		}

		url := DestinationURL(rootDestDir, dest(absPath), ref.Section)
		return engine.LinkResolution{Text: fallback, Dest: url, Linked: true}
	}
}

func chainNames(ctx notectx.Context) []string {
	names := make([]string, 0, len(ctx.EmbedChain))
	for _, frame := range ctx.EmbedChain {
		names = append(names, frame.DisplayName)
	}
	return names
}
