package embed

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
	"github.com/goliatone/go-obsidian-export/internal/reference"
	"github.com/goliatone/go-obsidian-export/internal/vaultindex"
)

func buildIndex(t *testing.T, root string, files map[string]string) *vaultindex.Index {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, filepath.Join(root, name))
	}
	idx, _ := vaultindex.Build(root, names, map[string]struct{}{".md": {}})
	return idx
}

func newExpander(t *testing.T, root string, files map[string]string) *Expander {
	t.Helper()
	idx := buildIndex(t, root, files)
	cfg := Config{
		Index:          idx,
		DestinationFor: func(p string) string { return p },
		EmbeddableExts: []string{".png"},
		Mode:           ModeError,
		RecursionLimit: 10,
		Warn:           diagnostics.New(),
		Load: func(p string) ([]byte, error) {
			rel, _ := filepath.Rel(root, p)
			return []byte(files[rel]), nil
		},
	}
	return New(cfg, nil)
}

func TestEmbedResolvesWholeNote(t *testing.T) {
	root := "/vault"
	files := map[string]string{
		"Host.md":     "See embed below.\n",
		"Fragment.md": "Fragment body.\n",
	}
	e := newExpander(t, root, files)
	ctx := notectx.Context{RootPath: filepath.Join(root, "Host.md"), CurrentPath: filepath.Join(root, "Host.md"), DestinationPath: filepath.Join(root, "Host.md")}

	_, embedResolver := e.Resolvers(ctx)
	res := embedResolver(refNote("Fragment", true))
	if res.Kind != engine.EmbedKindBlocks {
		t.Fatalf("expected blocks, got %#v", res)
	}
	found := false
	for _, ev := range res.Blocks {
		if ev.Kind == engine.KindText && ev.Text == "Fragment body." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fragment body text, got %#v", res.Blocks)
	}
}

func TestEmbedCycleErrorModeFatal(t *testing.T) {
	root := "/vault"
	files := map[string]string{
		"A.md": "![[B]]\n",
		"B.md": "![[A]]\n",
	}
	e := newExpander(t, root, files)
	ctx := notectx.Context{RootPath: filepath.Join(root, "A.md"), CurrentPath: filepath.Join(root, "A.md"), DestinationPath: filepath.Join(root, "A.md")}
	ctx = ctx.WithEmbed(filepath.Join(root, "B.md"), "B")

	_, embedResolver := e.Resolvers(ctx)
	embedResolver(refNote("A", true))
	if e.Err() == nil {
		t.Fatalf("expected fatal recursion error")
	}
}

func TestEmbedUnresolvedTargetFallsBackToLiteralText(t *testing.T) {
	root := "/vault"
	files := map[string]string{"Host.md": "x"}
	e := newExpander(t, root, files)
	ctx := notectx.Context{RootPath: filepath.Join(root, "Host.md"), CurrentPath: filepath.Join(root, "Host.md"), DestinationPath: filepath.Join(root, "Host.md")}

	_, embedResolver := e.Resolvers(ctx)
	res := embedResolver(refNote("Missing", true))
	if res.Kind != engine.EmbedKindText || res.Text != "![[Missing]]" {
		t.Fatalf("unexpected fallback: %#v", res)
	}
}

func refNote(target string, isEmbed bool) reference.Note {
	return reference.Note{Target: target, IsEmbed: isEmbed}
}
