package vaultindex

import (
	"path/filepath"
	"testing"
)

func TestResolveByStem(t *testing.T) {
	root := "/vault"
	files := []string{
		filepath.FromSlash("/vault/Notes/Other.md"),
		filepath.FromSlash("/vault/img/photo.png"),
	}
	idx, dups := Build(root, files, map[string]struct{}{".md": {}})
	if len(dups) != 0 {
		t.Fatalf("unexpected duplicates: %#v", dups)
	}

	p, kind, ok := idx.Resolve("Other")
	if !ok || kind != KindNote || p != filepath.FromSlash("/vault/Notes/Other.md") {
		t.Fatalf("Resolve(Other) = %q, %v, %v", p, kind, ok)
	}

	p, kind, ok = idx.Resolve("Other.md")
	if !ok || kind != KindNote || p != filepath.FromSlash("/vault/Notes/Other.md") {
		t.Fatalf("Resolve(Other.md) = %q, %v, %v", p, kind, ok)
	}

	p, kind, ok = idx.Resolve("photo.png")
	if !ok || kind != KindAsset || p != filepath.FromSlash("/vault/img/photo.png") {
		t.Fatalf("Resolve(photo.png) = %q, %v, %v", p, kind, ok)
	}
}

func TestResolveIsCaseAndUnicodeInsensitive(t *testing.T) {
	root := "/vault"
	files := []string{filepath.FromSlash("/vault/Café.md")}
	idx, _ := Build(root, files, map[string]struct{}{".md": {}})

	if _, _, ok := idx.Resolve("café"); !ok {
		t.Fatalf("expected NFD variant to resolve")
	}
	if _, _, ok := idx.Resolve("  CAFÉ  "); !ok {
		t.Fatalf("expected case-insensitive, whitespace-padded lookup to resolve")
	}
}

func TestDuplicateStemTieBreak(t *testing.T) {
	root := "/vault"
	files := []string{
		filepath.FromSlash("/vault/a/long/path/Note.md"),
		filepath.FromSlash("/vault/Note.md"),
	}
	idx, dups := Build(root, files, map[string]struct{}{".md": {}})
	if len(dups) != 1 {
		t.Fatalf("expected one duplicate report, got %#v", dups)
	}
	p, _, ok := idx.Resolve("Note")
	if !ok || p != filepath.FromSlash("/vault/Note.md") {
		t.Fatalf("expected shorter path to win, got %q", p)
	}
	if dups[0].Winner != filepath.FromSlash("/vault/Note.md") {
		t.Fatalf("unexpected winner recorded: %#v", dups[0])
	}
}

func TestResolvePathSeparatorPrefersStem(t *testing.T) {
	root := "/vault"
	files := []string{filepath.FromSlash("/vault/sub/Note.md")}
	idx, _ := Build(root, files, map[string]struct{}{".md": {}})

	p, _, ok := idx.Resolve("sub/Note")
	if !ok || p != filepath.FromSlash("/vault/sub/Note.md") {
		t.Fatalf("Resolve(sub/Note) = %q, %v", p, ok)
	}
}

func TestResolveHonorsConfiguredNoteExtension(t *testing.T) {
	root := "/vault"
	files := []string{
		filepath.FromSlash("/vault/Notes/Other.txt"),
	}
	idx, _ := Build(root, files, map[string]struct{}{".txt": {}})

	p, kind, ok := idx.Resolve("Other")
	if !ok || kind != KindNote || p != filepath.FromSlash("/vault/Notes/Other.txt") {
		t.Fatalf("Resolve(Other) = %q, %v, %v", p, kind, ok)
	}
	p, kind, ok = idx.Resolve("Other.txt")
	if !ok || kind != KindNote || p != filepath.FromSlash("/vault/Notes/Other.txt") {
		t.Fatalf("Resolve(Other.txt) = %q, %v, %v", p, kind, ok)
	}
	// ".md" is not in the configured note-extension set here, so it must
	// not be stripped before lookup.
	if _, _, ok := idx.Resolve("Other.md"); ok {
		t.Fatalf("Resolve(Other.md) unexpectedly matched")
	}
}

func TestResolveMissing(t *testing.T) {
	idx, _ := Build("/vault", nil, map[string]struct{}{".md": {}})
	if _, _, ok := idx.Resolve("Nothing"); ok {
		t.Fatalf("expected no match")
	}
}
