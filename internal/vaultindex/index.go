// Package vaultindex builds and queries the mapping from an Obsidian
// note-lookup-key to a real file on disk, reproducing Obsidian's
// case-insensitive, Unicode-normalized, extension-optional title matching.
package vaultindex

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind distinguishes Markdown notes from every other file the vault
// contains, so callers can tell "a link target that resolves to a real,
// non-Markdown asset" apart from "a link target that doesn't exist".
type Kind int

const (
	KindNote Kind = iota
	KindAsset
)

type entry struct {
	path string
	kind Kind
}

// Index is an immutable, read-only-after-build mapping from lookup key to
// absolute file path. A single Index is shared by reference across every
// worker in the export pool.
type Index struct {
	root      string
	byStem    map[string]entry
	byRelPath map[string]entry
	noteExts  map[string]struct{}
}

// DuplicateKey describes a lookup-key collision detected during Build. The
// implementation's tie-break is deterministic: the shorter absolute path
// wins, ties broken lexicographically; Winner is always the path retained
// in the index.
type DuplicateKey struct {
	Key    string
	Winner string
	Loser  string
}

var foldCaser = cases.Fold()

// normalizeKey applies the canonicalization lookup keys need: Unicode
// NFC normalization, Unicode case-folding, and trimming.
func normalizeKey(s string) string {
	return strings.TrimSpace(foldCaser.String(norm.NFC.String(s)))
}

// Build indexes every file in files (absolute paths) relative to root.
// noteExts is the set of file extensions (lowercase, including the leading
// dot, e.g. ".md") treated as Markdown notes; every other extension is
// indexed as an asset. Build returns the populated Index plus a report of
// every duplicate-key collision it resolved, for the caller to turn into
// warnings.
func Build(root string, files []string, noteExts map[string]struct{}) (*Index, []DuplicateKey) {
	idx := &Index{
		root:      root,
		byStem:    make(map[string]entry, len(files)),
		byRelPath: make(map[string]entry, len(files)),
		noteExts:  noteExts,
	}

	var dups []DuplicateKey

	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			rel = file
		}
		rel = filepath.ToSlash(rel)

		ext := strings.ToLower(filepath.Ext(rel))
		kind := KindAsset
		stemSource := rel
		if _, isNote := noteExts[ext]; isNote {
			kind = KindNote
			stemSource = strings.TrimSuffix(rel, filepath.Ext(rel))
		}

		candidate := entry{path: file, kind: kind}
		stemKey := normalizeKey(path.Base(stemSource))
		relKey := normalizeKey(stemSource)

		if d := insert(idx.byStem, stemKey, candidate); d != nil {
			dups = append(dups, *d)
		}
		insert(idx.byRelPath, relKey, candidate)
	}

	return idx, dups
}

func insert(m map[string]entry, key string, candidate entry) *DuplicateKey {
	if key == "" {
		return nil
	}

	existing, exists := m[key]
	if !exists {
		m[key] = candidate
		return nil
	}

	winner := existing
	if less(candidate.path, existing.path) {
		winner = candidate
	}
	m[key] = winner

	loser := candidate.path
	if winner.path == candidate.path {
		loser = existing.path
	}
	return &DuplicateKey{Key: key, Winner: winner.path, Loser: loser}
}

// less implements the documented duplicate-key tie-break: shorter path
// wins, ties broken lexicographically.
func less(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// stripNoteExt trims target's extension when it matches one of idx's
// configured note extensions, so a reference can omit it.
func (idx *Index) stripNoteExt(s string) string {
	ext := strings.ToLower(filepath.Ext(s))
	if _, isNote := idx.noteExts[ext]; isNote {
		return s[:len(s)-len(ext)]
	}
	return s
}

// Resolve looks up a user-written reference target and returns the absolute
// path plus its kind. Resolution is extension-optional for Markdown notes
// ("Note" and "Note.md" resolve identically) and, for targets containing a
// path separator, tries the stem-only form first and the full relative path
// second: stem-only wins on a match.
func (idx *Index) Resolve(target string) (absPath string, kind Kind, ok bool) {
	target = idx.stripNoteExt(strings.TrimSpace(target))
	if target == "" {
		return "", 0, false
	}

	target = filepath.ToSlash(target)
	if strings.Contains(target, "/") {
		stemKey := normalizeKey(path.Base(target))
		if e, found := idx.byStem[stemKey]; found {
			return e.path, e.kind, true
		}
		relKey := normalizeKey(target)
		if e, found := idx.byRelPath[relKey]; found {
			return e.path, e.kind, true
		}
		return "", 0, false
	}

	stemKey := normalizeKey(target)
	if e, found := idx.byStem[stemKey]; found {
		return e.path, e.kind, true
	}
	return "", 0, false
}

// Root returns the scope root the index was built against.
func (idx *Index) Root() string {
	return idx.root
}
