// Package notectx carries the per-note, per-embed-frame state the pipeline
// threads through the Vault Index, Link Rewriter, Embed Expander, and
// Postprocessor Chain: which note is the export root, which note body is
// currently being rendered (the two diverge inside an embed), the root
// note's mutable frontmatter, the resolved destination path, and the chain
// of embeds traversed to reach the current frame.
package notectx

import "github.com/goliatone/go-obsidian-export/internal/frontmatter"

// EmbedFrame identifies one hop in the embed chain: the absolute path of
// the embedded note and the display name used in cycle diagnostics.
type EmbedFrame struct {
	Path        string
	DisplayName string
}

// Context is passed by value through the pipeline; Frontmatter is a
// pointer because postprocessors mutate the root note's document in place
// and expect later postprocessors (and the final render) to see the
// change.
type Context struct {
	RootPath        string
	CurrentPath     string
	Frontmatter     *frontmatter.Document
	DestinationPath string
	EmbedChain      []EmbedFrame
}

// WithEmbed returns a copy of c describing the frame entered when
// recursing into the embed at path/displayName: CurrentPath moves to the
// embedded note, RootPath/Frontmatter/DestinationPath are unchanged, and
// the new frame is appended to EmbedChain.
func (c Context) WithEmbed(path, displayName string) Context {
	chain := make([]EmbedFrame, len(c.EmbedChain), len(c.EmbedChain)+1)
	copy(chain, c.EmbedChain)
	chain = append(chain, EmbedFrame{Path: path, DisplayName: displayName})

	next := c
	next.CurrentPath = path
	next.EmbedChain = chain
	return next
}

// HasVisited reports whether path already appears in the embed chain,
// including the root note itself. Callers run this check before
// descending into any embed.
func (c Context) HasVisited(path string) bool {
	if path == c.RootPath && len(c.EmbedChain) == 0 {
		return true
	}
	for _, frame := range c.EmbedChain {
		if frame.Path == path {
			return true
		}
	}
	return c.RootPath == path
}

// ChainPaths returns the full chain (root note first) for diagnostics.
func (c Context) ChainPaths() []string {
	paths := make([]string, 0, len(c.EmbedChain)+1)
	paths = append(paths, c.RootPath)
	for _, frame := range c.EmbedChain {
		paths = append(paths, frame.Path)
	}
	return paths
}
