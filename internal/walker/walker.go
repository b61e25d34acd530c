// Package walker traverses a vault directory tree, honoring an optional
// custom ignore file (in .gitignore syntax) and the vault's own .gitignore,
// and by default skipping dotfiles and dotdirectories, since Obsidian
// vaults keep their own configuration under .obsidian/ and plugin data
// under other dot-prefixed directories that were never meant to be
// exported.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the default vault-root ignore file name, used when
// Options.IgnoreFilename is left empty.
const IgnoreFileName = ".export-ignore"

// Options configures one Walk call, mirroring --hidden, --no-git, and
// --ignore-file.
type Options struct {
	// IgnoreFilename overrides the default ignore file name.
	IgnoreFilename string
	// IncludeHidden disables the default dotfile/dotdirectory skip.
	IncludeHidden bool
	// HonorGitignore additionally applies the vault root's .gitignore.
	HonorGitignore bool
}

// DefaultOptions are the exporter's CLI defaults: dotfiles skipped,
// .gitignore honored, ignore file named ".export-ignore".
func DefaultOptions() Options {
	return Options{IgnoreFilename: IgnoreFileName, HonorGitignore: true}
}

// File describes one walked file relative to the vault root.
type File struct {
	AbsPath string
	RelPath string
}

// Walk returns every non-ignored, non-directory file under root, in
// filepath.WalkDir's lexical, depth-first order, for deterministic
// processing order.
func Walk(root string, opts Options) ([]File, error) {
	if opts.IgnoreFilename == "" {
		opts.IgnoreFilename = IgnoreFileName
	}
	matchers := loadMatchers(root, opts)

	var files []File
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if !opts.IncludeHidden && isDotted(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(matchers, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, File{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isDotted(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchesAny(matchers []*gitignore.GitIgnore, rel string) bool {
	for _, m := range matchers {
		if m.MatchesPath(rel) {
			return true
		}
	}
	return false
}

func loadMatchers(root string, opts Options) []*gitignore.GitIgnore {
	var out []*gitignore.GitIgnore
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(root, opts.IgnoreFilename)); err == nil {
		out = append(out, m)
	}
	if opts.HonorGitignore {
		if m, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			out = append(out, m)
		}
	}
	return out
}
