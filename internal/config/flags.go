package config

import (
	"flag"
	"strings"

	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
)

// ParseFlags registers the exporter's CLI surface onto fs and returns the
// resolved Options, mirroring how a flag.FlagSet is wired into a plain
// options struct before handing it to the command handler.
func ParseFlags(fs *flag.FlagSet, args []string) (Options, error) {
	opts := DefaultOptions()

	source := fs.String("source", "", "Path to the Obsidian vault root")
	destination := fs.String("destination", "", "Path to the directory the CommonMark export is written to")
	startAt := fs.String("start-at", "", "Vault-relative subdirectory to restrict the export to")
	frontmatterStrategy := fs.String("frontmatter", "ifpresent", "Frontmatter handling: ifpresent, always, or never")
	hardLineBreaks := fs.Bool("hard-linebreaks", false, "Treat every line break as a hard break")
	var skipTags, onlyTags stringListFlag
	fs.Var(&skipTags, "skip-tags", "Tag whose notes are excluded from the export (repeatable)")
	fs.Var(&onlyTags, "only-tags", "Tag to include; only notes matching at least one are exported (repeatable)")
	noRecursiveEmbeds := fs.Bool("no-recursive-embeds", false, "Break embed cycles instead of aborting the export")
	hidden := fs.Bool("hidden", false, "Include dotfiles and dotdirectories")
	noGit := fs.Bool("no-git", false, "Do not honor the vault's .gitignore")
	ignoreFile := fs.String("ignore-file", opts.IgnoreFilename, "Ignore-file name, in .gitignore syntax")
	embeddableExts := fs.String("embeddable-extensions", strings.Join(opts.EmbeddableExts, ","), "Comma separated list of file extensions embedded as images/links rather than recursed into")
	noteExts := fs.String("note-extensions", strings.Join(opts.NoteExtensions, ","), "Comma separated list of file extensions treated as Markdown notes")
	recursionLimit := fs.Int("recursion-limit", opts.RecursionLimit, "Maximum embed recursion depth before aborting with an error")
	workers := fs.Int("workers", 0, "Number of notes processed concurrently (0 selects one worker per CPU)")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	opts.Source = *source
	opts.Destination = *destination
	opts.HardLineBreaks = *hardLineBreaks
	opts.RecursionLimit = *recursionLimit
	opts.Workers = *workers

	if trimmed := strings.TrimSpace(*startAt); trimmed != "" {
		opts.StartAt = trimmed
		opts.StartAtMode = StartAtSubpath
	}

	strategy, err := frontmatter.ParseStrategy(*frontmatterStrategy)
	if err != nil {
		return Options{}, err
	}
	opts.FrontmatterStrategy = strategy

	opts.SkipTags = []string(skipTags)
	opts.OnlyTags = []string(onlyTags)
	opts.BreakCycles = *noRecursiveEmbeds
	opts.IncludeHidden = *hidden
	opts.NoGit = *noGit
	if trimmed := strings.TrimSpace(*ignoreFile); trimmed != "" {
		opts.IgnoreFilename = trimmed
	}
	if exts := splitNonEmpty(*embeddableExts); len(exts) > 0 {
		opts.EmbeddableExts = exts
	}
	if exts := splitNonEmpty(*noteExts); len(exts) > 0 {
		opts.NoteExtensions = exts
	}

	return opts, nil
}

// stringListFlag accumulates one slice entry per occurrence of the flag
// (--skip-tags=a --skip-tags=b), implementing flag.Value so repeated uses
// append instead of overwrite, matching the CLI's documented
// repeatable-flag contract for --skip-tags/--only-tags.
type stringListFlag []string

func (f *stringListFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

func (f *stringListFlag) Set(v string) error {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		*f = append(*f, trimmed)
	}
	return nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
