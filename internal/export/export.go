// Package export implements the Exporter Driver: resolving the
// source/destination file set, building the Vault Index once, and
// processing every eligible note in parallel through the Markdown Event
// Pipeline, the Embed Expander, the Link Rewriter, and the Postprocessor
// Chain, using a jobs-channel-plus-WaitGroup worker pool.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-obsidian-export/internal/config"
	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/embed"
	"github.com/goliatone/go-obsidian-export/internal/engine"
	"github.com/goliatone/go-obsidian-export/internal/frontmatter"
	"github.com/goliatone/go-obsidian-export/internal/logging"
	"github.com/goliatone/go-obsidian-export/internal/notectx"
	"github.com/goliatone/go-obsidian-export/internal/postprocess"
	"github.com/goliatone/go-obsidian-export/internal/vaultindex"
	"github.com/goliatone/go-obsidian-export/internal/walker"
	"github.com/goliatone/go-obsidian-export/pkg/interfaces"
)

// noteExtensionSet turns Options.NoteExtensions into the lowercase,
// leading-dot set vaultindex.Build and the per-file Markdown checks below
// key off of, falling back to ".md" only when the caller left the option
// unset.
func noteExtensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return map[string]struct{}{".md": {}}
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// isNoteFile reports whether relPath's extension is in noteExts.
func isNoteFile(relPath string, noteExts map[string]struct{}) bool {
	_, ok := noteExts[strings.ToLower(filepath.Ext(relPath))]
	return ok
}

// Result summarizes one export run.
type Result struct {
	Exported int
	Skipped  int
	Warnings []diagnostics.Warning
}

// Driver runs one export given Options, note and embed postprocessor
// chains, and a Logger for diagnostics logging.
type Driver struct {
	Options             config.Options
	NotePostprocessors  postprocess.Chain
	EmbedPostprocessors postprocess.Chain
	Logger              interfaces.Logger
	// Warn collects diagnostics for this run. Callers that build
	// postprocessors needing a sink (e.g. postprocess.ObsidianComments)
	// must pass the same Sink here so those warnings surface in Result.
	Warn *diagnostics.Sink
}

// Run executes the export and returns once every note has been processed
// or a fatal error has aborted the run.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	runLog := d.Logger
	if runLog == nil {
		runLog = logging.NoOp()
	}
	runLog = logging.WithFields(runLog, map[string]any{"run_id": runID})

	sourceRoot, fileList, singleFile, err := resolveSource(d.Options.Source)
	if err != nil {
		return Result{}, wrapInvocationError(err)
	}
	runLog.Info("export run started", "source", d.Options.Source, "destination", d.Options.Destination)

	walkOpts := walker.Options{
		IgnoreFilename: d.Options.IgnoreFilename,
		IncludeHidden:  d.Options.IncludeHidden,
		HonorGitignore: !d.Options.NoGit,
	}
	allFiles, err := walker.Walk(sourceRoot, walkOpts)
	if err != nil {
		return Result{}, wrapInvocationError(err)
	}
	if fileList != nil {
		allFiles = fileList
	}

	noteExts := noteExtensionSet(d.Options.NoteExtensions)

	eligible := applyStartAt(allFiles, d.Options.StartAt, d.Options.StartAtMode)

	filtered, err := buildTagFilterSet(allFiles, noteExts, d.Options.SkipTags, d.Options.OnlyTags)
	if err != nil {
		return Result{}, err
	}
	eligible = excludeFiltered(eligible, filtered)

	var absAll []string
	for _, f := range allFiles {
		absAll = append(absAll, f.AbsPath)
	}
	idx, dups := vaultindex.Build(sourceRoot, absAll, noteExts)

	warn := d.Warn
	if warn == nil {
		warn = diagnostics.New()
	}
	for _, dup := range dups {
		warn.Warn(diagnostics.Warning{Kind: diagnostics.KindDuplicateLookupKey, Path: dup.Loser, Message: fmt.Sprintf("duplicate lookup key %q, %q wins", dup.Key, dup.Winner)})
	}

	destRoot := d.Options.Destination
	destFor := func(absSourcePath string) string {
		return destinationFor(sourceRoot, destRoot, absSourcePath, singleFile)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mode := embed.ModeError
	if d.Options.BreakCycles {
		mode = embed.ModeBreakCycle
	}
	expander := embed.New(embed.Config{
		Index:               idx,
		DestinationFor:      destFor,
		Filtered:            filtered,
		EmbeddableExts:      d.Options.EmbeddableExts,
		Mode:                mode,
		RecursionLimit:      d.Options.RecursionLimit,
		Warn:                warn,
		Load:                os.ReadFile,
		EmbedPostprocessors: d.EmbedPostprocessors,
	}, func(error) { cancel() })

	result := Result{}
	var mu sync.Mutex
	record := func(skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		if skipped {
			result.Skipped++
		} else {
			result.Exported++
		}
	}

	workers := d.Options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan walker.File)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex
	setErr := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				select {
				case <-runCtx.Done():
					continue
				default:
				}
				skipped, err := d.processFile(runCtx, file, sourceRoot, destFor, idx, expander, warn, noteExts)
				if err != nil {
					logging.WithFields(runLog, map[string]any{"path": file.RelPath}).Error("note processing failed", "error", err)
					setErr(err)
					continue
				}
				if !isNoteFile(file.RelPath, noteExts) {
					continue // copied assets are not counted as exported notes
				}
				record(skipped)
			}
		}()
	}

	for _, file := range eligible {
		select {
		case <-runCtx.Done():
			goto drain
		case jobs <- file:
		}
	}
drain:
	close(jobs)
	wg.Wait()

	result.Warnings = warn.Drain()
	for i := range result.Warnings {
		result.Warnings[i].RunID = runID
	}

	runLog.Info("export run completed", "exported", result.Exported, "skipped", result.Skipped, "warnings", len(result.Warnings))

	if firstErr != nil {
		return result, firstErr
	}
	if expErr := expander.Err(); expErr != nil {
		return result, expErr
	}
	return result, nil
}

func (d *Driver) processFile(ctx context.Context, file walker.File, sourceRoot string, destFor func(string) string, idx *vaultindex.Index, expander *embed.Expander, warn *diagnostics.Sink, noteExts map[string]struct{}) (skipped bool, err error) {
	if !isNoteFile(file.RelPath, noteExts) {
		return false, copyAsset(file.AbsPath, destFor(file.AbsPath))
	}

	raw, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "read note").WithTextCode("EXPORT_READ_FAILED")
	}

	doc, body, err := frontmatter.Split(raw)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "parse frontmatter").WithTextCode("EXPORT_FRONTMATTER_INVALID")
	}

	destPath := destFor(file.AbsPath)
	rootCtx := notectx.Context{
		RootPath:        file.AbsPath,
		CurrentPath:     file.AbsPath,
		Frontmatter:     doc,
		DestinationPath: destPath,
	}

	cleanBody := postprocess.StripIgnoreBlocks(string(body))

	link, embedResolver := expander.Resolvers(rootCtx)
	events := engine.Parse([]byte(cleanBody))
	events = engine.Resolve(events, link, embedResolver)

	directive, events := d.NotePostprocessors.Run(&rootCtx, events)
	if directive == postprocess.StopAndSkipNote {
		return true, nil
	}

	rendered := engine.Render(events)

	fm, err := rootCtx.Frontmatter.Render(d.frontmatterStrategy())
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "render frontmatter").WithTextCode("EXPORT_FRONTMATTER_RENDER_FAILED")
	}

	out := append(fm, rendered...)

	if err := writeFile(rootCtx.DestinationPath, out); err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "write note").WithTextCode("EXPORT_WRITE_FAILED")
	}
	return false, nil
}

func (d *Driver) frontmatterStrategy() frontmatter.Strategy {
	return d.Options.FrontmatterStrategy
}

// tagFilterSet is the driver-level tag-exclusion pre-pass: tag filtering
// narrows the eligible-for-processing file set while the Vault Index
// itself always sees every markdown file, filtered or not, so that a
// non-excluded note can still be told "that link target exists but was
// filtered out" rather than "unresolved". It applies the same
// skip-wins-over-include precedence as postprocess.TagFilter so a note's
// exclusion is identical whether decided here or, redundantly, by that
// postprocessor during its own processing.
type tagFilterSet struct {
	excluded map[string]struct{}
}

func (s *tagFilterSet) Excluded(absPath string) bool {
	if s == nil {
		return false
	}
	_, ok := s.excluded[absPath]
	return ok
}

// buildTagFilterSet reads every note's frontmatter tags and decides
// exclusion up front, independent of processing order, since link/embed
// resolvers for one note may need to know another note's filtered status
// before that note has necessarily been processed itself.
func buildTagFilterSet(files []walker.File, noteExts map[string]struct{}, skipTags, onlyTags []string) (*tagFilterSet, error) {
	set := &tagFilterSet{excluded: map[string]struct{}{}}
	if len(skipTags) == 0 && len(onlyTags) == 0 {
		return set, nil
	}

	for _, f := range files {
		if !isNoteFile(f.RelPath, noteExts) {
			continue
		}
		raw, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "read note for tag filtering").WithTextCode("EXPORT_READ_FAILED")
		}
		doc, _, err := frontmatter.Split(raw)
		if err != nil {
			continue
		}
		tags := doc.Tags()
		if anyTagMatch(tags, skipTags) {
			set.excluded[f.AbsPath] = struct{}{}
			continue
		}
		if len(onlyTags) > 0 && !anyTagMatch(tags, onlyTags) {
			set.excluded[f.AbsPath] = struct{}{}
		}
	}
	return set, nil
}

func anyTagMatch(tags, set []string) bool {
	for _, t := range tags {
		for _, s := range set {
			if t == s {
				return true
			}
		}
	}
	return false
}

func excludeFiltered(files []walker.File, filtered *tagFilterSet) []walker.File {
	if filtered == nil || len(filtered.excluded) == 0 {
		return files
	}
	out := make([]walker.File, 0, len(files))
	for _, f := range files {
		if !filtered.Excluded(f.AbsPath) {
			out = append(out, f)
		}
	}
	return out
}

func resolveSource(source string) (root string, fileList []walker.File, singleFile bool, err error) {
	info, statErr := os.Stat(source)
	if statErr != nil {
		return "", nil, false, statErr
	}
	if info.IsDir() {
		return source, nil, false, nil
	}
	root = filepath.Dir(source)
	rel, relErr := filepath.Rel(root, source)
	if relErr != nil {
		rel = filepath.Base(source)
	}
	return root, []walker.File{{AbsPath: source, RelPath: filepath.ToSlash(rel)}}, true, nil
}

func applyStartAt(files []walker.File, startAt string, mode config.StartAtMode) []walker.File {
	if mode != config.StartAtSubpath || startAt == "" {
		return files
	}
	prefix := filepath.ToSlash(startAt)
	var out []walker.File
	for _, f := range files {
		if f.RelPath == prefix || len(f.RelPath) > len(prefix) && f.RelPath[:len(prefix)+1] == prefix+"/" {
			out = append(out, f)
		}
	}
	return out
}

// destinationFor resolves the on-disk output path for absSourcePath. In
// single-file mode, destRoot is the literal target file unless it already
// names an existing directory, in which case the source's own basename is
// used inside it (so "--destination ./out/" still works for a single-file
// export, the same as a directory destination for a full vault).
func destinationFor(sourceRoot, destRoot, absSourcePath string, singleFile bool) string {
	if singleFile {
		if info, err := os.Stat(destRoot); err == nil && info.IsDir() {
			return filepath.Join(destRoot, filepath.Base(absSourcePath))
		}
		return destRoot
	}
	rel, err := filepath.Rel(sourceRoot, absSourcePath)
	if err != nil {
		rel = filepath.Base(absSourcePath)
	}
	return filepath.Join(destRoot, rel)
}

func copyAsset(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "create destination directory").WithTextCode("EXPORT_MKDIR_FAILED")
	}
	in, err := os.Open(src)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "open asset").WithTextCode("EXPORT_READ_FAILED")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "create asset destination").WithTextCode("EXPORT_WRITE_FAILED")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "copy asset").WithTextCode("EXPORT_WRITE_FAILED")
	}
	return nil
}

func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// wrapInvocationError categorizes a source/destination resolution failure
// as an invocation error rather than a per-note or warning-level one.
func wrapInvocationError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid export invocation").WithTextCode("EXPORT_INVOCATION_INVALID")
}
