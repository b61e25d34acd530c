package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-obsidian-export/internal/config"
	"github.com/goliatone/go-obsidian-export/internal/diagnostics"
	"github.com/goliatone/go-obsidian-export/internal/export"
	"github.com/goliatone/go-obsidian-export/internal/logging"
	"github.com/goliatone/go-obsidian-export/internal/logging/console"
	"github.com/goliatone/go-obsidian-export/internal/postprocess"
	"github.com/goliatone/go-obsidian-export/pkg/interfaces"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr *os.File) error {
	fs := flag.NewFlagSet("obsidian-export", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts, err := config.ParseFlags(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	provider := console.NewProvider(console.Options{Writer: stdout})
	warn := diagnostics.New()

	chain := postprocess.Chain{}
	if opts.HardLineBreaks {
		chain = append(chain, postprocess.HardLineBreaks)
	}
	chain = append(chain, postprocess.ObsidianComments(warn))

	driver := &export.Driver{
		Options:             opts,
		NotePostprocessors:  chain,
		EmbedPostprocessors: chain,
		Logger:              logging.ExporterLogger(provider),
		Warn:                warn,
	}

	result, runErr := driver.Run(context.Background())

	logWarnings(logging.ExporterLogger(provider), result.Warnings)
	fmt.Fprintf(stdout, "exported %d note(s), skipped %d\n", result.Exported, result.Skipped)

	if runErr != nil {
		printCycleReport(stderr, runErr)
		return runErr
	}
	return nil
}

func logWarnings(logger interfaces.Logger, warnings []diagnostics.Warning) {
	for _, w := range warnings {
		fields := map[string]any{"path": w.Path, "run_id": w.RunID}
		if len(w.EmbedChain) > 0 {
			fields["embed_chain"] = strings.Join(w.EmbedChain, " -> ")
		}
		logging.WithFields(logger, fields).Warn(w.Message)
	}
}

// printCycleReport prints an indented "-> path" tree for a recursion-limit
// failure, matching the original tool's file-tree report; any other error
// is printed as-is by main's top-level handler.
func printCycleReport(stderr *os.File, err error) {
	msg := err.Error()
	if !strings.Contains(msg, "->") {
		return
	}
	fmt.Fprintln(stderr, "\nFile tree:")
	for i, part := range strings.Split(msg, " -> ") {
		fmt.Fprintf(stderr, "%s-> %s\n", strings.Repeat("  ", i), strings.TrimSpace(part))
	}
}
