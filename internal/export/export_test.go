package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-obsidian-export/internal/config"
)

func writeFixture(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestRunTreatsConfiguredExtensionAsNote(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFixture(t, filepath.Join(src, "note.txt"), "# Title\n\nSome body text.\n")

	opts := config.DefaultOptions()
	opts.Source = src
	opts.Destination = dst
	opts.NoteExtensions = []string{".txt"}

	driver := &Driver{Options: opts}
	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Exported != 1 {
		t.Fatalf("expected 1 exported note, got %d", result.Exported)
	}

	out, err := os.ReadFile(filepath.Join(dst, "note.txt"))
	if err != nil {
		t.Fatalf("expected rendered note at destination: %v", err)
	}
	if want := "Some body text."; !strings.Contains(string(out), want) {
		t.Fatalf("expected rendered output to contain %q, got %q", want, out)
	}
}

func TestRunCopiesNonConfiguredExtensionAsAsset(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFixture(t, filepath.Join(src, "note.md"), "# Title\n\nBody.\n")

	opts := config.DefaultOptions()
	opts.Source = src
	opts.Destination = dst
	opts.NoteExtensions = []string{".txt"}

	driver := &Driver{Options: opts}
	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Exported != 0 {
		t.Fatalf("expected note.md to be copied as an asset, not rendered, got %d exported", result.Exported)
	}

	out, err := os.ReadFile(filepath.Join(dst, "note.md"))
	if err != nil {
		t.Fatalf("expected copied asset at destination: %v", err)
	}
	if string(out) != "# Title\n\nBody.\n" {
		t.Fatalf("expected byte-identical copy, got %q", out)
	}
}

func TestRunAcceptsSingleFileSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	notePath := filepath.Join(src, "solo.md")
	writeFixture(t, notePath, "# Solo\n\nJust one note.\n")

	destFile := filepath.Join(dst, "solo.md")

	opts := config.DefaultOptions()
	opts.Source = notePath
	opts.Destination = destFile

	driver := &Driver{Options: opts}
	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Exported != 1 {
		t.Fatalf("expected 1 exported note, got %d", result.Exported)
	}
}

