package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateAcceptsSingleFileSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "note.md")
	if err := os.WriteFile(source, []byte("# Hi\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	opts := DefaultOptions()
	opts.Source = source
	opts.Destination = filepath.Join(dir, "out.md")

	if err := opts.Validate(); err != nil {
		t.Fatalf("expected a single-file source to validate, got %v", err)
	}
}

func TestValidateAcceptsDirectorySource(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultOptions()
	opts.Source = dir
	opts.Destination = filepath.Join(dir, "out")

	if err := opts.Validate(); err != nil {
		t.Fatalf("expected a directory source to validate, got %v", err)
	}
}

func TestValidateRejectsMissingSource(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = filepath.Join(t.TempDir(), "does-not-exist.md")
	opts.Destination = "out"

	if err := opts.Validate(); err == nil {
		t.Fatal("expected a missing source path to fail validation")
	}
}

func TestValidateRejectsEmptySource(t *testing.T) {
	opts := DefaultOptions()
	opts.Destination = "out"

	if err := opts.Validate(); err == nil {
		t.Fatal("expected an empty source to fail validation")
	}
}
