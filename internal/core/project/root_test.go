package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindProjectRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".courseselect"), 0o755); err != nil {
		t.Fatal(err)
	}
	child := filepath.Join(root, "logs", "2026")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{root, child} {
		got, err := FindProjectRoot(start)
		if err != nil {
			t.Fatalf("FindProjectRoot(%q) error = %v", start, err)
		}
		if got != root {
			t.Errorf("FindProjectRoot(%q) = %q, want %q", start, got, root)
		}
	}
}

func TestFindProjectRoot_NotInProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := FindProjectRoot(dir); !errors.Is(err, ErrNotInProject) {
		t.Errorf("FindProjectRoot() error = %v, want ErrNotInProject", err)
	}
}

func TestFindProjectRoot_FileIsNotProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".courseselect"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindProjectRoot(dir); !errors.Is(err, ErrNotInProject) {
		t.Errorf("FindProjectRoot() error = %v, want ErrNotInProject", err)
	}
}

func TestFindProjectRootOrCurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := FindProjectRootOrCurrent(dir)
	if err != nil {
		t.Fatalf("FindProjectRootOrCurrent() error = %v", err)
	}
	if got != dir {
		t.Errorf("FindProjectRootOrCurrent() = %q, want %q", got, dir)
	}
}
