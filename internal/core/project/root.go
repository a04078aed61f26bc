// Package project locates the directory a courseselect invocation belongs
// to.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hycracing/courseselect/internal/defs"
)

// ErrNotInProject is returned when no parent of the start directory holds
// a .courseselect directory.
var ErrNotInProject = errors.New("project: no .courseselect directory found")

// @MX:ANCHOR: [AUTO] FindProjectRoot anchors config, .env and log paths to one directory
// @MX:REASON: [AUTO] called by the cli before every command that loads configuration
// FindProjectRoot walks upward from start until it finds a directory
// containing .courseselect and returns its absolute path.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, defs.ProjectDir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotInProject, start)
		}
		dir = parent
	}
}

// FindProjectRootOrCurrent is like FindProjectRoot but falls back on start
// itself, so commands work before `courseselect init` has run.
func FindProjectRootOrCurrent(start string) (string, error) {
	if root, err := FindProjectRoot(start); err == nil {
		return root, nil
	}
	return filepath.Abs(start)
}
