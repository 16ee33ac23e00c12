package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/citeclean/internal/config"
)

// ErrRootNotFound is returned when no project root indicator exists above a directory.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a project root indicator:
// a .citeclean.yaml file or a .git entry (directory, or file for worktrees).
// It returns the absolute path to the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, config.FileName) || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

// ResolveRoot picks the project root for a reference database:
// the nearest indicated root above it, otherwise its own directory.
func ResolveRoot(documentPath string) (string, error) {
	abs, err := filepath.Abs(documentPath)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(abs)

	root, err := FindRoot(dir)
	if errors.Is(err, ErrRootNotFound) {
		return dir, nil
	}
	return root, err
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
