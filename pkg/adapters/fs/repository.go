package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/citeclean/pkg/core"
)

// DefaultPattern matches every LaTeX manuscript below the project root.
const DefaultPattern = "**/*.tex"

// FileLister supplies candidate paths (relative to the root, slash separated)
// instead of walking the tree, e.g. the files tracked by git.
type FileLister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Root    string
	Pattern string   // doublestar pattern relative to Root, e.g. "**/*.tex"
	Exclude []string // doublestar patterns; matching directories are not descended
	Lister  FileLister
	Logger  *slog.Logger
}

// Repository implements core.SourceRepository on a local project tree.
// Locators are slash-separated paths relative to Root.
type Repository struct {
	Root   string
	config Config
}

// NewRepository creates a new filesystem-backed manuscript repository.
func NewRepository(config Config) *Repository {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	return &Repository{
		Root:   config.Root,
		config: config,
	}
}

// Initialize checks that the root is an existing directory and that every pattern is valid.
func (r *Repository) Initialize(ctx context.Context) error {
	info, err := os.Stat(r.Root)
	if os.IsNotExist(err) {
		return fmt.Errorf("project root does not exist: %s", r.Root)
	}
	if err != nil {
		return fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", r.Root)
	}

	if strings.TrimSpace(r.config.Pattern) == "" {
		return core.ErrEmptyPattern
	}
	if !doublestar.ValidatePattern(r.config.Pattern) {
		return fmt.Errorf("invalid manuscript pattern %q", r.config.Pattern)
	}
	for _, ex := range r.config.Exclude {
		if !doublestar.ValidatePattern(ex) {
			return fmt.Errorf("invalid exclude pattern %q", ex)
		}
	}
	return nil
}

// List returns every manuscript matching the pattern, sorted.
//
// Strategy:
//  1. If a FileLister is configured, filter its candidates.
//  2. Otherwise walk the tree, skipping .git and excluded directories.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	var files []string
	var err error

	if r.config.Lister != nil {
		files, err = r.listFromLister(ctx)
	} else {
		files, err = r.walk(ctx)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	if r.config.Logger != nil {
		r.config.Logger.Debug("listed manuscripts", "root", r.Root, "pattern", r.config.Pattern, "count", len(files))
	}
	return files, nil
}

func (r *Repository) walk(ctx context.Context) ([]string, error) {
	var files []string

	err := filepath.WalkDir(r.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(r.Root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if d.Name() == ".git" || r.excluded(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() && d.Type()&iofs.ModeSymlink == 0 {
			return nil
		}
		if r.matches(relPath) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.Root, err)
	}
	return files, nil
}

func (r *Repository) listFromLister(ctx context.Context) ([]string, error) {
	candidates, err := r.config.Lister.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate files: %w", err)
	}

	var files []string
	for _, c := range candidates {
		c = filepath.ToSlash(filepath.Clean(c))
		if r.excludedPath(c) {
			continue
		}
		if r.matches(c) {
			files = append(files, c)
		}
	}
	return files, nil
}

func (r *Repository) matches(relPath string) bool {
	if r.excluded(relPath) {
		return false
	}
	ok, err := doublestar.Match(r.config.Pattern, relPath)
	return err == nil && ok
}

func (r *Repository) excluded(relPath string) bool {
	for _, ex := range r.config.Exclude {
		if ok, err := doublestar.Match(ex, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// excludedPath reports whether relPath or any of its parent directories is excluded.
func (r *Repository) excludedPath(relPath string) bool {
	dir := relPath
	for dir != "." && dir != "/" && dir != "" {
		if r.excluded(dir) || filepath.Base(dir) == ".git" {
			return true
		}
		dir = filepath.ToSlash(filepath.Dir(dir))
	}
	return false
}

// Read loads one manuscript.
func (r *Repository) Read(ctx context.Context, path string) (core.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return core.SourceFile{}, err
	}

	fullPath := filepath.Join(r.Root, filepath.FromSlash(path))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return core.SourceFile{}, err
	}

	return core.SourceFile{Path: path, Text: string(data)}, nil
}

var _ core.SourceRepository = (*Repository)(nil)
