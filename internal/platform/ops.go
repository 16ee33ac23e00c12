package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/citeclean/pkg/adapters/fs"
	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/git"
)

// ErrGitUnavailable is returned when tracked-only discovery is requested
// but git or a repository is missing.
var ErrGitUnavailable = errors.New("tracked-only discovery requires git")

// Init builds the manuscript source for the project at root.
// The 'root' argument is adapter-specific (a directory for 'fs').
func Init(ctx context.Context, root string, opts ...Option) (core.SourceRepository, error) {
	o := applyOptions(opts)

	// 1. Check for injected repository
	if o.repository != nil {
		return o.repository, nil
	}

	// 2. Initialize based on adapter
	switch o.adapter {
	case "fs":
		return initFS(ctx, root, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(ctx context.Context, root string, o *options) (core.SourceRepository, error) {
	repoConfig := fs.Config{
		Root:    root,
		Pattern: o.pattern,
		Exclude: o.exclude,
		Logger:  o.logger,
	}

	if o.trackedOnly {
		lister, err := gitLister(ctx, root, o)
		if err != nil {
			return nil, err
		}
		repoConfig.Lister = lister
	}

	repo := fs.NewRepository(repoConfig)
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func gitLister(ctx context.Context, root string, o *options) (fs.FileLister, error) {
	if !git.IsInstalled() {
		return nil, fmt.Errorf("%w: git executable not found", ErrGitUnavailable)
	}

	client := git.NewClient(root, o.logger)
	top, err := client.TopLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	if o.logger != nil {
		o.logger.Debug("listing tracked manuscripts", "root", root, "toplevel", top)
	}
	return client, nil
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
