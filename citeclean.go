package citeclean

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/citeclean/internal/config"
	"github.com/aretw0/citeclean/internal/platform"
	"github.com/aretw0/citeclean/pkg/bibtex"
	"github.com/aretw0/citeclean/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Report is the outcome of one detection run.
type Report = core.Report

// Diagnostic is a warning positioned in the reference database.
type Diagnostic = core.Diagnostic

// KeySet is the ordered list of entry keys of a reference database.
type KeySet = core.KeySet

// Document is a reference database given by path and content.
type Document = core.Document

// Service runs detection against one project.
type Service = core.Service

// Config is the project configuration read from .citeclean.yaml.
type Config = config.Config

// --- Configuration ---

// Option defines a functional option for configuring detection.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom manuscript source.
func WithRepository(repo core.SourceRepository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the manuscript adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithPattern sets the glob selecting manuscripts.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithExclude adds glob patterns for paths that are never scanned.
func WithExclude(patterns ...string) Option {
	return platform.WithExclude(patterns...)
}

// WithTrackedOnly limits discovery to files tracked by git.
func WithTrackedOnly(enabled bool) Option {
	return platform.WithTrackedOnly(enabled)
}

// WithReadPolicy selects "abort" or "skip" for unreadable manuscripts.
func WithReadPolicy(policy string) Option {
	return platform.WithReadPolicy(policy)
}

// WithConcurrency bounds the number of manuscripts read at once.
func WithConcurrency(n int) Option {
	return platform.WithConcurrency(n)
}

// WithConfig applies a loaded project configuration.
// Options passed after it take precedence.
func WithConfig(cfg *Config) Option {
	return platform.WithConfig(cfg)
}

// LoadConfig finds and loads .citeclean.yaml above dir, or returns defaults.
func LoadConfig(dir string) (*Config, error) {
	return config.Load(dir)
}

// LoadConfigFile loads a specific configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFromPath(path)
}

// --- Factory ---

// New creates a detection service for the project rooted at root.
func New(ctx context.Context, root string, opts ...Option) (*Service, error) {
	return platform.New(ctx, root, opts...)
}

// FindRoot returns the project root for a reference database path.
func FindRoot(documentPath string) (string, error) {
	return platform.ResolveRoot(documentPath)
}

// --- Operations ---

// Detect reads the reference database at path, resolves its project root,
// applies the .citeclean.yaml found there (if any) and reports the entries
// no manuscript cites. opts override the file.
func Detect(ctx context.Context, path string, opts ...Option) (*Report, error) {
	if !core.IsReferenceDatabase(path) {
		return nil, core.ErrUnsupportedDocument
	}

	root, err := FindRoot(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference database: %w", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	svc, err := New(ctx, root, append([]Option{WithConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return svc.Detect(ctx, Document{Path: path, Text: string(data)})
}

// Keys parses BibTeX text and returns its entry keys in document order.
func Keys(text string) (KeySet, error) {
	return bibtex.Keys(text)
}
