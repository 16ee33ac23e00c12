package platform

import (
	"log/slog"

	"github.com/aretw0/citeclean/internal/config"
	"github.com/aretw0/citeclean/pkg/core"
)

// options holds the internal configuration for a detection service.
type options struct {
	repository  core.SourceRepository
	logger      *slog.Logger
	adapter     string
	pattern     string
	exclude     []string
	trackedOnly bool
	readPolicy  string
	concurrency int
}

// Option defines a functional option for configuring detection.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:     "fs",
		readPolicy:  string(core.ReadPolicyAbort),
		concurrency: config.DefaultConfig().Scan.Concurrency,
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom manuscript source (e.g. mock, in-memory).
// If provided, the default filesystem adapter will be skipped.
func WithRepository(repo core.SourceRepository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter allows specifying the manuscript adapter to use by name.
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithPattern sets the glob selecting manuscripts, relative to the project root.
// Defaults to "**/*.tex".
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithExclude adds glob patterns for paths that are never scanned.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithTrackedOnly limits discovery to files tracked by git.
func WithTrackedOnly(enabled bool) Option {
	return func(o *options) {
		o.trackedOnly = enabled
	}
}

// WithReadPolicy selects what happens when a manuscript cannot be read:
// "abort" (default) fails the run, "skip" logs and continues.
func WithReadPolicy(policy string) Option {
	return func(o *options) {
		o.readPolicy = policy
	}
}

// WithConcurrency bounds the number of manuscripts read at once.
// Zero means unbounded.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithConfig applies every setting of a loaded project configuration.
func WithConfig(cfg *config.Config) Option {
	opts := FromConfig(cfg)
	return func(o *options) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

// FromConfig translates a loaded project configuration into options.
// Options passed after these take precedence.
func FromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	opts := []Option{
		WithPattern(cfg.Manuscripts.Pattern),
		WithTrackedOnly(cfg.Manuscripts.TrackedOnly),
		WithReadPolicy(cfg.Scan.OnReadError),
		WithConcurrency(cfg.Scan.Concurrency),
	}
	if len(cfg.Manuscripts.Exclude) > 0 {
		opts = append(opts, WithExclude(cfg.Manuscripts.Exclude...))
	}
	return opts
}
