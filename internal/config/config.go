// Package config loads the optional .citeclean.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/report"
)

// FileName is the name of the project configuration file.
const FileName = ".citeclean.yaml"

// Config holds all citeclean configuration.
type Config struct {
	Manuscripts ManuscriptsConfig `yaml:"manuscripts"`
	Scan        ScanConfig        `yaml:"scan"`
	Output      OutputConfig      `yaml:"output"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// ManuscriptsConfig controls manuscript discovery.
type ManuscriptsConfig struct {
	Pattern     string   `yaml:"pattern"`
	Exclude     []string `yaml:"exclude"`
	TrackedOnly bool     `yaml:"tracked_only"`
}

// ScanConfig controls the usage scan.
type ScanConfig struct {
	OnReadError string `yaml:"on_read_error"`
	Concurrency int    `yaml:"concurrency"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfig returns the configuration used when no file exists
// or a file leaves fields unset.
func DefaultConfig() *Config {
	return &Config{
		Manuscripts: ManuscriptsConfig{
			Pattern: "**/*.tex",
		},
		Scan: ScanConfig{
			OnReadError: string(core.ReadPolicyAbort),
			Concurrency: 8,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load searches for .citeclean.yaml starting from workDir and walking up.
// If none is found, defaults are returned.
func Load(workDir string) (*Config, error) {
	path, err := Find(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads config from a specific path, merges it with
// defaults and validates the result. A missing file yields defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	merged := Merge(loaded, DefaultConfig())
	merged.Path = path
	if err := Validate(merged); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return merged, nil
}

// Find locates .citeclean.yaml by walking up from startDir.
func Find(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		candidate := filepath.Join(currentDir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// Merge returns a new Config where set fields of loaded take precedence over defaults.
func Merge(loaded, defaults *Config) *Config {
	result := *defaults

	if loaded.Manuscripts.Pattern != "" {
		result.Manuscripts.Pattern = loaded.Manuscripts.Pattern
	}
	if loaded.Manuscripts.Exclude != nil {
		result.Manuscripts.Exclude = append(make([]string, 0, len(loaded.Manuscripts.Exclude)), loaded.Manuscripts.Exclude...)
	}
	result.Manuscripts.TrackedOnly = loaded.Manuscripts.TrackedOnly || defaults.Manuscripts.TrackedOnly

	if loaded.Scan.OnReadError != "" {
		result.Scan.OnReadError = loaded.Scan.OnReadError
	}
	if loaded.Scan.Concurrency != 0 {
		result.Scan.Concurrency = loaded.Scan.Concurrency
	}

	if loaded.Output.Format != "" {
		result.Output.Format = loaded.Output.Format
	}
	return &result
}

// Validate checks that config values are usable.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Manuscripts.Pattern) == "" {
		return fmt.Errorf("%w: manuscripts.pattern must not be empty", ErrInvalidConfig)
	}
	if !doublestar.ValidatePattern(cfg.Manuscripts.Pattern) {
		return fmt.Errorf("%w: manuscripts.pattern %q is not a valid glob", ErrInvalidConfig, cfg.Manuscripts.Pattern)
	}
	for _, ex := range cfg.Manuscripts.Exclude {
		if !doublestar.ValidatePattern(ex) {
			return fmt.Errorf("%w: manuscripts.exclude %q is not a valid glob", ErrInvalidConfig, ex)
		}
	}

	if _, err := core.ParseReadPolicy(cfg.Scan.OnReadError); err != nil {
		return fmt.Errorf("%w: scan.on_read_error: %v", ErrInvalidConfig, err)
	}
	if cfg.Scan.Concurrency < 0 {
		return fmt.Errorf("%w: scan.concurrency must be non-negative, got %d", ErrInvalidConfig, cfg.Scan.Concurrency)
	}

	if _, err := report.Lookup(cfg.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalidConfig, err)
	}
	return nil
}
