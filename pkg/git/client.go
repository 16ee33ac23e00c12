package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotRepository is returned when the working directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Client runs read-only git commands in a working directory.
type Client struct {
	WorkDir string
	Logger  *slog.Logger
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir: workDir,
		Logger:  logger,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Run executes a raw git command in the working directory.
// Stdout is returned untrimmed; stderr is folded into the error.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return stdout.String(), fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// TopLevel returns the absolute path of the work tree root.
func (c *Client) TopLevel(ctx context.Context) (string, error) {
	out, err := c.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, c.WorkDir)
	}
	return filepath.FromSlash(strings.TrimSpace(out)), nil
}

// ListFiles returns the files tracked in the index below WorkDir,
// slash separated and relative to WorkDir.
// It satisfies fs.FileLister so discovery can be limited to tracked manuscripts.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	if !c.IsRepo(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, c.WorkDir)
	}

	out, err := c.Run(ctx, "ls-files", "-z", "--cached")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f == "" {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}
