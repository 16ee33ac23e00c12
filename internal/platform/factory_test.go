package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citeclean/internal/config"
	"github.com/aretw0/citeclean/internal/platform"
	"github.com/aretw0/citeclean/pkg/adapters/fs"
	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/git"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

type memRepo map[string]string

func (m memRepo) List(ctx context.Context) ([]string, error) {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out, nil
}

func (m memRepo) Read(ctx context.Context, path string) (core.SourceFile, error) {
	text, ok := m[path]
	if !ok {
		return core.SourceFile{}, errors.New("missing")
	}
	return core.SourceFile{Path: path, Text: text}, nil
}

func TestNew_Detect(t *testing.T) {
	root := writeProject(t, map[string]string{
		"refs.bib":       "@article{alpha, title={A}}\n@book{beta, title={B}}\n",
		"main.tex":       `\cite{alpha}`,
		"build/old.tex":  `\cite{beta}`,
		"notes/todo.txt": "beta",
	})
	ctx := context.Background()

	svc, err := platform.New(ctx, root, platform.WithExclude("build"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "refs.bib"))
	require.NoError(t, err)

	rep, err := svc.Detect(ctx, core.Document{Path: "refs.bib", Text: string(data)})
	require.NoError(t, err)
	assert.Equal(t, core.KeySet{"beta"}, rep.Unused)
	assert.Equal(t, []string{"main.tex"}, rep.Scanned)
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, 2, rep.Diagnostics[0].Line)
}

func TestNew_InjectedRepository(t *testing.T) {
	ctx := context.Background()
	svc, err := platform.New(ctx, "ignored", platform.WithRepository(memRepo{"a.tex": "alpha"}))
	require.NoError(t, err)

	rep, err := svc.Detect(ctx, core.Document{Path: "refs.bib", Text: "@misc{alpha}\n@misc{gamma}"})
	require.NoError(t, err)
	assert.Equal(t, core.KeySet{"gamma"}, rep.Unused)
}

func TestNew_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	_, err := platform.New(ctx, root, platform.WithReadPolicy("retry"))
	assert.ErrorContains(t, err, "unknown read policy")

	_, err = platform.New(ctx, root, platform.WithAdapter("s3"))
	assert.ErrorContains(t, err, "unknown adapter: s3")

	_, err = platform.New(ctx, filepath.Join(root, "missing"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestInit_FromConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		"chapters/one.tex": "x",
		"drafts/two.tex":   "y",
	})
	cfg := config.DefaultConfig()
	cfg.Manuscripts.Exclude = []string{"drafts"}

	repo, err := platform.Init(context.Background(), root, platform.FromConfig(cfg)...)
	require.NoError(t, err)

	fsRepo, ok := repo.(*fs.Repository)
	require.True(t, ok)
	assert.Equal(t, root, fsRepo.Root)

	files, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chapters/one.tex"}, files)
}

func TestInit_TrackedOnly(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()

	t.Run("Outside Repository", func(t *testing.T) {
		_, err := platform.Init(ctx, t.TempDir(), platform.WithTrackedOnly(true))
		assert.ErrorIs(t, err, platform.ErrGitUnavailable)
	})

	t.Run("Only Tracked Files", func(t *testing.T) {
		root := writeProject(t, map[string]string{
			"main.tex":    "tracked",
			"scratch.tex": "untracked",
		})
		client := git.NewClient(root, nil)
		_, err := client.Run(ctx, "init")
		require.NoError(t, err)
		_, err = client.Run(ctx, "add", "main.tex")
		require.NoError(t, err)

		repo, err := platform.Init(ctx, root, platform.WithTrackedOnly(true))
		require.NoError(t, err)

		files, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"main.tex"}, files)
	})
}
