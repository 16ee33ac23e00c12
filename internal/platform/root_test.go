package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// baseDir/
	//   repo/ (.git)
	//     paper/
	//       bib/
	//   configured/ (.citeclean.yaml)
	//     nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	bibDir := filepath.Join(repoDir, "paper", "bib")
	configuredDir := filepath.Join(baseDir, "configured")
	nestedDir := filepath.Join(configuredDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(bibDir, 0755))
	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(repoDir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configuredDir, ".citeclean.yaml"), nil, 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{"Start at Root", repoDir, repoDir, false},
		{"Start Nested Deeply", bibDir, repoDir, false},
		{"Config File Marker", nestedDir, configuredDir, false},
		{"No Root Found", emptyDir, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRootNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}

func TestResolveRoot(t *testing.T) {
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	looseDir := filepath.Join(baseDir, "loose")
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "bib"), 0755))
	require.NoError(t, os.MkdirAll(looseDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(repoDir, ".git"), 0755))

	root, err := ResolveRoot(filepath.Join(repoDir, "bib", "refs.bib"))
	require.NoError(t, err)
	assert.Equal(t, repoDir, root)

	root, err = ResolveRoot(filepath.Join(looseDir, "refs.bib"))
	require.NoError(t, err)
	assert.Equal(t, looseDir, root)
}
