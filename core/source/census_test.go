package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative path -> content) under a fresh temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCensus(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":               "readme",
		"setup.py":                "",
		"pkg/model.py":            "import torch",
		"pkg/data.csv":            "a,b",
		"notebooks/train.ipynb":   "{}",
		"notebooks/UPPER.PY":      "",
		"notebooks/deep/x.py.bak": "",
		".git/HEAD":               "ref: refs/heads/master",
	})

	census, err := Census(root, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8, census.TotalFiles)
	assert.Equal(t, 3, census.SourceFiles)
	assert.LessOrEqual(t, census.SourceFiles, census.TotalFiles)
}

func TestCensus_IgnoreExtensionCase(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.PY":        "",
		"b.Ipynb":     "",
		"c.py":        "",
		"d.txt":       "",
		"e.pyc":       "",
		"sub/f.IPYNB": "",
	})

	census, err := Census(root, MatchOptions{IgnoreExtensionCase: true})
	require.NoError(t, err)
	assert.Equal(t, 6, census.TotalFiles)
	assert.Equal(t, 4, census.SourceFiles)

	census, err = Census(root, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, census.SourceFiles)
}

func TestCensus_Excludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"vendor/lib.py":  "",
		"src/main.py":    "",
		"src/api_pb2.py": "",
		"src/helpers.py": "",
	})

	census, err := Census(root, MatchOptions{Excludes: []string{"vendor/", "*_pb2.py"}})
	require.NoError(t, err)
	assert.Equal(t, 4, census.TotalFiles, "excluded files still count toward the total")
	assert.Equal(t, 2, census.SourceFiles)
}

func TestCensus_EmptyAndMissingRoots(t *testing.T) {
	census, err := Census(t.TempDir(), MatchOptions{})
	require.NoError(t, err)
	assert.Zero(t, census.TotalFiles)
	assert.Zero(t, census.SourceFiles)

	census, err = Census(filepath.Join(t.TempDir(), "does-not-exist"), MatchOptions{})
	require.NoError(t, err)
	assert.Zero(t, census.TotalFiles)
	assert.Zero(t, census.SourceFiles)
}

func TestCensus_SymlinkCycleNotFollowed(t *testing.T) {
	root := writeTree(t, map[string]string{"pkg/a.py": ""})
	if err := os.Symlink(root, filepath.Join(root, "pkg", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	census, err := Census(root, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, census.TotalFiles, "a link to a directory is not a file")
	assert.Equal(t, 1, census.SourceFiles)
}

func TestCensus_Symlinks(t *testing.T) {
	root := writeTree(t, map[string]string{"pkg/model.py": "import torch"})
	links := map[string]string{
		"pkg_alias.py":  filepath.Join(root, "pkg"),
		"model_link.py": filepath.Join(root, "pkg", "model.py"),
		"dangling.py":   filepath.Join(root, "missing.py"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
	}

	census, err := Census(root, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, census.TotalFiles, "only the file and the link to it are counted")
	assert.Equal(t, 2, census.SourceFiles)
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		opts     MatchOptions
		expected bool
	}{
		{"python", "a/b.py", MatchOptions{}, true},
		{"notebook", "a/b.ipynb", MatchOptions{}, true},
		{"upper case rejected", "a/b.PY", MatchOptions{}, false},
		{"upper case accepted", "a/b.PY", MatchOptions{IgnoreExtensionCase: true}, true},
		{"compiled", "a/b.pyc", MatchOptions{}, false},
		{"pyi stub", "a/b.pyi", MatchOptions{}, false},
		{"excluded", "vendor/b.py", MatchOptions{Excludes: []string{"vendor/"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.opts.IsSourceFile(tt.path))
		})
	}
}
