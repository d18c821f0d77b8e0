package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/mlforensics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMatches(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		keywords []string
		expected int
	}{
		{"empty content", "", schema.DefaultKeywords, 0},
		{"single import", "import torch\n", []string{"torch"}, 1},
		{"case insensitive line", "IMPORT TensorFlow AS TF\n", []string{"tensorflow"}, 1},
		{"one line many keywords", "import tensorflow as tf\n", []string{"tensorflow", "tf"}, 2},
		{"substring over-count", "url = 'x'\n", []string{"rl"}, 1},
		{"repeated keyword on a line counts once", "torch torch torch\n", []string{"torch"}, 1},
		{"per line", "torch\ntorch\n", []string{"torch"}, 2},
		{"mixed case keyword never matches", "from MAMEToolkit import x\n", []string{"MAMEToolkit"}, 0},
		{"no trailing newline", "import keras", []string{"keras"}, 1},
		{"lone carriage returns split lines", "import torch\rimport torch\r", []string{"torch"}, 2},
		{"crlf is one line break", "import torch\r\nimport torch\r\n", []string{"torch"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountMatches([]byte(tt.content), tt.keywords))
		})
	}
}

func TestCountMatches_Latin1(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1 and invalid as standalone UTF-8.
	content := []byte("# caf\xe9\nimport sklearn\n")
	assert.Equal(t, 1, CountMatches(content, []string{"sklearn"}))
}

func TestCountMatches_Additive(t *testing.T) {
	a := "import torch\nimport gym\n"
	b := "from keras import layers\n"
	kws := schema.DefaultKeywords
	assert.Equal(t, CountMatches([]byte(a), kws)+CountMatches([]byte(b), kws), CountMatches([]byte(a+b), kws))
}

func TestScanner_Scan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"train.py":              "import torch\nimport tensorflow as tf\n",
		"nb/explore.ipynb":      `{"source": ["import keras"]}`,
		"README.md":             "torch torch torch",
		"upper/MODEL.PY":        "import torch",
		"vendor/third_party.py": "import sklearn",
	})
	ctx := context.Background()

	s := NewScanner([]string{"torch", "tensorflow", "tf", "keras", "sklearn"}, MatchOptions{})
	matches, err := s.Scan(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 5, matches)

	s = NewScanner([]string{"torch", "tensorflow", "tf", "keras", "sklearn"}, MatchOptions{
		IgnoreExtensionCase: true,
		Excludes:            []string{"vendor/"},
	})
	matches, err = s.Scan(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 5, matches)
}

func TestScanner_ScanAdditiveOverSubdirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"models/net.py":      "import torch\nimport tensorflow as tf\n",
		"models/rl/agent.py": "import gym\n",
		"notebooks/a.ipynb":  `{"source": ["import keras", "from sklearn import svm"]}`,
		"notebooks/b.py":     "import h5py\r\nimport chainer\r\n",
	})
	s := NewScanner(schema.DefaultKeywords, MatchOptions{})
	ctx := context.Background()

	total, err := s.Scan(ctx, root)
	require.NoError(t, err)
	models, err := s.Scan(ctx, filepath.Join(root, "models"))
	require.NoError(t, err)
	notebooks, err := s.Scan(ctx, filepath.Join(root, "notebooks"))
	require.NoError(t, err)

	assert.Positive(t, models)
	assert.Positive(t, notebooks)
	assert.Equal(t, models+notebooks, total)
}

func TestScanner_ScanSkipsNonRegularSources(t *testing.T) {
	root := writeTree(t, map[string]string{"pkg/model.py": "import torch\n"})
	if err := os.Symlink(filepath.Join(root, "pkg"), filepath.Join(root, "x.py")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.py"), filepath.Join(root, "link.py")))

	matches, err := NewScanner([]string{"torch"}, MatchOptions{}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, matches)
}

func TestScanner_ScanEmptyAndMissing(t *testing.T) {
	s := NewScanner(schema.DefaultKeywords, MatchOptions{})
	ctx := context.Background()

	matches, err := s.Scan(ctx, t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, matches)

	matches, err = s.Scan(ctx, filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Zero(t, matches)
}

func TestScanner_ScanUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := writeTree(t, map[string]string{"locked.py": "import torch"})
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.py"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked.py"), 0o644) })

	_, err := NewScanner(schema.DefaultKeywords, MatchOptions{}).Scan(context.Background(), root)
	assert.ErrorIs(t, err, ErrScanFailed)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestScanner_ScanCanceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "import torch"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(schema.DefaultKeywords, MatchOptions{}).Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
