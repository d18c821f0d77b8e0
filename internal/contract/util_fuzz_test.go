package contract

import (
	"testing"
)

// FuzzShouldIgnore fuzzes the ShouldIgnore function with random paths and exclude patterns.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"model.py", "*.log"},
		{"vendor/package/file.py", "vendor/"},
		{"proto/api_pb2.py", "*_pb2.py"},
		{"notebook.ipynb", ".ipynb"},
		{"", ""},
		{"very/long/path/to/file.py", "**/temp/**"},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(_ *testing.T, path string, excludesStr string) {
		_ = ShouldIgnore(path, SplitList(excludesStr))
	})
}
