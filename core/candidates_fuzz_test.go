package core

import (
	"path/filepath"
	"testing"
)

// FuzzClonePathFor checks that every URL maps to a direct child of the clone root.
func FuzzClonePathFor(f *testing.F) {
	for _, seed := range []string{
		"https://github.com/owner/repo",
		"https://github.com/owner/repo/",
		"git@github.com:owner/repo.git",
		"..",
		".",
		"",
		"/",
		"a b\\c:d",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, url string) {
		root := filepath.Join("clones", "root")
		path := ClonePathFor(url, root)
		if filepath.Dir(path) != root {
			t.Fatalf("ClonePathFor(%q) = %q escapes %q", url, path, root)
		}
	})
}
