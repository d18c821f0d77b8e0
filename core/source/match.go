// Package source inspects the working tree of a clone: it counts files and
// scans Python sources for machine-learning library references.
package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
)

// MatchOptions controls which files count as Python source.
type MatchOptions struct {
	// IgnoreExtensionCase accepts ".PY" and ".IPYNB" as source files.
	IgnoreExtensionCase bool

	// Excludes are path patterns relative to the clone root that are never
	// treated as source, using contract.ShouldIgnore semantics.
	Excludes []string
}

// IsSourceFile reports whether relPath names a Python source file.
// Extension matching is case-sensitive unless IgnoreExtensionCase is set.
func (o MatchOptions) IsSourceFile(relPath string) bool {
	name := relPath
	if o.IgnoreExtensionCase {
		name = strings.ToLower(name)
	}
	matched := false
	for _, ext := range schema.SourceExtensions {
		if strings.HasSuffix(name, ext) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return len(o.Excludes) == 0 || !contract.ShouldIgnore(filepath.ToSlash(relPath), o.Excludes)
}

// isRegularFile reports whether the walked entry d is a regular file. A
// symbolic link qualifies when its target is one; links to directories and
// dangling links do not, and directory links are never descended into.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
