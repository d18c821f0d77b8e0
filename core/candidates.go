package core

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/huangsam/mlforensics/schema"
)

// ClonePathFor maps a repository URL to its clone directory under root:
// the last two path segments of the URL joined by "@". Characters that are
// unsafe in directory names are replaced by "_".
func ClonePathFor(url, root string) string {
	segments := strings.Split(strings.TrimRight(strings.TrimSpace(url), "/"), "/")
	name := segments[len(segments)-1]
	if len(segments) > 1 {
		name = segments[len(segments)-2] + "@" + name
	}
	name = strings.Map(func(r rune) rune {
		if r == ':' || r == '\\' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = strings.Repeat("_", max(len(name), 1))
	}
	return filepath.Join(root, name)
}

// BuildCandidates numbers urls from 1 in input order and assigns clone paths.
func BuildCandidates(urls []string, root string) []schema.Candidate {
	candidates := make([]schema.Candidate, 0, len(urls))
	for i, url := range urls {
		candidates = append(candidates, schema.Candidate{
			Index:     i + 1,
			URL:       url,
			ClonePath: ClonePathFor(url, root),
		})
	}
	return candidates
}
