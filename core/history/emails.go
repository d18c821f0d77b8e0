package history

import (
	"maps"
	"slices"
	"strings"
	"unicode"
)

// minEmailLength is the shortest token accepted as an author email.
const minEmailLength = 4

// logPlaceholderNoise strips the characters the per-commit log query leaves
// around an address: the revision range suffix and shell quoting.
var logPlaceholderNoise = strings.NewReplacer("^", "", "!", "", "'", "", `"`, "")

// ParseAuthorEmails extracts the author addresses from the raw output of a
// per-commit log query. Lines without "@" are discarded, the commit hash and
// placeholder punctuation are removed, and the remainder is split on commas
// and whitespace. Tokens shorter than four characters are dropped. The result
// is deduplicated and sorted; malformed output yields an empty result.
func ParseAuthorEmails(raw []byte, hash string) []string {
	seen := make(map[string]struct{})
	for line := range strings.SplitSeq(string(raw), "\n") {
		if !strings.Contains(line, "@") {
			continue
		}
		if hash != "" {
			line = strings.ReplaceAll(line, hash, "")
		}
		line = logPlaceholderNoise.Replace(line)
		for _, token := range strings.FieldsFunc(line, isEmailSeparator) {
			if len(token) < minEmailLength {
				continue
			}
			seen[token] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

func isEmailSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}
