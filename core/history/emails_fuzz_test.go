package history

import (
	"slices"
	"strings"
	"testing"
)

// FuzzParseAuthorEmails fuzzes ParseAuthorEmails with raw log output and commit hashes.
func FuzzParseAuthorEmails(f *testing.F) {
	f.Add("dev@example.com\n", "abc123")
	f.Add("'a@b.co'^!\n", "")
	f.Add("x@y, z@w.org\tq@r.io\n", "deadbeef")
	f.Add("no email here\n", "abc")
	f.Add("", "")

	f.Fuzz(func(t *testing.T, raw string, hash string) {
		emails := ParseAuthorEmails([]byte(raw), hash)
		if !slices.IsSorted(emails) {
			t.Fatalf("result not sorted: %v", emails)
		}
		for i, e := range emails {
			if len(e) < minEmailLength {
				t.Fatalf("token %q shorter than %d", e, minEmailLength)
			}
			if strings.ContainsAny(e, ", \n\t") {
				t.Fatalf("token %q contains a separator", e)
			}
			if i > 0 && emails[i-1] == e {
				t.Fatalf("duplicate token %q", e)
			}
		}
	})
}
