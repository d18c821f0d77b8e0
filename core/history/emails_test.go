package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAuthorEmails(t *testing.T) {
	const hash = "9fceb02d0ae598e95dc970b74767f19372d61af8"

	tests := []struct {
		name     string
		raw      string
		hash     string
		expected []string
	}{
		{"single email", "alice@example.com\n", hash, []string{"alice@example.com"}},
		{"quoted", "'alice@example.com'\n", hash, []string{"alice@example.com"}},
		{"hash and placeholder punctuation", "alice@example.com" + hash + "^!\n", hash, []string{"alice@example.com"}},
		{"comma separated", "bob@example.org,alice@example.org\n", hash, []string{"alice@example.org", "bob@example.org"}},
		{"duplicates collapse", "bob@example.org\nbob@example.org\n", hash, []string{"bob@example.org"}},
		{"line without at sign", "fatal: bad revision\n", hash, nil},
		{"short token dropped", "a@b\n", hash, nil},
		{"four characters kept", "a@bc\n", hash, []string{"a@bc"}},
		{"empty output", "", hash, nil},
		{"empty hash", "carol@example.net\n", "", []string{"carol@example.net"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAuthorEmails([]byte(tt.raw), tt.hash)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}
