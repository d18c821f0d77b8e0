package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/mlforensics/internal/contract"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// ErrScanFailed marks a scan aborted because a source file could not be read.
var ErrScanFailed = errors.New("pattern scan failed")

// Scanner counts keyword references in the Python sources of a clone.
type Scanner struct {
	Keywords []string
	Options  MatchOptions
}

// NewScanner creates a Scanner for the given keywords.
func NewScanner(keywords []string, opts MatchOptions) *Scanner {
	return &Scanner{Keywords: keywords, Options: opts}
}

// Scan walks root and sums CountMatches over every source file. Source names
// that resolve to anything but a regular file are skipped. A missing or empty
// root yields zero matches.
func (s *Scanner) Scan(ctx context.Context, root string) (int, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				contract.L().Debug("skipping unreadable directory", zap.String("path", path), zap.Error(err))
				return filepath.SkipDir
			}
			return fmt.Errorf("%w: %w", ErrScanFailed, err)
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if !s.Options.IsSourceFile(rel) || !isRegularFile(path, d) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("%w: %w", ErrScanFailed, readErr)
		}
		total += CountMatches(data, s.Keywords)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// lineBreaks folds CRLF and lone CR line endings into LF.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// CountMatches decodes content as ISO-8859-1, lower-cases each line and adds
// one for every keyword that occurs in the line. Lines end at LF, CRLF or a
// lone CR. Matching is plain substring
// containment, so "rl" also matches "url" and a line naming two keywords
// counts twice. Keywords are used as given, which means keywords containing
// upper-case letters can never match.
func CountMatches(content []byte, keywords []string) int {
	// ISO-8859-1 maps every byte to a rune, so decoding cannot fail.
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		decoded = content
	}

	count := 0
	for line := range strings.SplitSeq(lineBreaks.Replace(string(decoded)), "\n") {
		lowered := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
	}
	return count
}
