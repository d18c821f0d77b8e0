package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/mlforensics/schema"
)

// Outcome label constants.
const (
	KeptValue     = "Kept"     // Kept value
	RejectedValue = "Rejected" // Rejected value
)

// Color variables for console output.
var (
	KeptColor     = color.New(color.FgGreen, color.Bold) // KeptColor marks an accepted repository.
	RejectedColor = color.New(color.FgYellow)            // RejectedColor marks a discarded repository.
	FailedColor   = color.New(color.FgRed, color.Bold)   // FailedColor marks a scan failure.
)

// GetPlainLabel returns a plain text label for an outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(outcome schema.Outcome) string {
	if outcome.Kept {
		return KeptValue
	}
	return RejectedValue
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(outcome schema.Outcome) string {
	text := GetPlainLabel(outcome)
	switch {
	case outcome.Kept:
		return KeptColor.Sprint(text)
	case outcome.Reason == schema.ScanFailed:
		return FailedColor.Sprint(text)
	default:
		return RejectedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "node_modules/", "*_pb2.py".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *_pb2.py)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// GetCacheDBFilePath returns the path to the SQLite DB file for history caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".mlforensics_cache.db"
	}
	return filepath.Join(homeDir, ".mlforensics_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".mlforensics_runs.db"
	}
	return filepath.Join(homeDir, ".mlforensics_runs.db")
}

// TruncatePath truncates a path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
