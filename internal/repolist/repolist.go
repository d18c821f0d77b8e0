// Package repolist loads the candidate repository URLs for a mining run.
package repolist

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Load reads the CSV file at path and returns the values of column in file
// order. Blank values are skipped.
func Load(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input list: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input list %s: %w", path, err)
	}
	if len(rows) > 0 {
		if _, ok := rows[0][column]; !ok {
			return nil, fmt.Errorf("input list %s has no %q column", path, column)
		}
	}

	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		if url := strings.TrimSpace(row[column]); url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// Dedupe drops repeated URLs, keeping the first occurrence of each.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

// Limit truncates urls to at most n entries. Zero or less keeps all.
func Limit(urls []string, n int) []string {
	if n > 0 && len(urls) > n {
		return urls[:n]
	}
	return urls
}
