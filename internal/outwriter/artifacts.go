package outwriter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/huangsam/mlforensics/schema"
)

// ArtifactWriter rewrites the tracker and breakdown files of a mining run.
// Each write replaces the previous file content with the full table.
type ArtifactWriter struct {
	TrackerFile   string
	BreakdownFile string
}

// NewArtifactWriter creates an ArtifactWriter for the two artifact paths.
func NewArtifactWriter(trackerFile, breakdownFile string) *ArtifactWriter {
	return &ArtifactWriter{TrackerFile: trackerFile, BreakdownFile: breakdownFile}
}

// WriteTracker writes one header-less line per record.
func (a *ArtifactWriter) WriteTracker(records []schema.TrackerRecord) error {
	return replaceFile(a.TrackerFile, func(f *os.File) error {
		w := bufio.NewWriter(f)
		for _, r := range records {
			if _, err := w.WriteString(r.String() + "\n"); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

// WriteBreakdown writes the breakdown table with its header row.
func (a *ArtifactWriter) WriteBreakdown(rows []schema.BreakdownRow) error {
	return replaceFile(a.BreakdownFile, func(f *os.File) error {
		return gocsv.Marshal(&rows, f)
	})
}

// replaceFile writes to a temporary sibling of path and renames it into
// place, so an interrupted flush leaves the previous checkpoint intact.
func replaceFile(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
