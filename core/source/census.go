package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"go.uber.org/zap"
)

// Census counts every regular file under root and how many of those are
// Python source files. A symbolic link counts when it points at a regular
// file; directory links are never followed. A missing or empty root yields a
// zero census without error.
func Census(root string, opts MatchOptions) (schema.FileCensus, error) {
	var census schema.FileCensus

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return census, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			contract.L().Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isRegularFile(path, d) {
			return nil
		}
		census.TotalFiles++
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if opts.IsSourceFile(rel) {
			census.SourceFiles++
		}
		return nil
	})
	if err != nil {
		return schema.FileCensus{}, err
	}
	return census, nil
}

// Census takes the census of root using these options.
func (o MatchOptions) Census(root string) (schema.FileCensus, error) {
	return Census(root, o)
}
