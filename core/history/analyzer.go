// Package history derives contributor and activity metrics from the commit
// history of a local clone.
package history

import (
	"context"
	"time"

	"github.com/huangsam/mlforensics/core/algo"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"go.uber.org/zap"
)

// CommitLister lists the commits reachable from a branch of a local clone.
type CommitLister interface {
	ListCommits(ctx context.Context, repoPath string, branch string) ([]schema.CommitRef, error)
}

// CommitAuthorSource returns the raw author output for exactly one commit.
type CommitAuthorSource interface {
	GetCommitAuthorEmails(ctx context.Context, repoPath string, hash string) ([]byte, error)
}

// Source is the version-control capability the analyzer depends on.
// contract.GitClient satisfies it.
type Source interface {
	CommitLister
	CommitAuthorSource
}

// Analyzer computes RepositoryMetrics for a clone.
type Analyzer struct {
	source Source
}

// NewAnalyzer creates an Analyzer backed by source.
func NewAnalyzer(source Source) *Analyzer {
	return &Analyzer{source: source}
}

// Analyze lists the commits reachable from branch, queries the authors of
// each commit one at a time and aggregates the result.
//
// A missing clone, an unknown branch or a failing listing yields zero metrics
// rather than an error, so the candidate is rejected by the thresholds that
// follow. When explorationLimit is positive only the first explorationLimit
// commits are queried for authors; commit count and age always use the full
// history. Only context cancellation is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, clonePath, branch string, explorationLimit int) (schema.RepositoryMetrics, error) {
	records, err := a.Records(ctx, clonePath, branch, explorationLimit)
	if err != nil {
		return schema.RepositoryMetrics{}, err
	}
	return Aggregate(records), nil
}

// Records returns one CommitRecord per commit reachable from branch.
func (a *Analyzer) Records(ctx context.Context, clonePath, branch string, explorationLimit int) ([]schema.CommitRecord, error) {
	commits, err := a.source.ListCommits(ctx, clonePath, branch)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		contract.L().Warn("commit listing unavailable",
			zap.String("clone", clonePath), zap.String("branch", branch), zap.Error(err))
		return nil, nil
	}

	records := make([]schema.CommitRecord, 0, len(commits))
	for i, commit := range commits {
		record := schema.CommitRecord{Hash: commit.Hash}
		if !commit.When.IsZero() {
			record.Day = algo.NormalizeDay(commit.When)
		}
		if explorationLimit <= 0 || i < explorationLimit {
			raw, err := a.source.GetCommitAuthorEmails(ctx, clonePath, commit.Hash)
			switch {
			case ctx.Err() != nil:
				return nil, ctx.Err()
			case err != nil:
				contract.L().Debug("author query failed",
					zap.String("clone", clonePath), zap.String("commit", commit.Hash), zap.Error(err))
			default:
				record.Emails = ParseAuthorEmails(raw, commit.Hash)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// Aggregate folds commit records into RepositoryMetrics. Contributors is the
// number of distinct emails across all records. Age is the distance between
// the earliest and latest commit days, zero when fewer than two dates exist.
func Aggregate(records []schema.CommitRecord) schema.RepositoryMetrics {
	emails := make(map[string]struct{})
	var first, last time.Time
	for _, record := range records {
		for _, email := range record.Emails {
			emails[email] = struct{}{}
		}
		if record.Day.IsZero() {
			continue
		}
		if first.IsZero() || record.Day.Before(first) {
			first = record.Day
		}
		if last.IsZero() || record.Day.After(last) {
			last = record.Day
		}
	}

	ageDays := 0
	if !first.IsZero() {
		if days, err := algo.DaysBetween(first, last); err == nil {
			ageDays = days
		}
	}

	return schema.RepositoryMetrics{
		Contributors: len(emails),
		Commits:      len(records),
		AgeDays:      ageDays,
		AgeMonths:    algo.AgeInMonths(ageDays),
	}
}
