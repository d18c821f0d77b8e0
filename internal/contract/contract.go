// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/mlforensics/schema"
)

// GitClient defines the version-control operations needed to mine a repository.
// This allows the pipeline to be tested without needing a real git executable or network.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command inside repoPath and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Acquisition ---

	// Clone copies the remote repository at url into dir.
	Clone(ctx context.Context, url string, dir string) error

	// --- History ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// ListCommits returns every commit reachable from branch, newest first.
	ListCommits(ctx context.Context, repoPath string, branch string) ([]schema.CommitRef, error)

	// GetCommitAuthorEmails returns the raw author email output for exactly one commit.
	GetCommitAuthorEmails(ctx context.Context, repoPath string, hash string) ([]byte, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetHistoryStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking mining runs and their evaluations.
type RunStore interface {
	// BeginRun records the start of a mining run
	BeginRun(runID string, startTime time.Time, configParams map[string]any) error

	// RecordEvaluation stores the outcome for one candidate
	RecordEvaluation(record schema.EvaluationRecord) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalCandidates, totalKept int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every stored run ordered by start time
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllEvaluations returns every stored evaluation ordered by run and index
	GetAllEvaluations() ([]schema.EvaluationRecord, error)

	// Close closes the underlying connection
	Close() error
}
