package schema

import "time"

// RunRecord represents a row from the mlforensics_runs table.
type RunRecord struct {
	RunID           string
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int64
	TotalCandidates int32
	TotalKept       int32
	ConfigParams    *string
}

// EvaluationRecord represents a row from the mlforensics_evaluations table.
type EvaluationRecord struct {
	RunID        string
	RepoIndex    int32
	RepoURL      string
	ClonePath    string
	EvaluatedAt  time.Time
	TotalFiles   int32
	SourceFiles  int32
	Contributors int32
	Commits      int32
	AgeDays      int32
	AgeMonths    float64
	MatchCount   int32
	Kept         bool
	Reason       string
	DurationMs   int64
}

// NewEvaluationRecord flattens an evaluation for storage.
func NewEvaluationRecord(runID string, e Evaluation, at time.Time) EvaluationRecord {
	return EvaluationRecord{
		RunID:        runID,
		RepoIndex:    int32(e.Candidate.Index),
		RepoURL:      e.Candidate.URL,
		ClonePath:    e.Candidate.ClonePath,
		EvaluatedAt:  at,
		TotalFiles:   int32(e.Census.TotalFiles),
		SourceFiles:  int32(e.Census.SourceFiles),
		Contributors: int32(e.Metrics.Contributors),
		Commits:      int32(e.Metrics.Commits),
		AgeDays:      int32(e.Metrics.AgeDays),
		AgeMonths:    e.Metrics.AgeMonths,
		MatchCount:   int32(e.MatchCount),
		Kept:         e.Outcome.Kept,
		Reason:       string(e.Outcome.Reason),
		DurationMs:   e.Duration.Milliseconds(),
	}
}
