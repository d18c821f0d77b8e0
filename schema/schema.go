// Package schema has models and constants for all parts of mlforensics.
package schema

import "time"

// Candidate is one repository to be evaluated.
type Candidate struct {
	Index     int    `json:"index"`      // Position in the deduplicated input list
	URL       string `json:"url"`        // Remote clone URL
	ClonePath string `json:"clone_path"` // Local directory the repository is cloned into
}

// FileCensus counts the files of a clone. SourceFiles never exceeds TotalFiles.
type FileCensus struct {
	TotalFiles  int `json:"total_files"`
	SourceFiles int `json:"source_files"`
}

// CommitRef identifies a commit reachable from the analyzed branch.
type CommitRef struct {
	Hash string
	When time.Time
}

// CommitRecord is one commit with the authors attributed to it.
type CommitRecord struct {
	Hash   string
	Emails []string
	Day    time.Time // Calendar date of the commit at 12:30 UTC
}

// RepositoryMetrics summarizes the commit history of a clone.
type RepositoryMetrics struct {
	Contributors int     `json:"contributors"`
	Commits      int     `json:"commits"`
	AgeDays      int     `json:"age_days"`
	AgeMonths    float64 `json:"age_months"`
}

// Outcome is the single decision reached for a candidate.
type Outcome struct {
	Kept   bool         `json:"kept"`
	Reason RejectReason `json:"reason"`
}

// Evaluation is everything learned about one candidate. Metrics for stages that
// were never reached keep their zero values.
type Evaluation struct {
	Candidate  Candidate         `json:"candidate"`
	Census     FileCensus        `json:"census"`
	Metrics    RepositoryMetrics `json:"metrics"`
	MatchCount int               `json:"match_count"`
	Outcome    Outcome           `json:"outcome"`
	Duration   time.Duration     `json:"duration"`
}

// NewOutcome builds the outcome for the given reason.
func NewOutcome(reason RejectReason) Outcome {
	return Outcome{Kept: reason == Kept, Reason: reason}
}
