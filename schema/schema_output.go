package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PyBool renders as "True" or "False" in CSV artifacts.
type PyBool bool

// MarshalCSV implements gocsv.TypeMarshaller.
func (b PyBool) MarshalCSV() (string, error) {
	return b.String(), nil
}

// String returns the capitalized boolean literal.
func (b PyBool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// PyFloat renders in shortest form, always keeping a decimal point ("2.0", "0.03333").
type PyFloat float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (f PyFloat) MarshalCSV() (string, error) {
	return f.String(), nil
}

// String returns the shortest decimal form with at least one fractional digit.
func (f PyFloat) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// TrackerRecord is one line of the progress tracker artifact.
type TrackerRecord struct {
	Index        int
	URL          string
	ClonePath    string
	MatchCount   int
	Contributors int
	Kept         bool
}

// String renders the record as a header-less comma-separated line.
func (r TrackerRecord) String() string {
	return fmt.Sprintf("%d,%s,%s,%d,%d,%s", r.Index, r.URL, r.ClonePath, r.MatchCount, r.Contributors, PyBool(r.Kept))
}

// BreakdownRow is one row of the metric breakdown artifact.
type BreakdownRow struct {
	Index       int     `csv:"INDEX" json:"index"`
	Repo        string  `csv:"REPO" json:"repo"`
	Devs        int     `csv:"DEVS" json:"devs"`
	Files       int     `csv:"FILES" json:"files"`
	PythonFiles int     `csv:"PYTHON_FILES" json:"python_files"`
	Commits     int     `csv:"COMMITS" json:"commits"`
	AgeMonths   PyFloat `csv:"AGE_MONTHS" json:"age_months"`
	Flag        PyBool  `csv:"FLAG" json:"flag"`
}

// NewTrackerRecord derives the tracker line for an evaluation.
func NewTrackerRecord(e Evaluation) TrackerRecord {
	return TrackerRecord{
		Index:        e.Candidate.Index,
		URL:          e.Candidate.URL,
		ClonePath:    e.Candidate.ClonePath,
		MatchCount:   e.MatchCount,
		Contributors: e.Metrics.Contributors,
		Kept:         e.Outcome.Kept,
	}
}

// NewBreakdownRow derives the breakdown row for an evaluation.
func NewBreakdownRow(e Evaluation) BreakdownRow {
	return BreakdownRow{
		Index:       e.Candidate.Index,
		Repo:        e.Candidate.URL,
		Devs:        e.Metrics.Contributors,
		Files:       e.Census.TotalFiles,
		PythonFiles: e.Census.SourceFiles,
		Commits:     e.Metrics.Commits,
		AgeMonths:   PyFloat(e.Metrics.AgeMonths),
		Flag:        PyBool(e.Outcome.Kept),
	}
}

// RunSummary is the end-of-run report.
type RunSummary struct {
	RunID     string               `json:"run_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Processed int                  `json:"processed"`
	Kept      int                  `json:"kept"`
	ByReason  map[RejectReason]int `json:"by_reason"`
	KeptRepos []Evaluation         `json:"kept_repos"`
}

// DurationMinutes returns the run duration in minutes.
func (s RunSummary) DurationMinutes() float64 {
	return s.EndTime.Sub(s.StartTime).Minutes()
}
