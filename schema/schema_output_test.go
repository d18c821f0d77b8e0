package schema_test

import (
	"testing"
	"time"

	"github.com/huangsam/mlforensics/schema"
	"github.com/stretchr/testify/assert"
)

func TestPyFloatString(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"Zero", 0, "0.0"},
		{"Integral", 2, "2.0"},
		{"Fraction", 0.03333, "0.03333"},
		{"Rounded Age", 12.16667, "12.16667"},
		{"Negative", -1.5, "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.PyFloat(tt.value).String())
			out, err := schema.PyFloat(tt.value).MarshalCSV()
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestPyBoolString(t *testing.T) {
	assert.Equal(t, "True", schema.PyBool(true).String())
	assert.Equal(t, "False", schema.PyBool(false).String())
}

func TestTrackerRecordString(t *testing.T) {
	rec := schema.TrackerRecord{
		Index:        7,
		URL:          "https://github.com/acme/widgets",
		ClonePath:    "repos/acme@widgets",
		MatchCount:   14,
		Contributors: 5,
		Kept:         true,
	}
	assert.Equal(t, "7,https://github.com/acme/widgets,repos/acme@widgets,14,5,True", rec.String())

	rec.Kept = false
	assert.Equal(t, "7,https://github.com/acme/widgets,repos/acme@widgets,14,5,False", rec.String())
}

func TestNewOutcome(t *testing.T) {
	for _, reason := range schema.AllReasons {
		out := schema.NewOutcome(reason)
		assert.Equal(t, reason, out.Reason)
		assert.Equal(t, reason == schema.Kept, out.Kept, "reason %s", reason)
	}
}

func TestEvaluationConversions(t *testing.T) {
	e := schema.Evaluation{
		Candidate:  schema.Candidate{Index: 3, URL: "https://github.com/a/b", ClonePath: "repos/a@b"},
		Census:     schema.FileCensus{TotalFiles: 100, SourceFiles: 40},
		Metrics:    schema.RepositoryMetrics{Contributors: 4, Commits: 30, AgeDays: 90, AgeMonths: 3},
		MatchCount: 9,
		Outcome:    schema.NewOutcome(schema.Kept),
		Duration:   1500 * time.Millisecond,
	}

	tr := schema.NewTrackerRecord(e)
	assert.Equal(t, "3,https://github.com/a/b,repos/a@b,9,4,True", tr.String())

	row := schema.NewBreakdownRow(e)
	assert.Equal(t, "https://github.com/a/b", row.Repo)
	assert.Equal(t, 100, row.Files)
	assert.Equal(t, 40, row.PythonFiles)
	assert.Equal(t, "3.0", row.AgeMonths.String())
	assert.Equal(t, schema.PyBool(true), row.Flag)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := schema.NewEvaluationRecord("run-1", e, at)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, int32(3), rec.RepoIndex)
	assert.Equal(t, "KEPT", rec.Reason)
	assert.Equal(t, int64(1500), rec.DurationMs)
	assert.Equal(t, at, rec.EvaluatedAt)
}

func TestRunSummaryDurationMinutes(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := schema.RunSummary{StartTime: start, EndTime: start.Add(90 * time.Second)}
	assert.InDelta(t, 1.5, s.DurationMinutes(), 1e-9)
}
