package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() schema.RunSummary {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	kept := schema.Evaluation{
		Candidate:  schema.Candidate{Index: 3, URL: "https://github.com/a/b", ClonePath: "repos/a@b"},
		Census:     schema.FileCensus{TotalFiles: 50, SourceFiles: 20},
		Metrics:    schema.RepositoryMetrics{Contributors: 4, Commits: 80, AgeDays: 60, AgeMonths: 2},
		MatchCount: 17,
		Outcome:    schema.NewOutcome(schema.Kept),
	}
	return schema.RunSummary{
		RunID:     "01HXAMPLE",
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Processed: 3,
		Kept:      1,
		ByReason:  map[schema.RejectReason]int{schema.Kept: 1, schema.LimitedDevs: 2},
		KeptRepos: []schema.Evaluation{kept},
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 160, CacheBackend: schema.NoneBackend}
	require.NoError(t, writeSummaryTable(&buf, sampleSummary(), cfg))

	out := buf.String()
	assert.Contains(t, out, "LIMITED_DEVS")
	assert.Contains(t, out, "https://github.com/a/b")
	assert.Contains(t, out, "Kept 1 of 3 repos (run 01HXAMPLE)")
	assert.Contains(t, out, "Mining completed in 1.5 minutes")
	assert.Less(t, strings.Index(out, "LIMITED_DEVS"), strings.Index(out, "KEPT"), "reasons follow pipeline order")
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummaryCSV(&buf, sampleSummary()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2) // header + 1 row
	assert.Equal(t, "rank,index,url,clone_path,devs,commits,files,python_files,age_months,matches,run_id", lines[0])
	assert.Equal(t, "1,3,https://github.com/a/b,repos/a@b,4,80,50,20,2.0,17,01HXAMPLE", lines[1])
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummaryJSON(&buf, sampleSummary()))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "01HXAMPLE", result["run_id"])
	assert.Equal(t, 1.5, result["duration_minutes"])
	assert.Equal(t, float64(2), result["by_reason"].(map[string]any)["LIMITED_DEVS"])
	assert.Len(t, result["kept_repos"], 1)
}

func TestWriteInspection(t *testing.T) {
	eval := sampleSummary().KeptRepos[0]
	cfg := &contract.Config{UseColors: false}

	var table bytes.Buffer
	require.NoError(t, writeInspectionTable(&table, eval, cfg))
	assert.Contains(t, table.String(), "Kept: repos/a@b")
	assert.Contains(t, table.String(), "KEPT")

	var csvOut bytes.Buffer
	require.NoError(t, writeInspectionCSV(&csvOut, eval))
	assert.Contains(t, csvOut.String(), "metric,value\n")
	assert.Contains(t, csvOut.String(), "Matches,17\n")
	assert.Contains(t, csvOut.String(), "label,Kept\n")

	var jsonOut bytes.Buffer
	require.NoError(t, writeInspectionJSON(&jsonOut, eval))
	var result map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &result))
	assert.Equal(t, "Kept", result["label"])
	assert.Equal(t, float64(17), result["match_count"])
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{"narrow clamps to minimum", 60, 20},
		{"medium", 120, 50},
		{"wide clamps to maximum", 400, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getMaxTablePathWidth(&contract.Config{Width: tt.width}))
		})
	}
}

func TestWriteCSVRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVRows(&buf, []metricCSVRow{{Metric: "1", Value: "x,y"}}))
	assert.Equal(t, "metric,value\n1,\"x,y\"\n", buf.String())

	buf.Reset()
	require.NoError(t, writeCSVRows(&buf, []keptCSVRow{}))
	assert.Equal(t, "rank,index,url,clone_path,devs,commits,files,python_files,age_months,matches,run_id\n", buf.String())
}
