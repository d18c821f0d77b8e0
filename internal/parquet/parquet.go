// Package parquet exports stored mining runs and repository evaluations
// to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/mlforensics/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one mining run.
// This struct maps to the mlforensics_runs database table.
type Run struct {
	// RunID is the ULID of the run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable while a run is in progress or was interrupted)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the wall-clock duration of the run (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	TotalCandidates int32 `parquet:"total_candidates,snappy"`
	TotalKept       int32 `parquet:"total_kept,snappy"`

	// ConfigParams contains the JSON-encoded filter settings (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Evaluation is the filter outcome for one candidate repository in a run.
// This struct maps to the mlforensics_evaluations database table.
type Evaluation struct {
	RunID        string    `parquet:"run_id,snappy"`
	RepoIndex    int32     `parquet:"repo_index,snappy"`
	RepoURL      string    `parquet:"repo_url,snappy"`
	ClonePath    string    `parquet:"clone_path,snappy"`
	EvaluatedAt  time.Time `parquet:"evaluated_at,snappy"`
	TotalFiles   int32     `parquet:"total_files,snappy"`
	SourceFiles  int32     `parquet:"source_files,snappy"`
	Contributors int32     `parquet:"contributors,snappy"`
	Commits      int32     `parquet:"commits,snappy"`
	AgeDays      int32     `parquet:"age_days,snappy"`
	AgeMonths    float64   `parquet:"age_months,snappy"`
	MatchCount   int32     `parquet:"match_count,snappy"`
	Kept         bool      `parquet:"kept,snappy"`

	// Reason is KEPT or the name of the filter that rejected the repository
	Reason     string `parquet:"reason,snappy,dict"`
	DurationMs int64  `parquet:"duration_ms,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file at outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteEvaluationsParquet writes evaluations to a Parquet file at outputPath.
func WriteEvaluationsParquet(data []Evaluation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using the schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row groups and writes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:           record.RunID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalCandidates: record.TotalCandidates,
			TotalKept:       record.TotalKept,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertEvaluationRecords converts stored evaluations for Parquet export.
func ConvertEvaluationRecords(records []schema.EvaluationRecord) []Evaluation {
	result := make([]Evaluation, len(records))
	for i, record := range records {
		result[i] = Evaluation{
			RunID:        record.RunID,
			RepoIndex:    record.RepoIndex,
			RepoURL:      record.RepoURL,
			ClonePath:    record.ClonePath,
			EvaluatedAt:  record.EvaluatedAt,
			TotalFiles:   record.TotalFiles,
			SourceFiles:  record.SourceFiles,
			Contributors: record.Contributors,
			Commits:      record.Commits,
			AgeDays:      record.AgeDays,
			AgeMonths:    record.AgeMonths,
			MatchCount:   record.MatchCount,
			Kept:         record.Kept,
			Reason:       record.Reason,
			DurationMs:   record.DurationMs,
		}
	}
	return result
}
