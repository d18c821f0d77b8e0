package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/mlforensics/core/algo"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunSummary outputs the end-of-run report, dispatching based on the output format configured.
func WriteRunSummary(summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryJSON(w, summary)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeSummaryTable prints the outcome counts followed by the kept repositories.
func writeSummaryTable(w io.Writer, summary schema.RunSummary, cfg *contract.Config) error {
	// 1. Outcome counts in pipeline order
	reasons := tablewriter.NewWriter(w)
	reasons.Header([]string{"Outcome", "Repos"})
	reasons.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var counts [][]string
	for _, reason := range schema.AllReasons {
		if n := summary.ByReason[reason]; n > 0 {
			counts = append(counts, []string{string(reason), strconv.Itoa(n)})
		}
	}
	if err := reasons.Bulk(counts); err != nil {
		return err
	}
	if err := reasons.Render(); err != nil {
		return err
	}

	// 2. Kept repositories
	if len(summary.KeptRepos) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Repo", "Devs", "Commits", "Files", "Python", "Age (mo)", "Matches"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for i, e := range summary.KeptRepos {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				contract.TruncatePath(e.Candidate.URL, getMaxTablePathWidth(cfg)),
				strconv.Itoa(e.Metrics.Contributors),
				strconv.Itoa(e.Metrics.Commits),
				strconv.Itoa(e.Census.TotalFiles),
				strconv.Itoa(e.Census.SourceFiles),
				schema.PyFloat(e.Metrics.AgeMonths).String(),
				strconv.Itoa(e.MatchCount),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Kept %d of %d repos (run %s)\n", summary.Kept, summary.Processed, summary.RunID); err != nil {
		return err
	}
	minutes := algo.RoundTo(summary.DurationMinutes(), algo.AgePrecision)
	if _, err := fmt.Fprintf(w, "Mining completed in %s minutes. Cache backend: %s\n", schema.PyFloat(minutes), cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// keptCSVRow is one kept repository in the CSV summary.
type keptCSVRow struct {
	Rank        int            `csv:"rank"`
	Index       int            `csv:"index"`
	URL         string         `csv:"url"`
	ClonePath   string         `csv:"clone_path"`
	Devs        int            `csv:"devs"`
	Commits     int            `csv:"commits"`
	Files       int            `csv:"files"`
	PythonFiles int            `csv:"python_files"`
	AgeMonths   schema.PyFloat `csv:"age_months"`
	Matches     int            `csv:"matches"`
	RunID       string         `csv:"run_id"`
}

// writeSummaryCSV writes one row per kept repository.
func writeSummaryCSV(w io.Writer, summary schema.RunSummary) error {
	rows := make([]keptCSVRow, 0, len(summary.KeptRepos))
	for i, e := range summary.KeptRepos {
		rows = append(rows, keptCSVRow{
			Rank:        i + 1,
			Index:       e.Candidate.Index,
			URL:         e.Candidate.URL,
			ClonePath:   e.Candidate.ClonePath,
			Devs:        e.Metrics.Contributors,
			Commits:     e.Metrics.Commits,
			Files:       e.Census.TotalFiles,
			PythonFiles: e.Census.SourceFiles,
			AgeMonths:   schema.PyFloat(e.Metrics.AgeMonths),
			Matches:     e.MatchCount,
			RunID:       summary.RunID,
		})
	}
	return writeCSVRows(w, rows)
}

// writeSummaryJSON writes the whole summary with the duration in minutes.
func writeSummaryJSON(w io.Writer, summary schema.RunSummary) error {
	type JSONRunSummary struct {
		schema.RunSummary
		DurationMinutes float64 `json:"duration_minutes"`
	}
	return writeJSON(w, JSONRunSummary{
		RunSummary:      summary,
		DurationMinutes: algo.RoundTo(summary.DurationMinutes(), algo.AgePrecision),
	})
}
