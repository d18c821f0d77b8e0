package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteInspection outputs the evaluation of a single clone, dispatching based on the output format configured.
func WriteInspection(eval schema.Evaluation, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectionJSON(w, eval)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectionCSV(w, eval)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectionTable(w, eval, cfg)
		}, "Wrote table")
	}
	return nil
}

// inspectionRows lists the measured values in pipeline order.
func inspectionRows(eval schema.Evaluation) [][]string {
	return [][]string{
		{"Files", strconv.Itoa(eval.Census.TotalFiles)},
		{"Python files", strconv.Itoa(eval.Census.SourceFiles)},
		{"Contributors", strconv.Itoa(eval.Metrics.Contributors)},
		{"Commits", strconv.Itoa(eval.Metrics.Commits)},
		{"Age (days)", strconv.Itoa(eval.Metrics.AgeDays)},
		{"Age (months)", schema.PyFloat(eval.Metrics.AgeMonths).String()},
		{"Matches", strconv.Itoa(eval.MatchCount)},
		{"Outcome", string(eval.Outcome.Reason)},
	}
}

func writeInspectionTable(w io.Writer, eval schema.Evaluation, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	if err := table.Bulk(inspectionRows(eval)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s (%s)\n", labelFor(eval.Outcome, cfg), eval.Candidate.ClonePath, eval.Duration.Round(time.Millisecond))
	return err
}

// metricCSVRow is one measured value in the CSV inspection report.
type metricCSVRow struct {
	Metric string `csv:"metric"`
	Value  string `csv:"value"`
}

func writeInspectionCSV(w io.Writer, eval schema.Evaluation) error {
	var rows []metricCSVRow
	for _, row := range inspectionRows(eval) {
		rows = append(rows, metricCSVRow{Metric: row[0], Value: row[1]})
	}
	rows = append(rows, metricCSVRow{Metric: "label", Value: contract.GetPlainLabel(eval.Outcome)})
	return writeCSVRows(w, rows)
}

func writeInspectionJSON(w io.Writer, eval schema.Evaluation) error {
	type JSONInspection struct {
		Label string `json:"label"`
		schema.Evaluation
	}
	return writeJSON(w, JSONInspection{Label: contract.GetPlainLabel(eval.Outcome), Evaluation: eval})
}
