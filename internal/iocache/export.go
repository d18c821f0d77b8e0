package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/internal/parquet"
)

// ExecuteRunsExport writes every stored run and evaluation to
// <outputFile>.runs.parquet and <outputFile>.evaluations.parquet.
func ExecuteRunsExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total evaluations: %d\n", status.TotalEvaluations)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	evaluations, err := store.GetAllEvaluations()
	if err != nil {
		return fmt.Errorf("failed to retrieve evaluations: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	evaluationsFile := outputFile + ".evaluations.parquet"
	parquetEvaluations := parquet.ConvertEvaluationRecords(evaluations)
	if err := parquet.WriteEvaluationsParquet(parquetEvaluations, evaluationsFile); err != nil {
		return fmt.Errorf("failed to write evaluations: %w", err)
	}
	fmt.Printf("Exported %d evaluations to: %s\n", len(parquetEvaluations), evaluationsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Apache Spark")
	return nil
}
