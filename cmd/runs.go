package cmd

import (
	"fmt"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/internal/iocache"
	"github.com/huangsam/mlforensics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need run access without full shared setup.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("run")
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no history caching for run commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("run")
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr

	return nil
}

// runsCmd focused on run tracking data management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by mine and inspect.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage mining run tracking and exports",
	Long: `Manage the history of mining runs.

When enabled with --run-backend, every mine run is recorded with:
- Run metadata (ULID, timestamps, configuration, duration)
- One evaluation per candidate (census, metrics, match count, outcome)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  mlforensics runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  mlforensics runs export --run-backend sqlite --output-file mining`,
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored runs and evaluations",
	Long: `Delete all stored mining runs and their per-candidate evaluations.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  mlforensics runs export --run-backend sqlite --output-file backup
  mlforensics runs clear --run-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunBackend, dbFilePath(cfg.RunDBConnect, contract.GetRunDBFilePath()), cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about mining run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total evaluations and kept repositories across all runs
- Database table sizes

Examples:
  # Check run tracking status
  mlforensics runs status --run-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format.

Writes two files next to --output-file:
- <output-file>.runs.parquet - metadata about each mining run
- <output-file>.evaluations.parquet - one row per evaluated candidate

Requires: --output-file parameter

Examples:
  # Export all data
  mlforensics runs export --run-backend sqlite --output-file mining

  # Use with DuckDB for analysis
  duckdb -c "SELECT reason, count(*) FROM read_parquet('mining.evaluations.parquet') GROUP BY 1"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  mlforensics runs migrate --run-backend sqlite

  # Migrate to specific version
  mlforensics runs migrate --run-backend sqlite --target-version 2

  # Rollback all migrations
  mlforensics runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
