// Package cmd defines the command-line interface for mlforensics.
package cmd

import (
	"strings"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("branch", contract.DefaultBranch, "Branch whose history is analyzed")
	rootCmd.PersistentFlags().Int("exploration-limit", 0, "Maximum commits queried for author emails (0 = all)")
	rootCmd.PersistentFlags().Int("dev-threshold", contract.DefaultDevThreshold, "Minimum distinct contributors a repository needs")
	rootCmd.PersistentFlags().Int("commit-threshold", contract.DefaultCommitThreshold, "Minimum commits a repository needs")
	rootCmd.PersistentFlags().Float64("source-threshold", contract.DefaultSourceThreshold, "Minimum share of Python source files (0-1)")
	rootCmd.PersistentFlags().String("keywords", strings.Join(schema.DefaultKeywords, ","), "Comma-separated list of library keywords to scan for")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns never treated as source")
	rootCmd.PersistentFlags().Bool("ignore-extension-case", false, "Accept upper-case .PY and .IPYNB extensions")
	rootCmd.PersistentFlags().String("git-timeout", contract.DefaultGitTimeout.String(), "Timeout for each git history command")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Summary format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write the summary to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-file", contract.DefaultLogFile, "Path of the JSON log file (empty = stderr only)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "History cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of mineCmd to Viper
	mineCmd.Flags().StringP("input", "i", "", "CSV file listing candidate repositories")
	mineCmd.Flags().String("url-column", contract.DefaultURLColumn, "Column of the input CSV holding repository URLs")
	mineCmd.Flags().String("clone-root", contract.DefaultCloneRoot, "Directory that receives the clones")
	mineCmd.Flags().IntP("limit", "l", 0, "Maximum number of candidates to evaluate (0 = all)")
	mineCmd.Flags().Bool("keep-clones", false, "Keep rejected clones on disk")
	mineCmd.Flags().Int("batch-size", contract.DefaultBatchSize, "Number of candidates per batch")
	mineCmd.Flags().Int("checkpoint-interval", contract.DefaultCheckpointInterval, "Rewrite the artifacts after this many evaluations")
	mineCmd.Flags().String("tracker-file", contract.DefaultTrackerFile, "Path of the completed-repos tracker artifact")
	mineCmd.Flags().String("breakdown-file", contract.DefaultBreakdownFile, "Path of the per-repository breakdown artifact")
	mineCmd.Flags().String("clone-timeout", contract.DefaultCloneTimeout.String(), "Timeout for each clone")
	if err := viper.BindPFlags(mineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding mine flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target schema version (-1 = latest, 0 = rollback all)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
