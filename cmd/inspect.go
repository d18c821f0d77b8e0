package cmd

import (
	"github.com/huangsam/mlforensics/core"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/spf13/cobra"
)

// inspectCmd evaluates a clone that is already on disk.
var inspectCmd = &cobra.Command{
	Use:   "inspect [repo-path]",
	Short: "Show what the filters decide for an existing clone.",
	Long: `Run the census, history and pattern checks against a local clone without
cloning or deleting anything.

Prints the file counts, contributor and commit totals, repository age, keyword
match count and the outcome the mine command would record.

Examples:
  # Inspect the current directory
  mlforensics inspect

  # Inspect a clone on another branch with JSON output
  mlforensics inspect repos/owner@project --branch main --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signalContext()
		defer stop()
		if err := core.ExecuteInspect(ctx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot inspect repository", err)
		}
	},
}
