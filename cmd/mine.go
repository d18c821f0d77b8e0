package cmd

import (
	"errors"

	"github.com/huangsam/mlforensics/core"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/spf13/cobra"
)

// mineSetup runs the shared setup and requires an input list.
func mineSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(cmd, args); err != nil {
		return err
	}
	if cfg.InputFile == "" {
		return errors.New("mine requires an input list (--input)")
	}
	return nil
}

// mineCmd runs the full clone-filter-scan pipeline over an input list.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Clone candidate repositories and keep the machine-learning ones.",
	Long: `Evaluate every repository listed in the input CSV, in order.

Each candidate is cloned and passed through the filters:
- NO_FILES: the clone is empty or could not be made
- INSUFFICIENT_SOURCE_RATIO: too few .py/.ipynb files
- LIMITED_DEVS: too few distinct contributor emails
- LIMITED_COMMITS: too few commits on the branch
- NO_PATTERN: no machine-learning keyword in the sources

Rejected clones are deleted unless --keep-clones is set. The tracker and
breakdown artifacts are rewritten every --checkpoint-interval evaluations and
once more at the end, so an interrupted run keeps its progress.

Examples:
  # Mine the first 50 repositories of a list
  mlforensics mine --input repos.csv --limit 50

  # Stricter filters and a JSON summary
  mlforensics mine -i repos.csv --dev-threshold 5 --commit-threshold 100 --output json

  # Track every evaluation in SQLite for later export
  mlforensics mine -i repos.csv --run-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: mineSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signalContext()
		defer stop()
		if err := core.ExecuteMine(ctx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run mining", err)
		}
	},
}
