// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"golang.org/x/term"
)

// progressOut receives the per-candidate progress lines.
var progressOut = os.Stderr

// LogRunHeader prints a concise, 2-line header for a mining run.
func LogRunHeader(cfg *contract.Config, runID string, candidates int) {
	fmt.Fprintf(progressOut, "🔎 Run: %s (%d candidates from %s)\n", runID, candidates, cfg.InputFile)
	fmt.Fprintf(progressOut, "📐 Thresholds: devs >= %d, commits >= %d, source ratio >= %.2f (branch %s)\n",
		cfg.DevThreshold, cfg.CommitThreshold, cfg.SourceThreshold, cfg.Branch)
}

// LogProgress prints one line per evaluated candidate.
func LogProgress(eval schema.Evaluation, processed, total int) {
	fmt.Fprintf(progressOut, "[%d/%d] %-9s %-26s %s (%s)\n",
		processed, total,
		contract.GetColorLabel(eval.Outcome),
		eval.Outcome.Reason,
		eval.Candidate.URL,
		eval.Duration.Round(10*time.Millisecond))
}

// getMaxTablePathWidth calculates the maximum width for repository URLs in
// table output based on terminal width and the fixed metric columns.
func getMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Devs + Commits + Files + Python + Age + Matches with borders/padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}

// labelFor returns the colored or plain outcome label.
func labelFor(outcome schema.Outcome, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(outcome)
	}
	return contract.GetPlainLabel(outcome)
}
