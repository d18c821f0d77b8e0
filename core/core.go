// Package core has the mining pipeline, its checkpointing and the run driver.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/mlforensics/core/algo"
	"github.com/huangsam/mlforensics/core/history"
	"github.com/huangsam/mlforensics/core/source"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/internal/outwriter"
	"github.com/huangsam/mlforensics/internal/repolist"
	"github.com/huangsam/mlforensics/schema"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing the mining commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteMine loads the candidate list, evaluates every candidate in input
// order and writes the run artifacts and summary.
// It serves as the main entry point for the 'mine' command.
func ExecuteMine(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	urls, err := repolist.Load(cfg.InputFile, cfg.URLColumn)
	if err != nil {
		return err
	}
	urls = repolist.Limit(repolist.Dedupe(urls), cfg.Limit)

	batches, err := MakeChunks(BuildCandidates(urls, cfg.CloneRoot), cfg.BatchSize)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.CloneRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create clone root: %w", err)
	}

	client := contract.NewLocalGitClientWithTimeouts(cfg.GitTimeout, cfg.CloneTimeout)
	var remover Remover = DiskRemover{}
	if cfg.KeepClones {
		remover = nil
	}
	pipeline := buildPipeline(cfg, client, mgr, client, remover)
	checkpointer := NewCheckpointer(cfg.CheckpointInterval, outwriter.NewArtifactWriter(cfg.TrackerFile, cfg.BreakdownFile))
	state := NewRunState(ulid.Make().String(), start)
	runs := newRunRecorder(mgr, state.RunID)

	outwriter.LogRunHeader(cfg, state.RunID, len(urls))
	contract.L().Info("mining started",
		zap.String("run_id", state.RunID), zap.Int("candidates", len(urls)), zap.Int("batches", len(batches)))
	runs.begin(start, cfg.ConfigParams())

	runErr := mineBatches(ctx, pipeline, checkpointer, state, runs, batches, len(urls))

	// The last partial batch is persisted even when the run was interrupted.
	if err := checkpointer.Finish(state); err != nil {
		return err
	}
	end := time.Now()
	summary := state.Summary(end)
	runs.end(end, summary.Processed, summary.Kept)
	contract.L().Info("mining finished",
		zap.String("run_id", state.RunID),
		zap.Int("processed", summary.Processed),
		zap.Int("kept", summary.Kept),
		zap.Float64("duration_minutes", algo.RoundTo(summary.DurationMinutes(), algo.AgePrecision)))
	if runErr != nil {
		return runErr
	}

	summary.KeptRepos = algo.RankKept(summary.KeptRepos, 0)
	return outwriter.WriteRunSummary(summary, cfg)
}

// mineBatches evaluates every candidate and feeds the checkpointer. It stops
// early only on cancellation or an artifact write failure.
func mineBatches(ctx context.Context, pipeline *Pipeline, checkpointer *Checkpointer, state *RunState, runs *runRecorder, batches [][]schema.Candidate, total int) error {
	for i, batch := range batches {
		contract.L().Debug("starting batch", zap.Int("batch", i+1), zap.Int("size", len(batch)))
		for _, candidate := range batch {
			eval, err := pipeline.Evaluate(ctx, candidate)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if errors.Is(err, source.ErrScanFailed) {
					contract.LogWarn(fmt.Sprintf("Pattern scan failed for %s", candidate.URL), err)
				} else {
					return err
				}
			}

			runs.record(eval)
			if err := checkpointer.Observe(state, eval); err != nil {
				return err
			}
			outwriter.LogProgress(eval, state.Processed, total)
			contract.L().Info("candidate evaluated",
				zap.Int("index", candidate.Index),
				zap.String("url", candidate.URL),
				zap.String("outcome", string(eval.Outcome.Reason)),
				zap.Int("processed", state.Processed),
				zap.Duration("duration", eval.Duration))
		}
	}
	return nil
}

// ExecuteInspect evaluates an existing clone in place, without cloning or
// deleting it, and prints what the filters decide.
// It serves as the main entry point for the 'inspect' command.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if info, err := os.Stat(cfg.RepoPath); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", cfg.RepoPath)
	}
	client := contract.NewLocalGitClientWithTimeouts(cfg.GitTimeout, cfg.CloneTimeout)
	pipeline := buildPipeline(cfg, client, mgr, nil, nil)

	candidate := schema.Candidate{Index: 1, URL: cfg.RepoPath, ClonePath: cfg.RepoPath}
	eval, err := pipeline.Evaluate(ctx, candidate)
	if err != nil && !errors.Is(err, source.ErrScanFailed) {
		return err
	}
	if err != nil {
		contract.LogWarn("Pattern scan failed", err)
	}
	return outwriter.WriteInspection(eval, cfg)
}

// buildPipeline wires the production collaborators. The history analyzer is
// cached when the manager provides a history store.
func buildPipeline(cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, cloner Cloner, remover Remover) *Pipeline {
	opts := source.MatchOptions{
		IgnoreExtensionCase: cfg.IgnoreExtensionCase,
		Excludes:            cfg.Excludes,
	}
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}
	analyzer := history.NewCachedAnalyzer(history.NewAnalyzer(client), client, store)
	return NewPipeline(cfg, cloner, opts, analyzer, source.NewScanner(cfg.Keywords, opts), remover)
}
