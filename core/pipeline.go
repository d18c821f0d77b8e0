package core

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"go.uber.org/zap"
)

// Cloner fetches a remote repository into a local directory.
type Cloner interface {
	Clone(ctx context.Context, url string, dir string) error
}

// CensusTaker counts the files of a clone.
type CensusTaker interface {
	Census(root string) (schema.FileCensus, error)
}

// HistoryAnalyzer derives contributor and activity metrics from a clone.
type HistoryAnalyzer interface {
	Analyze(ctx context.Context, clonePath, branch string, explorationLimit int) (schema.RepositoryMetrics, error)
}

// PatternScanner counts keyword references in the sources of a clone.
type PatternScanner interface {
	Scan(ctx context.Context, root string) (int, error)
}

// Remover deletes a clone from disk.
type Remover interface {
	Remove(path string) error
}

// DiskRemover deletes clones with os.RemoveAll.
type DiskRemover struct{}

// Remove implements the Remover interface.
func (DiskRemover) Remove(path string) error {
	return os.RemoveAll(path)
}

// Thresholds are the minimums a repository must reach to be kept.
type Thresholds struct {
	Devs        int
	Commits     int
	SourceRatio float64
}

// Pipeline evaluates one candidate at a time through the ordered filters:
// file census, source ratio, contributors, commits and keyword presence.
// The first failing filter decides the outcome and later stages never run.
type Pipeline struct {
	Cloner  Cloner // nil evaluates an existing clone in place
	Census  CensusTaker
	History HistoryAnalyzer
	Scanner PatternScanner
	Remover Remover // nil never deletes

	Thresholds       Thresholds
	Branch           string
	ExplorationLimit int
}

// NewPipeline wires a pipeline from the validated configuration.
func NewPipeline(cfg *contract.Config, cloner Cloner, census CensusTaker, history HistoryAnalyzer, scanner PatternScanner, remover Remover) *Pipeline {
	return &Pipeline{
		Cloner:  cloner,
		Census:  census,
		History: history,
		Scanner: scanner,
		Remover: remover,
		Thresholds: Thresholds{
			Devs:        cfg.DevThreshold,
			Commits:     cfg.CommitThreshold,
			SourceRatio: cfg.SourceThreshold,
		},
		Branch:           cfg.Branch,
		ExplorationLimit: cfg.ExplorationLimit,
	}
}

// Evaluate clones the candidate and applies the filters in order.
//
// Clone and census failures are logged and surface as NO_FILES. A failing
// scan yields SCAN_FAILED together with the scan error; the evaluation is
// still complete and the caller decides whether to continue. Any outcome
// other than KEPT deletes the clone before returning. Deletion failures are
// logged and never change the outcome. A canceled context is returned as an
// error with the evaluation left incomplete.
func (p *Pipeline) Evaluate(ctx context.Context, candidate schema.Candidate) (eval schema.Evaluation, err error) {
	start := time.Now()
	eval.Candidate = candidate
	defer func() {
		eval.Duration = time.Since(start)
		if !eval.Outcome.Kept {
			p.discard(candidate.ClonePath, eval.Outcome.Reason)
		}
	}()

	log := contract.L().With(zap.Int("index", candidate.Index), zap.String("url", candidate.URL))

	// --- 1. Acquire ---
	if p.Cloner != nil {
		log.Debug("cloning", zap.String("clone", candidate.ClonePath))
		if err := p.Cloner.Clone(ctx, candidate.URL, candidate.ClonePath); err != nil {
			if ctx.Err() != nil {
				return eval, ctx.Err()
			}
			log.Warn("clone failed", zap.Error(err))
		}
	}

	// --- 2. File census ---
	census, err := p.Census.Census(candidate.ClonePath)
	if err != nil {
		log.Warn("file census failed", zap.Error(err))
		census = schema.FileCensus{}
	}
	eval.Census = census
	if census.TotalFiles <= 0 {
		eval.Outcome = schema.NewOutcome(schema.NoFiles)
		return eval, nil
	}
	if float64(census.SourceFiles) < float64(census.TotalFiles)*p.Thresholds.SourceRatio {
		eval.Outcome = schema.NewOutcome(schema.InsufficientSourceRatio)
		return eval, nil
	}

	// --- 3. Commit history ---
	metrics, err := p.History.Analyze(ctx, candidate.ClonePath, p.Branch, p.ExplorationLimit)
	if err != nil {
		return eval, err
	}
	eval.Metrics = metrics
	if metrics.Contributors < p.Thresholds.Devs {
		eval.Outcome = schema.NewOutcome(schema.LimitedDevs)
		return eval, nil
	}
	if metrics.Commits < p.Thresholds.Commits {
		eval.Outcome = schema.NewOutcome(schema.LimitedCommits)
		return eval, nil
	}

	// --- 4. Keyword scan ---
	matches, err := p.Scanner.Scan(ctx, candidate.ClonePath)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return eval, err
		}
		eval.Outcome = schema.NewOutcome(schema.ScanFailed)
		return eval, err
	}
	eval.MatchCount = matches
	if matches == 0 {
		eval.Outcome = schema.NewOutcome(schema.NoPattern)
		return eval, nil
	}

	eval.Outcome = schema.NewOutcome(schema.Kept)
	return eval, nil
}

// discard removes a rejected clone. Failures are logged only.
func (p *Pipeline) discard(path string, reason schema.RejectReason) {
	if p.Remover == nil || path == "" {
		return
	}
	contract.L().Info("deleting clone", zap.String("reason", string(reason)), zap.String("clone", path))
	if err := p.Remover.Remove(path); err != nil {
		contract.L().Warn("failed deleting clone", zap.String("clone", path), zap.Error(err))
	}
}
