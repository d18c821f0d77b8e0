package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"go.uber.org/zap"
)

// ErrInvalidBatchSize is returned when a list is chunked with a non-positive size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// MakeChunks splits items into consecutive batches of size, the last of which
// may be shorter. Concatenating the batches reproduces items in order.
func MakeChunks[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, size)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks, nil
}

// RunState is the accumulated state of one mining run.
type RunState struct {
	RunID     string
	StartTime time.Time

	Processed   int
	Evaluations []schema.Evaluation
	Tracker     []schema.TrackerRecord
	Breakdown   []schema.BreakdownRow

	flushedAt int
}

// NewRunState starts an empty run.
func NewRunState(runID string, start time.Time) *RunState {
	return &RunState{RunID: runID, StartTime: start}
}

// Record appends the outcome of one candidate.
func (s *RunState) Record(eval schema.Evaluation) {
	s.Processed++
	s.Evaluations = append(s.Evaluations, eval)
	s.Tracker = append(s.Tracker, schema.NewTrackerRecord(eval))
	s.Breakdown = append(s.Breakdown, schema.NewBreakdownRow(eval))
}

// Summary reports the run so far.
func (s *RunState) Summary(end time.Time) schema.RunSummary {
	summary := schema.RunSummary{
		RunID:     s.RunID,
		StartTime: s.StartTime,
		EndTime:   end,
		Processed: s.Processed,
		ByReason:  make(map[schema.RejectReason]int),
	}
	for _, e := range s.Evaluations {
		summary.ByReason[e.Outcome.Reason]++
		if e.Outcome.Kept {
			summary.Kept++
			summary.KeptRepos = append(summary.KeptRepos, e)
		}
	}
	return summary
}

// ArtifactWriter persists the full accumulated tables of a run.
type ArtifactWriter interface {
	WriteTracker(records []schema.TrackerRecord) error
	WriteBreakdown(rows []schema.BreakdownRow) error
}

// Checkpointer rewrites the run artifacts every Interval observations.
type Checkpointer struct {
	Interval int
	Writer   ArtifactWriter
}

// NewCheckpointer creates a Checkpointer that flushes every interval records.
func NewCheckpointer(interval int, writer ArtifactWriter) *Checkpointer {
	return &Checkpointer{Interval: interval, Writer: writer}
}

// Observe records eval and flushes when the processed count reaches a
// multiple of Interval.
func (c *Checkpointer) Observe(state *RunState, eval schema.Evaluation) error {
	state.Record(eval)
	if c.Interval > 0 && state.Processed%c.Interval == 0 {
		return c.Flush(state)
	}
	return nil
}

// Flush rewrites both artifacts from the start of the run.
func (c *Checkpointer) Flush(state *RunState) error {
	if err := c.Writer.WriteTracker(state.Tracker); err != nil {
		return fmt.Errorf("failed to write tracker: %w", err)
	}
	if err := c.Writer.WriteBreakdown(state.Breakdown); err != nil {
		return fmt.Errorf("failed to write breakdown: %w", err)
	}
	state.flushedAt = state.Processed
	contract.L().Info("checkpoint written", zap.String("run_id", state.RunID), zap.Int("processed", state.Processed))
	return nil
}

// Finish flushes whatever was observed since the last checkpoint.
func (c *Checkpointer) Finish(state *RunState) error {
	if state.Processed == state.flushedAt {
		return nil
	}
	return c.Flush(state)
}
