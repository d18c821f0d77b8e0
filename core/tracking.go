package core

import (
	"fmt"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
)

// runRecorder mirrors a mining run into the run store when one is configured.
// Store failures are reported and never interrupt the run.
type runRecorder struct {
	store contract.RunStore
	runID string
	ok    bool
}

func newRunRecorder(mgr contract.CacheManager, runID string) *runRecorder {
	r := &runRecorder{runID: runID}
	if mgr != nil {
		r.store = mgr.GetRunStore()
	}
	return r
}

func (r *runRecorder) begin(start time.Time, configParams map[string]any) {
	if r.store == nil {
		return
	}
	if err := r.store.BeginRun(r.runID, start, configParams); err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}
	r.ok = true
}

func (r *runRecorder) record(eval schema.Evaluation) {
	if !r.ok {
		return
	}
	record := schema.NewEvaluationRecord(r.runID, eval, time.Now())
	if err := r.store.RecordEvaluation(record); err != nil {
		logTrackingError("RecordEvaluation", eval.Candidate.URL, err)
	}
}

func (r *runRecorder) end(endTime time.Time, processed, kept int) {
	if !r.ok {
		return
	}
	if err := r.store.EndRun(r.runID, endTime, processed, kept); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting the run.
func logTrackingError(operation, url string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, url), err)
}
