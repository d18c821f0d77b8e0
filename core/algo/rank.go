package algo

import (
	"sort"

	"github.com/huangsam/mlforensics/schema"
)

// RankKept returns the kept evaluations sorted by pattern match count in
// descending order, ties broken by input index, and truncated to limit.
// A limit of zero or less returns every kept evaluation.
func RankKept(evals []schema.Evaluation, limit int) []schema.Evaluation {
	kept := make([]schema.Evaluation, 0, len(evals))
	for _, e := range evals {
		if e.Outcome.Kept {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].MatchCount != kept[j].MatchCount {
			return kept[i].MatchCount > kept[j].MatchCount
		}
		return kept[i].Candidate.Index < kept[j].Candidate.Index
	})
	if limit > 0 && len(kept) > limit {
		return kept[:limit]
	}
	return kept
}
