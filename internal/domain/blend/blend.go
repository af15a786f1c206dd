// Package blend re-ranks an offline candidate list against a recency
// signal supplied by the caller.
package blend

import (
	"sort"
)

// Candidate is a track under consideration during re-ranking, carrying
// the blended score. Candidates are ephemeral and scoped to one request.
type Candidate struct {
	TrackID int64
	Score   float64
}

// Rerank blends an ordered offline candidate list with a binary recency
// boost and returns the top-k track ids.
//
// The candidate at zero-based offline position i receives
// offline_score = 1/(i+1). A candidate present in recent receives
// online_boost = 1.0, otherwise 0.0; membership is exact, not
// similarity-based. The final score is
// (1-alpha)*offline_score + alpha*online_boost. The sort is stable, so
// candidates tied on the final score keep their offline order.
// Duplicate track ids in offline stay separate candidates.
func Rerank(offline []int64, recent []int64, alpha float64, k int) []int64 {
	if k <= 0 || len(offline) == 0 {
		return nil
	}

	recentSet := make(map[int64]struct{}, len(recent))
	for _, id := range recent {
		recentSet[id] = struct{}{}
	}

	cands := make([]Candidate, len(offline))
	for i, id := range offline {
		offlineScore := 1.0 / float64(i+1)
		boost := 0.0
		if _, ok := recentSet[id]; ok {
			boost = 1.0
		}
		cands[i] = Candidate{
			TrackID: id,
			Score:   (1-alpha)*offlineScore + alpha*boost,
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})

	if k > len(cands) {
		k = len(cands)
	}
	out := make([]int64, k)
	for i := 0; i < k; i++ {
		out[i] = cands[i].TrackID
	}
	return out
}
