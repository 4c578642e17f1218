package knowledge

import (
	"sort"
	"strings"
)

const rrfK = 60

// candidate is an intermediate retrieval result before fusion: it tracks
// each source's 0-based rank so fuseRRF can compute the Reciprocal Rank Fusion
// contribution per SPEC_FULL.md §4.1 step 3.
type candidate struct {
	chunk       Chunk
	lexicalRank int // -1 if absent from the lexical branch
	denseRank   int // -1 if absent from the dense branch
}

// fuseRRF combines lexical and dense ranked lists into one score-ordered
// list via k=60 Reciprocal Rank Fusion. Ties break by lexical-source rank,
// then by point ID, per SPEC_FULL.md §4.1 step 3.
func fuseRRF(lexical, dense []Chunk) []RetrievedChunk {
	byID := map[string]*candidate{}
	order := []string{}

	for rank, c := range lexical {
		byID[c.PointID] = &candidate{chunk: c, lexicalRank: rank, denseRank: -1}
		order = append(order, c.PointID)
	}
	for rank, c := range dense {
		if existing, ok := byID[c.PointID]; ok {
			existing.denseRank = rank
			continue
		}
		byID[c.PointID] = &candidate{chunk: c, lexicalRank: -1, denseRank: rank}
		order = append(order, c.PointID)
	}

	results := make([]RetrievedChunk, 0, len(order))
	for _, id := range order {
		cand := byID[id]
		var score float64
		if cand.lexicalRank >= 0 {
			score += 1.0 / float64(rrfK+cand.lexicalRank+1)
		}
		if cand.denseRank >= 0 {
			score += 1.0 / float64(rrfK+cand.denseRank+1)
		}
		results = append(results, RetrievedChunk{Chunk: cand.chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ci, cj := byID[results[i].PointID], byID[results[j].PointID]
		ri, rj := rankOrMax(ci.lexicalRank), rankOrMax(cj.lexicalRank)
		if ri != rj {
			return ri < rj
		}
		return results[i].PointID < results[j].PointID
	})

	return results
}

func rankOrMax(rank int) int {
	if rank < 0 {
		return int(^uint(0) >> 1) // max int
	}
	return rank
}

// selectMMR greedily selects up to k candidates from the fused list using
// Maximal Marginal Relevance (λ=0.5), trading fused relevance against
// textual diversity measured by Jaccard similarity over lowercased
// whitespace-tokenized word sets, per SPEC_FULL.md §4.1 step 4.
func selectMMR(candidates []RetrievedChunk, k int) []RetrievedChunk {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	const lambda = 0.5
	tokenSets := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		tokenSets[i] = tokenSet(c.Text)
	}

	selected := []int{0}
	if k == 1 || len(candidates) == 1 {
		return []RetrievedChunk{candidates[0]}
	}

	for len(selected) < k && len(selected) < len(candidates) {
		bestIdx := -1
		bestScore := -1.0

		for i, c := range candidates {
			if contains(selected, i) {
				continue
			}
			maxSim := 0.0
			for _, s := range selected {
				sim := jaccard(tokenSets[i], tokenSets[s])
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmrScore := lambda*c.Score - (1-lambda)*maxSim
			if mmrScore > bestScore {
				bestScore = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		selected = append(selected, bestIdx)
	}

	out := make([]RetrievedChunk, len(selected))
	for i, idx := range selected {
		out[i] = candidates[idx]
	}
	return out
}

func tokenSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
