package extractor

import (
	"math"
	"strings"
)

const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
	bm25K1         = 1.2
	bm25B          = 0.75
	assumedAvgLen  = 20.0
)

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// bm25Local scores surface term overlap between a query and a sentence
// using the BM25 term-frequency normalization factor with no idf multiplier
// and a fixed assumed average sentence length of 20 tokens, per
// SPEC_FULL.md §4.2 step 3.
func bm25Local(query, sentence string) float64 {
	queryTerms := strings.Fields(strings.ToLower(query))
	sentenceTerms := strings.Fields(strings.ToLower(sentence))
	if len(queryTerms) == 0 || len(sentenceTerms) == 0 {
		return 0
	}

	termFreq := make(map[string]int, len(sentenceTerms))
	for _, t := range sentenceTerms {
		termFreq[t]++
	}

	var score float64
	length := float64(len(sentenceTerms))
	for _, qt := range queryTerms {
		tf := float64(termFreq[qt])
		if tf == 0 {
			continue
		}
		denom := tf + bm25K1*(1-bm25B+bm25B*length/assumedAvgLen)
		score += tf * (bm25K1 + 1) / denom
	}
	return score
}

func sentenceScore(queryVec, sentenceVec []float32, query, sentence string) float64 {
	return semanticWeight*cosine(queryVec, sentenceVec) + lexicalWeight*bm25Local(query, sentence)
}
