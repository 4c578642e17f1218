// Package lexical implements the in-process BM25 index the Knowledge DAO's
// sparse retrieval branch searches (SPEC_FULL.md §4.1). The DocFreq-based
// index shape is grounded on the domain.Index/domain.Chunk types in the
// retrieved mcp-mdx pack (other_examples/bad33ndj3-mcp-md-index__models.go);
// no BM25 library exists anywhere in the retrieved dependency corpus, so the
// scoring math itself is hand-rolled on the standard library — see
// DESIGN.md for that justification.
package lexical

import (
	"math"
	"sort"
	"strings"
	"sync"
)

const (
	k1 = 1.2
	b  = 0.75
)

// Entry is one chunk as seen by the lexical index.
type Entry struct {
	PointID    string
	DocID      string
	ChunkIndex int
	Text       string
}

// Result is a scored Entry.
type Result struct {
	Entry
	Score float64
}

type document struct {
	entry  Entry
	terms  []string
	length int
}

// Index is a BM25-scored in-process index with single-writer/many-reader
// semantics: Rebuild swaps in a freshly built snapshot atomically, Search
// takes a read lock for the duration of scoring — the same discipline
// SPEC_FULL.md §5 names for the shared lexical index.
type Index struct {
	mu      sync.RWMutex
	docs    []document
	docFreq map[string]int
	avgLen  float64
}

// New returns an empty index.
func New() *Index {
	return &Index{docFreq: map[string]int{}}
}

// Tokenize lowercases and splits on ASCII whitespace, per SPEC_FULL.md §4.1.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Rebuild atomically replaces the index contents with the given entries.
// Callers are expected to pass the full corpus; Rebuild does not merge with
// the previous state.
func (idx *Index) Rebuild(entries []Entry) {
	docs := make([]document, 0, len(entries))
	docFreq := map[string]int{}
	var totalLen int

	for _, e := range entries {
		terms := Tokenize(e.Text)
		docs = append(docs, document{entry: e, terms: terms, length: len(terms)})
		totalLen += len(terms)

		seen := map[string]bool{}
		for _, t := range terms {
			if !seen[t] {
				docFreq[t]++
				seen[t] = true
			}
		}
	}

	var avgLen float64
	if len(docs) > 0 {
		avgLen = float64(totalLen) / float64(len(docs))
	}

	idx.mu.Lock()
	idx.docs = docs
	idx.docFreq = docFreq
	idx.avgLen = avgLen
	idx.mu.Unlock()
}

// Clear empties the index, used before a fresh ingest and by Reset.
func (idx *Index) Clear() {
	idx.Rebuild(nil)
}

// Search scores every document against the query terms with Okapi BM25 and
// returns the top n by descending score, omitting zero-score documents.
func (idx *Index) Search(query string, n int) []Result {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	numDocs := len(idx.docs)
	if numDocs == 0 {
		return nil
	}

	results := make([]Result, 0, numDocs)
	for _, d := range idx.docs {
		score := idx.scoreDocument(d, queryTerms)
		if score > 0 {
			results = append(results, Result{Entry: d.entry, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}

func (idx *Index) scoreDocument(d document, queryTerms []string) float64 {
	termFreq := make(map[string]int, len(d.terms))
	for _, t := range d.terms {
		termFreq[t]++
	}

	var score float64
	numDocs := float64(len(idx.docs))

	for _, qt := range queryTerms {
		tf := float64(termFreq[qt])
		if tf == 0 {
			continue
		}
		df := float64(idx.docFreq[qt])
		if df == 0 {
			continue
		}
		idf := idfBM25(numDocs, df)
		denom := tf + k1*(1-b+b*float64(d.length)/idx.avgLen)
		score += idf * tf * (k1 + 1) / denom
	}

	return score
}

// idfBM25 computes Robertson-Spärck Jones IDF, floored at 0 so terms that
// appear in every document never push the score negative.
func idfBM25(numDocs, df float64) float64 {
	v := math.Log((numDocs-df+0.5)/(df+0.5) + 1)
	if v < 0 {
		return 0
	}
	return v
}
