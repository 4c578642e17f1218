package extractor

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/frontdesk/rag-orchestrator/embeddings"
)

// Extractor picks the single best sentence from a retrieved chunk for a
// given query.
type Extractor struct {
	embedder embeddings.Embedder
}

func New(embedder embeddings.Embedder) *Extractor {
	return &Extractor{embedder: embedder}
}

// Extract returns the best-scoring sentence from chunkText for query. If
// segmentation yields no valid sentences, it returns chunkText unchanged;
// if it yields exactly one, that sentence is returned without scoring.
func (e *Extractor) Extract(ctx context.Context, query, chunkText string) (string, error) {
	sentences := segmentSentences(chunkText)
	if len(sentences) == 0 {
		return chunkText, nil
	}
	if len(sentences) == 1 {
		return sentences[0], nil
	}

	queryVec, sentenceVecs, err := e.embedBatch(ctx, query, sentences)
	if err != nil {
		return "", err
	}

	bestIdx := 0
	bestScore := sentenceScore(queryVec, sentenceVecs[0], query, sentences[0])
	for i := 1; i < len(sentences); i++ {
		score := sentenceScore(queryVec, sentenceVecs[i], query, sentences[i])
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return sentences[bestIdx], nil
}

// embedBatch issues the query embedding and every sentence embedding as one
// concurrent errgroup batch, per SPEC_FULL.md §4.2 step 2 / §5.
func (e *Extractor) embedBatch(ctx context.Context, query string, sentences []string) ([]float32, [][]float32, error) {
	var queryVec []float32
	var sentenceVecs [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vecs, err := e.embedder.Embed(gctx, []string{query})
		if err != nil {
			return err
		}
		queryVec = vecs[0]
		return nil
	})
	g.Go(func() error {
		vecs, err := e.embedder.Embed(gctx, sentences)
		if err != nil {
			return err
		}
		sentenceVecs = vecs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return queryVec, sentenceVecs, nil
}
