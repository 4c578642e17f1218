package embeddings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/logging"
)

const embeddingCacheTTL = time.Hour

// CachingEmbedder wraps an Embedder with the emb: namespace cache
// (SPEC_FULL.md §4.6). Cache keys truncate the base64-encoded text at 100
// characters — an intentional aliasing behavior preserved from the original
// design, documented in knowledge/cache_keys.go.
type CachingEmbedder struct {
	inner  Embedder
	store  kv.Store
	logger *logging.Logger
}

func NewCachingEmbedder(inner Embedder, store kv.Store, logger *logging.Logger) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, store: store, logger: logger}
}

// EmbedKey returns the emb: cache key for a piece of text, truncated to the
// first 100 base64 characters.
func EmbedKey(text string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if len(encoded) > 100 {
		encoded = encoded[:100]
	}
	return "emb:" + encoded
}

func (c *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		key := EmbedKey(text)
		data, err := c.store.Get(ctx, key)
		if err != nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
			continue
		}
		var vec []float32
		if err := json.Unmarshal(data, &vec); err != nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
			continue
		}
		results[i] = vec
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		results[idx] = embedded[j]
		data, err := json.Marshal(embedded[j])
		if err != nil {
			continue
		}
		if err := c.store.Set(ctx, EmbedKey(missTexts[j]), data, embeddingCacheTTL); err != nil {
			c.logger.Warn("embedding cache write failed: %v", err)
		}
	}

	return results, nil
}
