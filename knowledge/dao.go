package knowledge

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frontdesk/rag-orchestrator/embeddings"
	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/lexical"
	"github.com/frontdesk/rag-orchestrator/logging"
	"github.com/frontdesk/rag-orchestrator/vectorindex"
)

const (
	queryCacheTTL   = 30 * time.Second
	answerCacheTTL  = 600 * time.Second
	denseCandidates = 8
	lexicalTopN     = 8
	denseScoreFloor = 0.2
)

// DAO is the Knowledge DAO: hybrid retrieval, ingest, and the caching
// layers that make the latency budget achievable (SPEC_FULL.md §4.1, §4.7).
type DAO struct {
	vectors  vectorindex.Index
	lexicon  *lexical.Index
	embedder embeddings.Embedder
	store    kv.Store
	logger   *logging.Logger
}

func New(vectors vectorindex.Index, lexicon *lexical.Index, embedder embeddings.Embedder, store kv.Store, logger *logging.Logger) *DAO {
	return &DAO{vectors: vectors, lexicon: lexicon, embedder: embedder, store: store, logger: logger}
}

// Search performs cache-probed hybrid retrieval: parallel lexical and dense
// candidate gathering, RRF fusion, then MMR diversity selection down to k
// results (SPEC_FULL.md §4.1).
func (d *DAO) Search(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	if k <= 0 {
		k = 3
	}

	if cached, ok := d.probeQueryCache(ctx, query); ok {
		return cached, nil
	}

	var lexicalChunks, denseChunks []Chunk

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexicalChunks = d.searchLexical(query)
		return nil
	})
	g.Go(func() error {
		chunks, err := d.searchDense(gctx, query)
		if err != nil {
			d.logger.Warn("dense retrieval failed, degrading to lexical-only: %v", err)
			return nil
		}
		denseChunks = chunks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := fuseRRF(lexicalChunks, denseChunks)
	if len(fused) > denseCandidates {
		fused = fused[:denseCandidates]
	}

	selected := selectMMR(fused, k)

	go d.storeQueryCache(context.WithoutCancel(ctx), query, selected)

	return selected, nil
}

func (d *DAO) searchLexical(query string) []Chunk {
	results := d.lexicon.Search(query, lexicalTopN)
	out := make([]Chunk, len(results))
	for i, r := range results {
		out[i] = Chunk{PointID: r.PointID, DocID: r.DocID, ChunkIndex: r.ChunkIndex, Text: r.Text}
	}
	return out
}

func (d *DAO) searchDense(ctx context.Context, query string) ([]Chunk, error) {
	vecs, err := d.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}

	scored, err := d.vectors.Search(ctx, vecs[0], denseCandidates)
	if err != nil {
		return nil, err
	}

	out := make([]Chunk, 0, len(scored))
	for _, sp := range scored {
		if sp.Score < denseScoreFloor {
			continue
		}
		out = append(out, Chunk{PointID: sp.ID, DocID: sp.DocID, ChunkIndex: sp.ChunkIndex, Text: sp.Text, Tags: sp.Tags})
	}
	return out, nil
}

func (d *DAO) probeQueryCache(ctx context.Context, query string) ([]RetrievedChunk, bool) {
	data, err := d.store.Get(ctx, queryCacheKey(query))
	if err != nil {
		return nil, false
	}
	var cached []RetrievedChunk
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (d *DAO) storeQueryCache(ctx context.Context, query string, chunks []RetrievedChunk) {
	data, err := json.Marshal(chunks)
	if err != nil {
		d.logger.Warn("marshal query cache entry: %v", err)
		return
	}
	if err := d.store.Set(ctx, queryCacheKey(query), data, queryCacheTTL); err != nil {
		d.logger.Warn("query cache write failed: %v", err)
	}
}

// Upsert chunks and embeds each document, writes the vectors, and rebuilds
// the lexical index from the chunks produced by this call (SPEC_FULL.md
// §4.7: "before ingest begins, the in-process lexical index is cleared;
// during ingest, each chunk is added to it"). Returns the total chunk count.
func (d *DAO) Upsert(ctx context.Context, documents []Document) (int, error) {
	var allChunks []Chunk
	for _, doc := range documents {
		allChunks = append(allChunks, chunkDocument(doc)...)
	}

	d.lexicon.Clear()
	if len(allChunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(allChunks))
	for i, c := range allChunks {
		texts[i] = c.Text
	}

	vecs, err := d.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	points := make([]vectorindex.Point, len(allChunks))
	lexEntries := make([]lexical.Entry, len(allChunks))
	for i, c := range allChunks {
		points[i] = vectorindex.Point{
			ID:         c.PointID,
			DocID:      c.DocID,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Tags:       c.Tags,
			Embedding:  vecs[i],
		}
		lexEntries[i] = lexical.Entry{PointID: c.PointID, DocID: c.DocID, ChunkIndex: c.ChunkIndex, Text: c.Text}
	}

	if err := d.vectors.Upsert(ctx, points); err != nil {
		return 0, err
	}

	d.lexicon.Rebuild(lexEntries)

	return len(allChunks), nil
}

// Reset drops and recreates the vector collection and clears the lexical
// index. Cache entries are left to expire naturally (SPEC_FULL.md §9).
func (d *DAO) Reset(ctx context.Context) error {
	if err := d.vectors.Reset(ctx); err != nil {
		return err
	}
	d.lexicon.Clear()
	return nil
}

// answerCacheEntry is the value stored under the knowledge: namespace.
type answerCacheEntry struct {
	Reply     string     `json:"reply"`
	Citations []Citation `json:"citations"`
}

// CachedAnswer probes the knowledge: namespace for a previously composed
// answer to message, populated by CacheAnswer on a prior turn
// (SPEC_FULL.md §4.6). A cache read failure is treated as a miss.
func (d *DAO) CachedAnswer(ctx context.Context, message string) (string, []Citation, bool) {
	data, err := d.store.Get(ctx, answerCacheKey(message))
	if err != nil {
		return "", nil, false
	}
	var entry answerCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", nil, false
	}
	return entry.Reply, entry.Citations, true
}

// CacheAnswer writes the Answer Extractor's final output for message under
// the knowledge: namespace. Best-effort: a write failure is logged and
// swallowed (SPEC_FULL.md §4.6).
func (d *DAO) CacheAnswer(ctx context.Context, message, reply string, citations []Citation) {
	data, err := json.Marshal(answerCacheEntry{Reply: reply, Citations: citations})
	if err != nil {
		d.logger.Warn("marshal answer cache entry: %v", err)
		return
	}
	if err := d.store.Set(ctx, answerCacheKey(message), data, answerCacheTTL); err != nil {
		d.logger.Warn("answer cache write failed: %v", err)
	}
}
