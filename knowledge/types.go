// Package knowledge implements the Knowledge DAO: chunking, ingest, hybrid
// dense/sparse retrieval with rank fusion and MMR diversity selection, and
// the query/answer caching layers described in SPEC_FULL.md §3 and §4.1.
// It is grounded on the teacher's chat/service.go composition style
// (mergeSources, filter helpers) and chat/types.go's result shapes,
// generalized from a single pgvector backend to the vectorindex.Index
// capability interface and enriched with the lexical/BM25 branch and RRF/MMR
// fusion the teacher never needed.
package knowledge

// Document is a unit of ingest: stable id, free text, optional tags.
type Document struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

// Chunk is a bounded slice of a Document, the unit of retrieval.
type Chunk struct {
	PointID    string   `json:"point_id"`
	DocID      string   `json:"doc_id"`
	ChunkIndex int      `json:"chunk_index"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags,omitempty"`
}

// RetrievedChunk is a Chunk returned from Search, with its fused score.
type RetrievedChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// Citation is what the orchestrator attaches to a composed reply.
type Citation struct {
	DocID      string  `json:"doc_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Ref        int     `json:"ref"`
}
