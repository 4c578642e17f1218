// Package vectorindex defines the ANN search contract the Knowledge DAO
// retrieves against, with two interchangeable backends: Qdrant (grounded on
// mike-a-ellis-eino-docs-mcp's internal/storage/qdrant.go) and Postgres with
// the pgvector extension (grounded on the teacher's own
// chat/vector_store.go and database/schema.go). Both are selected at
// construction time via config.Config.VectorBackend, matching the
// capability-interface / provider-switch pattern the teacher already uses
// for embeddings and LLM clients (embeddings/embeddings.go).
package vectorindex

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's length does not match
// the collection's configured dimension.
var ErrDimensionMismatch = errors.New("vectorindex: embedding dimension mismatch")

// Point is a single chunk vector plus the payload the Knowledge DAO needs
// to reconstruct a Citation without a second round trip.
type Point struct {
	ID         string
	DocID      string
	ChunkIndex int
	Text       string
	Tags       []string
	Embedding  []float32
}

// ScoredPoint is a Point returned from Search, with its similarity score.
type ScoredPoint struct {
	Point
	Score float64
}

// Index is the ANN search contract backing the Knowledge DAO's dense
// retrieval branch (SPEC_FULL.md §4.1).
type Index interface {
	// EnsureCollection creates the backing collection/table if absent.
	// Idempotent.
	EnsureCollection(ctx context.Context) error

	// Reset discards all points (Qdrant drops and recreates the collection;
	// Postgres truncates the table).
	Reset(ctx context.Context) error

	// Upsert writes or overwrites points in batches.
	Upsert(ctx context.Context, points []Point) error

	// Search performs cosine-similarity ANN search and returns up to limit
	// points ordered by descending score.
	Search(ctx context.Context, embedding []float32, limit int) ([]ScoredPoint, error)

	Close() error
}
