package vectorindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresIndex stores chunk vectors in a pgvector-backed table, grounded
// directly on the teacher's chat/vector_store.go (PostgresVectorStore) and
// database/schema.go (EnsureRAGSchema), generalized from the
// document/section schema to the flat chunk model SPEC_FULL.md §3 uses.
type PostgresIndex struct {
	pool      *pgxpool.Pool
	dimension int
}

func NewPostgresIndex(pool *pgxpool.Pool, dimension int) *PostgresIndex {
	return &PostgresIndex{pool: pool, dimension: dimension}
}

func (i *PostgresIndex) EnsureCollection(ctx context.Context) error {
	if i.dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS frontdesk_chunks (
			id UUID PRIMARY KEY,
			doc_id TEXT NOT NULL,
			chunk_index INT NOT NULL,
			text TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, i.dimension),
		"CREATE INDEX IF NOT EXISTS idx_frontdesk_chunks_doc ON frontdesk_chunks(doc_id)",
		"CREATE INDEX IF NOT EXISTS idx_frontdesk_chunks_embedding ON frontdesk_chunks USING ivfflat (embedding vector_cosine_ops)",
	}

	for _, stmt := range stmts {
		if _, err := i.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}

func (i *PostgresIndex) Reset(ctx context.Context) error {
	if _, err := i.pool.Exec(ctx, "TRUNCATE TABLE frontdesk_chunks"); err != nil {
		return fmt.Errorf("truncate frontdesk_chunks: %w", err)
	}
	return nil
}

func (i *PostgresIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	for idx, p := range points {
		if len(p.Embedding) != i.dimension {
			return fmt.Errorf("%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, idx, len(p.Embedding), i.dimension)
		}
	}

	batch := &pgxBatch{}
	for _, p := range points {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return fmt.Errorf("point id %q: %w", p.ID, err)
		}
		batch.queue(`
			INSERT INTO frontdesk_chunks (id, doc_id, chunk_index, text, tags, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				doc_id = EXCLUDED.doc_id,
				chunk_index = EXCLUDED.chunk_index,
				text = EXCLUDED.text,
				tags = EXCLUDED.tags,
				embedding = EXCLUDED.embedding
		`, id, p.DocID, p.ChunkIndex, p.Text, p.Tags, pgvector.NewVector(p.Embedding))
	}

	if err := batch.send(ctx, i.pool); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}

	return nil
}

func (i *PostgresIndex) Search(ctx context.Context, embedding []float32, limit int) ([]ScoredPoint, error) {
	if len(embedding) != i.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(embedding), i.dimension)
	}
	if limit <= 0 {
		limit = 8
	}

	conn, err := i.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := limit * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx, `
		SELECT id, doc_id, chunk_index, text, tags, (embedding <=> $1::vector) AS distance
		FROM frontdesk_chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	out := make([]ScoredPoint, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		var sp ScoredPoint
		var distance float64
		if err := rows.Scan(&id, &sp.DocID, &sp.ChunkIndex, &sp.Text, &sp.Tags, &distance); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		sp.ID = id.String()
		sp.Score = 1 - distance
		out = append(out, sp)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (i *PostgresIndex) Close() error {
	i.pool.Close()
	return nil
}

// pgxBatch queues statements and runs them one by one with tx.Exec inside
// a single transaction; it does not use pgx's Batch API.
type pgxBatch struct {
	queries []string
	args    [][]any
}

func (b *pgxBatch) queue(sql string, args ...any) {
	b.queries = append(b.queries, strings.TrimSpace(sql))
	b.args = append(b.args, args)
}

func (b *pgxBatch) send(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for idx, sql := range b.queries {
		if _, err := tx.Exec(ctx, sql, b.args[idx]...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
