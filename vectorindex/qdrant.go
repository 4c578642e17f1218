package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex wraps the Qdrant gRPC client with health-checked startup and
// retrying writes, the exact shape of
// mike-a-ellis-eino-docs-mcp/internal/storage/qdrant.go's QdrantStorage,
// adapted from a parent-document/chunk schema to the flat chunk-only
// Point model SPEC_FULL.md §3 describes.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
}

// NewQdrantIndex dials Qdrant and waits for it to answer a health check
// with exponential backoff before returning, so callers fail fast instead
// of discovering an unreachable backend on the first real request.
func NewQdrantIndex(ctx context.Context, host string, port int, collection string, dimension int) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	idx := &QdrantIndex{client: client, collection: collection, dimension: uint64(dimension)}

	if err := idx.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant unreachable: %w", err)
	}

	return idx, nil
}

func (i *QdrantIndex) healthCheckWithRetry(ctx context.Context) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 10 * time.Second
	eb.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := i.client.HealthCheck(ctx)
		return err
	}, eb)
}

func (i *QdrantIndex) EnsureCollection(ctx context.Context) error {
	collections, err := i.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == i.collection {
			return nil
		}
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			"content": {
				Size:     i.dimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	for _, field := range []string{"doc_id"} {
		if _, err := i.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: i.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return fmt.Errorf("create field index %s: %w", field, err)
		}
	}

	return nil
}

func (i *QdrantIndex) Reset(ctx context.Context) error {
	if err := i.client.DeleteCollection(ctx, i.collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return i.EnsureCollection(ctx)
}

func (i *QdrantIndex) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 10 * time.Second
	eb.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: i.collection,
			Points:         points,
		})
		return err
	}, eb)
}

func (i *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	for idx, p := range points {
		if uint64(len(p.Embedding)) != i.dimension {
			return fmt.Errorf("%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, idx, len(p.Embedding), i.dimension)
		}
	}

	const batchSize = 100
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]
		structs := make([]*qdrant.PointStruct, len(batch))
		for j, p := range batch {
			id, err := pointUUID(p.ID)
			if err != nil {
				return fmt.Errorf("point id %q: %w", p.ID, err)
			}
			tags := make([]any, len(p.Tags))
			for k, t := range p.Tags {
				tags[k] = t
			}
			structs[j] = &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(id),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					"content": qdrant.NewVector(p.Embedding...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"doc_id":      p.DocID,
					"chunk_index": p.ChunkIndex,
					"text":        p.Text,
					"tags":        tags,
				}),
			}
		}
		if err := i.upsertWithRetry(ctx, structs); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
	}

	return nil
}

func (i *QdrantIndex) Search(ctx context.Context, embedding []float32, limit int) ([]ScoredPoint, error) {
	if uint64(len(embedding)) != i.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(embedding), i.dimension)
	}
	if limit <= 0 {
		limit = 8
	}

	vectorName := "content"
	results, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(embedding...),
		Using:          &vectorName,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		payload := r.Payload
		var tags []string
		if tv, ok := payload["tags"]; ok && tv.GetListValue() != nil {
			for _, v := range tv.GetListValue().Values {
				tags = append(tags, v.GetStringValue())
			}
		}
		out = append(out, ScoredPoint{
			Point: Point{
				ID:         r.Id.GetUuid(),
				DocID:      payload["doc_id"].GetStringValue(),
				ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
				Text:       payload["text"].GetStringValue(),
				Tags:       tags,
			},
			Score: float64(r.Score),
		})
	}

	return out, nil
}

func (i *QdrantIndex) Close() error {
	if i.client != nil {
		return i.client.Close()
	}
	return nil
}

// pointUUID maps a caller-supplied opaque point ID to a UUID string.
// Caller IDs are expected to already be UUIDs (the Knowledge DAO mints
// them via uuid.New() per chunk); this guards against a malformed value
// reaching the wire.
func pointUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
