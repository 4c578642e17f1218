package knowledge

import (
	"strings"
	"testing"
)

func TestChunkDocumentPacksSoftCap(t *testing.T) {
	doc := Document{ID: "doc-1", Text: strings.Repeat("word ", 1000)}

	chunks := chunkDocument(doc)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a long document, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Fatalf("expected dense chunk indices, got %d at position %d", c.ChunkIndex, i)
		}
		if c.DocID != "doc-1" {
			t.Fatalf("expected doc id to propagate, got %s", c.DocID)
		}
		if len(c.Text) > softCapChars+10 {
			t.Fatalf("chunk exceeds soft cap: %d chars", len(c.Text))
		}
	}
}

func TestChunkDocumentPreservesOrder(t *testing.T) {
	doc := Document{ID: "doc-2", Text: "first second third fourth fifth"}

	chunks := chunkDocument(doc)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk for a short document, got %d", len(chunks))
	}
	if chunks[0].Text != "first second third fourth fifth" {
		t.Fatalf("expected word order preserved, got %q", chunks[0].Text)
	}
}

func TestChunkDocumentEmptyTextProducesNoChunks(t *testing.T) {
	chunks := chunkDocument(Document{ID: "doc-3", Text: "   "})
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkDocumentPropagatesTags(t *testing.T) {
	doc := Document{ID: "doc-4", Text: "hello world", Tags: []string{"policy"}}

	chunks := chunkDocument(doc)
	if len(chunks) != 1 || len(chunks[0].Tags) != 1 || chunks[0].Tags[0] != "policy" {
		t.Fatalf("expected tags to propagate to chunks, got %+v", chunks)
	}
}
