package knowledge

import (
	"strings"

	"github.com/google/uuid"
)

// approxCharsPerToken matches SPEC_FULL.md §3's "token ≈ 4 characters" rule
// of thumb for the 512-token soft cap.
const (
	softCapTokens       = 512
	approxCharsPerToken = 4
	softCapChars        = softCapTokens * approxCharsPerToken
)

// chunkDocument splits a Document into Chunks on whitespace boundaries,
// packing words into the 512-approximate-token soft cap while preserving
// textual order and producing dense 0-based chunk indices, grounded on the
// teacher's ingestion.ChunkMarkdown paragraph-packing approach but operating
// on a flat word stream instead of markdown paragraphs since Documents here
// arrive as plain text.
func chunkDocument(doc Document) []Chunk {
	words := strings.Fields(doc.Text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []string
	var currentLen int

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			PointID:    uuid.New().String(),
			DocID:      doc.ID,
			ChunkIndex: len(chunks),
			Text:       strings.Join(current, " "),
			Tags:       doc.Tags,
		})
		current = nil
		currentLen = 0
	}

	for _, w := range words {
		wordLen := len(w) + 1
		if currentLen+wordLen > softCapChars && len(current) > 0 {
			flush()
		}
		current = append(current, w)
		currentLen += wordLen
	}
	flush()

	return chunks
}
