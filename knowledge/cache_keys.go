package knowledge

import "encoding/base64"

// Cache key derivations for the knowledge-facing namespaces in
// SPEC_FULL.md §4.6. The query: namespace keys on the full base64 query;
// the knowledge: namespace truncates at 100 base64 characters, an
// intentional aliasing behavior for long near-duplicate inputs — preserved
// rather than "fixed", see DESIGN.md's Open Question decisions. The emb:
// namespace (also truncated) lives in embeddings/cache.go since it caches
// the embedding provider, not the DAO.

func queryCacheKey(query string) string {
	return "query:" + base64.StdEncoding.EncodeToString([]byte(query))
}

func answerCacheKey(message string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(message))
	if len(encoded) > 100 {
		encoded = encoded[:100]
	}
	return "knowledge:" + encoded
}
