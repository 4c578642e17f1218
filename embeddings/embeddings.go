package embeddings

import (
	"context"
	"fmt"

	"github.com/frontdesk/rag-orchestrator/config"
)

// Embedder maps text to fixed-dimension vectors. Two backends implement it,
// chosen at construction time by config.Config.EmbeddingProvider — the same
// capability-interface pattern the teacher uses here, which SPEC_FULL.md
// reuses again for vectorindex.Index and intent.Classifier.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Provider:      cfg.EmbeddingProvider,
		Model:         cfg.EmbeddingModel,
		Dimension:     cfg.EmbeddingDim,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	case ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}
