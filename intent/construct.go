package intent

import "github.com/frontdesk/rag-orchestrator/logging"

// New returns the trained n-gram classifier, falling back to the keyword
// model if the weight blob can't be loaded, per SPEC_FULL.md §4.3.
func New(modelPath string, logger *logging.Logger) Classifier {
	model, err := NewNgramModel(modelPath)
	if err != nil {
		logger.Warn("intent model unavailable, falling back to keyword classifier: %v", err)
		return NewKeywordModel()
	}
	return model
}
