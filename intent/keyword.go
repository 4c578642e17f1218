package intent

import (
	"context"
	"strings"
)

var scheduleKeywords = []string{
	"book", "schedule", "appointment", "reschedule", "change", "move",
	"make it", "change to", "rebook", "slot",
}

var knowledgeKeywords = []string{
	"what", "where", "how", "when", "why", "tell me", "policy", "parking",
	"hours", "insurance", "prepare", "bring", "access", "grace", "late",
	"cancellation", "location", "office",
}

// KeywordModel is the fallback classifier used when the trained model is
// unavailable, per SPEC_FULL.md §4.3.
type KeywordModel struct{}

func NewKeywordModel() *KeywordModel {
	return &KeywordModel{}
}

func (m *KeywordModel) Predict(ctx context.Context, text string) (Prediction, error) {
	lower := strings.ToLower(text)

	schedule := containsAny(lower, scheduleKeywords)
	knowledge := containsAny(lower, knowledgeKeywords) && !schedule

	return Prediction{Schedule: schedule, Knowledge: knowledge}, nil
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

var _ Classifier = (*KeywordModel)(nil)
