package intent

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strings"
)

//go:embed model.json
var embeddedModel embed.FS

// modelWeights is the on-disk shape of the weight blob: a hand-authored
// stand-in for a gradient-trained artifact (SPEC_FULL.md §6 "Persisted
// state layout" — there is no training pipeline in this repo, nor any ML
// library anywhere in the retrieved dependency corpus to run one with).
// Known unigrams/bigrams carry explicit per-class weights; anything else
// is hashed to a bucket index, but no bucket weights are stored, so such
// n-grams contribute zero to the logits.
type modelWeights struct {
	Bias           [2]float64             `json:"bias"`
	UnigramWeights map[string][2]float64  `json:"unigram_weights"`
	BigramWeights  map[string][2]float64  `json:"bigram_weights"`
	BucketCount    int                    `json:"bucket_count"`
}

// NgramModel is the primary intent classifier: a shallow hashed-n-gram
// linear model with a softmax head over {schedule, knowledge}.
type NgramModel struct {
	weights modelWeights
}

// NewNgramModel loads the weight blob from path, or from the embedded
// default when path is empty.
func NewNgramModel(path string) (*NgramModel, error) {
	var data []byte
	var err error

	if path == "" {
		data, err = embeddedModel.ReadFile("model.json")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load intent model: %w", err)
	}

	var weights modelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("parse intent model: %w", err)
	}
	if weights.BucketCount <= 0 {
		weights.BucketCount = 64
	}

	return &NgramModel{weights: weights}, nil
}

func (m *NgramModel) Predict(ctx context.Context, text string) (Prediction, error) {
	score := m.score(text)
	return score.toPrediction(), nil
}

func (m *NgramModel) score(text string) labelScore {
	tokens := strings.Fields(strings.ToLower(text))

	logits := m.weights.Bias

	for _, t := range tokens {
		w, ok := m.weights.UnigramWeights[t]
		if !ok {
			w = m.hashedBucketWeight(t)
		}
		logits[0] += w[0]
		logits[1] += w[1]
	}

	for i := 0; i+1 < len(tokens); i++ {
		bigram := tokens[i] + " " + tokens[i+1]
		w, ok := m.weights.BigramWeights[bigram]
		if !ok {
			w = m.hashedBucketWeight(bigram)
		}
		logits[0] += w[0]
		logits[1] += w[1]
	}

	schedule, knowledge := softmax2(logits[0], logits[1])
	return labelScore{schedule: schedule, knowledge: knowledge}
}

// hashedBucketWeight computes an out-of-vocabulary n-gram's bucket index
// (FNV-1a mod bucket_count) and discards it: the model stores no bucket
// weights, so every such n-gram gets a zero weight — see modelWeights' doc
// comment.
func (m *NgramModel) hashedBucketWeight(gram string) [2]float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(gram))
	_ = int(h.Sum32()) % m.weights.BucketCount
	return [2]float64{0, 0}
}

// softmax2 is the two-class softmax used to turn raw logits into the
// {schedule, knowledge} confidences SPEC_FULL.md §4.3 thresholds at 0.3.
func softmax2(a, b float64) (float64, float64) {
	max := math.Max(a, b)
	ea := math.Exp(a - max)
	eb := math.Exp(b - max)
	sum := ea + eb
	return ea / sum, eb / sum
}

var _ Classifier = (*NgramModel)(nil)
