// Package intent classifies a chat message into the dual {schedule,
// knowledge} label space the orchestrator dispatches on (SPEC_FULL.md §4.3).
// It follows the same dual-backend capability-interface pattern the teacher
// uses for embeddings and vector storage: a trained shallow model as the
// primary path, a keyword-rule model as the fallback when the trained model
// is unavailable.
package intent

import "context"

// Prediction is the dual-label result of Predict.
type Prediction struct {
	Schedule  bool
	Knowledge bool
}

// Classifier maps free text to a dual-intent Prediction.
type Classifier interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

const confidenceThreshold = 0.3

// labelScore is a single label's confidence, used internally by both
// backends before they're collapsed into the boolean Prediction the
// orchestrator consumes.
type labelScore struct {
	schedule  float64
	knowledge float64
}

// toPrediction applies the 0.3 confidence threshold per label, then falls
// back to the top-1 label when neither crosses it — except on an exact tie,
// where there is no top-1 and both stay false, letting the orchestrator
// route the turn to its clarification reply (SPEC_FULL.md §4.5 step 4).
func (s labelScore) toPrediction() Prediction {
	if s.schedule == s.knowledge {
		return Prediction{}
	}

	pred := Prediction{
		Schedule:  s.schedule >= confidenceThreshold,
		Knowledge: s.knowledge >= confidenceThreshold,
	}
	if !pred.Schedule && !pred.Knowledge {
		if s.schedule > s.knowledge {
			pred.Schedule = true
		} else {
			pred.Knowledge = true
		}
	}
	return pred
}
