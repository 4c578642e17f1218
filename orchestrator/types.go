package orchestrator

import (
	"sync"
	"time"

	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/schedule"
)

// Response is the envelope returned from a single orchestrator turn
// (SPEC_FULL.md §4.5 step 5, §6).
type Response struct {
	Reply     string               `json:"reply"`
	Citations []knowledge.Citation `json:"citations"`
	PlanSteps []PlanStep           `json:"plan_steps"`
	ToolCalls []ToolCall           `json:"tool_calls,omitempty"`
	LatencyMs int64                `json:"latency_ms"`
	SessionID string               `json:"session_id"`
	Error     string               `json:"error,omitempty"`
}

// PlanStep is one structured trace record in the turn's execution, emitted
// per orchestrator stage for client observability (SPEC_FULL.md §4.5).
type PlanStep struct {
	Step      string         `json:"step"`
	Detail    map[string]any `json:"detail,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
}

// ToolCall records a single tool invocation the orchestrator made on the
// caller's behalf, with its outcome.
type ToolCall struct {
	Name   string     `json:"name"`
	Result ToolResult `json:"result"`
}

// ToolResult is the outcome of a tool invocation.
type ToolResult struct {
	OK          bool                  `json:"ok"`
	Appointment *schedule.Appointment `json:"appointment,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// planStepRecorder accumulates plan steps across possibly-concurrent
// branches. Steps are appended under a mutex, so the returned list reflects
// completion order rather than dispatch order (SPEC_FULL.md §5 "Ordering").
type planStepRecorder struct {
	mu    sync.Mutex
	steps []PlanStep
}

func (r *planStepRecorder) record(step string, detail map[string]any, start time.Time) {
	entry := PlanStep{Step: step, Detail: detail, LatencyMs: time.Since(start).Milliseconds()}
	r.mu.Lock()
	r.steps = append(r.steps, entry)
	r.mu.Unlock()
}

func (r *planStepRecorder) snapshot() []PlanStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlanStep, len(r.steps))
	copy(out, r.steps)
	return out
}
