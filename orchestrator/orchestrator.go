// Package orchestrator implements turn-level planning and dispatch: intent
// classification, branch selection across the Knowledge and Schedule paths,
// and reply composition (SPEC_FULL.md §4.5). It is grounded on the
// teacher's chat/service.go composition style — cache/retrieve, merge,
// compose — generalized from a single LLM-generation path to the
// classify-then-branch dispatch this domain needs.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frontdesk/rag-orchestrator/extractor"
	"github.com/frontdesk/rag-orchestrator/intent"
	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/logging"
	"github.com/frontdesk/rag-orchestrator/memory"
	"github.com/frontdesk/rag-orchestrator/schedule"
)

var reschedulePattern = regexp.MustCompile(`(?i)make it|change to|move|reschedule|change the|move it`)

// Orchestrator dispatches a single chat turn across the Knowledge DAO,
// Answer Extractor, Intent Classifier, Entity Extractor, Session Memory,
// and Schedule Interface.
type Orchestrator struct {
	dao        *knowledge.DAO
	extractor  *extractor.Extractor
	classifier intent.Classifier
	memory     *memory.Store
	schedule   *schedule.Store
	logger     *logging.Logger

	// Clock supplies "now" for relative-date resolution; injectable for
	// deterministic tests.
	Clock func() time.Time
}

func New(
	dao *knowledge.DAO,
	ext *extractor.Extractor,
	classifier intent.Classifier,
	mem *memory.Store,
	sched *schedule.Store,
	logger *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		dao:        dao,
		extractor:  ext,
		classifier: classifier,
		memory:     mem,
		schedule:   sched,
		logger:     logger,
		Clock:      time.Now,
	}
}

// Handle runs one full turn for sessionID and returns the response
// envelope. Panics inside dispatch are recovered at this boundary so a bug
// in one branch never crashes the caller's request handling (SPEC_FULL.md
// §7).
func (o *Orchestrator) Handle(ctx context.Context, sessionID, message string) Response {
	turnStart := time.Now()
	steps := &planStepRecorder{}

	resp := o.safeDispatch(ctx, sessionID, message, steps)

	resp.PlanSteps = steps.snapshot()
	resp.SessionID = sessionID
	resp.LatencyMs = time.Since(turnStart).Milliseconds()
	return resp
}

func (o *Orchestrator) safeDispatch(ctx context.Context, sessionID, message string, steps *planStepRecorder) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic recovered in orchestrator dispatch: %v", r)
			resp = Response{
				Reply: "Sorry, something went wrong handling that. Please try again.",
				Error: fmt.Sprintf("%v", r),
			}
		}
	}()
	return o.dispatch(ctx, sessionID, message, steps)
}

func (o *Orchestrator) dispatch(ctx context.Context, sessionID, message string, steps *planStepRecorder) Response {
	predStart := time.Now()
	pred, err := o.classifier.Predict(ctx, message)
	if err != nil {
		o.logger.Warn("intent classification failed: %v", err)
		pred = intent.Prediction{}
	}
	steps.record("intent_detection", map[string]any{"schedule": pred.Schedule, "knowledge": pred.Knowledge}, predStart)

	sessCtx, err := o.memory.Get(ctx, sessionID)
	if err != nil {
		o.logger.Warn("session memory read failed: %v", err)
	}

	isReschedule := reschedulePattern.MatchString(message) && sessCtx.LastAppt != nil

	switch {
	case pred.Knowledge && pred.Schedule:
		reply, citations, toolCalls := o.dualSubflow(ctx, message, sessionID, sessCtx, isReschedule, steps)
		return Response{Reply: reply, Citations: citations, ToolCalls: toolCalls}

	case pred.Schedule && isReschedule:
		reply, toolCalls := o.rescheduleSubflow(ctx, message, sessionID, sessCtx, steps)
		return Response{Reply: reply, ToolCalls: toolCalls}

	case pred.Schedule:
		reply, toolCalls := o.scheduleSubflow(ctx, message, sessionID, steps)
		return Response{Reply: reply, ToolCalls: toolCalls}

	case pred.Knowledge:
		reply, citations := o.knowledgePath(ctx, message, steps)
		if reply == "" {
			reply = "I don't have any information about that yet."
		}
		return Response{Reply: reply, Citations: citations}

	default:
		return Response{Reply: clarificationReply}
	}
}

// dualSubflow runs the Knowledge path and the Schedule/Reschedule path
// concurrently, composing the reply from whichever branches succeeded
// (SPEC_FULL.md §4.5 step 4 "both", §5). Branch errors are swallowed by
// their own subflow (the knowledge path returns an empty reply, the
// schedule paths an apology reply), so the errgroup itself never fails and
// never cancels the sibling branch.
func (o *Orchestrator) dualSubflow(ctx context.Context, message, sessionID string, sessCtx memory.SessionContext, isReschedule bool, steps *planStepRecorder) (string, []knowledge.Citation, []ToolCall) {
	var knowledgeReply, actionReply string
	var citations []knowledge.Citation
	var toolCalls []ToolCall

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		knowledgeReply, citations = o.knowledgePath(gctx, message, steps)
		return nil
	})
	g.Go(func() error {
		if isReschedule {
			actionReply, toolCalls = o.rescheduleSubflow(gctx, message, sessionID, sessCtx, steps)
		} else {
			actionReply, toolCalls = o.scheduleSubflow(gctx, message, sessionID, steps)
		}
		return nil
	})
	_ = g.Wait()

	return composeReply(knowledgeReply, actionReply), citations, toolCalls
}
