package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk/rag-orchestrator/entities"
	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/memory"
)

// knowledgePath runs the Knowledge DAO and Answer Extractor for a turn and
// returns the reply sentence plus its supporting citations (SPEC_FULL.md
// §4.1, §4.2). An empty reply with nil citations means "no information" —
// the dual subflow treats that as a branch that produced nothing.
func (o *Orchestrator) knowledgePath(ctx context.Context, query string, steps *planStepRecorder) (string, []knowledge.Citation) {
	if sentence, citations, ok := o.dao.CachedAnswer(ctx, query); ok {
		steps.record("retrieve_knowledge", map[string]any{"hits": len(citations), "cache": "hit"}, time.Now())
		return sentence, citations
	}

	start := time.Now()
	chunks, err := o.dao.Search(ctx, query, 3)
	steps.record("retrieve_knowledge", map[string]any{"hits": len(chunks)}, start)
	if err != nil {
		o.logger.Warn("knowledge search failed: %v", err)
		return "", nil
	}
	if len(chunks) == 0 {
		return "", nil
	}

	top := chunks[0]
	sentence, err := o.extractor.Extract(ctx, query, top.Text)
	if err != nil {
		o.logger.Warn("answer extraction failed: %v", err)
		sentence = strings.TrimSpace(top.Text)
	}

	citations := make([]knowledge.Citation, len(chunks))
	for i, c := range chunks {
		citations[i] = knowledge.Citation{
			DocID:      c.DocID,
			ChunkIndex: c.ChunkIndex,
			Score:      roundScore(c.Score),
			Ref:        i + 1,
		}
	}

	go o.dao.CacheAnswer(context.WithoutCancel(ctx), query, sentence, citations)

	return sentence, citations
}

// scheduleSubflow books a new appointment from entities present in message,
// per SPEC_FULL.md §4.5's Schedule subflow.
func (o *Orchestrator) scheduleSubflow(ctx context.Context, message, sessionID string, steps *planStepRecorder) (string, []ToolCall) {
	entStart := time.Now()
	name, nameOK := entities.ExtractName(message)
	location := entities.ExtractLocation(message)
	steps.record("extract_entities", map[string]any{"name": name, "location": location, "found": nameOK}, entStart)

	timeStart := time.Now()
	when, timeOK := entities.ExtractTime(message, o.Clock())
	steps.record("extract_time", map[string]any{"found": timeOK}, timeStart)

	if !nameOK || !timeOK {
		return scheduleMissingEntityReply, nil
	}

	apptStart := time.Now()
	appt, err := o.schedule.Create(ctx, name, when.Format(time.RFC3339), location)
	steps.record("schedule_appointment", map[string]any{"patient": name}, apptStart)
	if err != nil {
		o.logger.Warn("schedule_appointment failed: %v", err)
		return scheduleFailureReply, []ToolCall{{
			Name:   "schedule_appointment",
			Result: ToolResult{OK: false, Error: err.Error()},
		}}
	}

	o.writeLastAppt(ctx, sessionID, appt.Patient, appt.NormalizedSlotISO, appt.Location, appt.ApptID)

	reply := fmt.Sprintf("Booked %s for %s in %s.", appt.Patient, formatShort(when), appt.Location)
	return reply, []ToolCall{{Name: "schedule_appointment", Result: ToolResult{OK: true, Appointment: &appt}}}
}

// rescheduleSubflow moves the session's last-known appointment to a new
// time, per SPEC_FULL.md §4.5's Reschedule subflow. Callers must only
// invoke this when sessCtx.LastAppt is non-nil.
func (o *Orchestrator) rescheduleSubflow(ctx context.Context, message, sessionID string, sessCtx memory.SessionContext, steps *planStepRecorder) (string, []ToolCall) {
	timeStart := time.Now()
	when, timeOK := entities.ExtractTime(message, o.Clock())
	steps.record("extract_time", map[string]any{"found": timeOK}, timeStart)

	if !timeOK {
		return rescheduleMissingTimeReply, nil
	}

	apptStart := time.Now()
	appt, err := o.schedule.Reschedule(ctx, sessCtx.LastAppt.ApptID, when.Format(time.RFC3339))
	steps.record("reschedule_appointment", map[string]any{"appt_id": sessCtx.LastAppt.ApptID}, apptStart)
	if err != nil {
		o.logger.Warn("reschedule_appointment failed: %v", err)
		return rescheduleFailureReply, []ToolCall{{
			Name:   "reschedule_appointment",
			Result: ToolResult{OK: false, Error: err.Error()},
		}}
	}

	o.writeLastAppt(ctx, sessionID, appt.Patient, appt.NormalizedSlotISO, appt.Location, appt.ApptID)

	reply := fmt.Sprintf("Rebooked %s for %s in %s.", appt.Patient, formatShort(when), appt.Location)
	return reply, []ToolCall{{Name: "reschedule_appointment", Result: ToolResult{OK: true, Appointment: &appt}}}
}

func (o *Orchestrator) writeLastAppt(ctx context.Context, sessionID, patient, slotISO, location, apptID string) {
	sc := memory.SessionContext{LastAppt: &memory.LastAppointment{
		Patient:   patient,
		SlotISO:   slotISO,
		Location:  location,
		ApptID:    apptID,
		Timestamp: o.Clock().Format(time.RFC3339),
	}}
	if err := o.memory.Set(ctx, sessionID, sc); err != nil {
		o.logger.Warn("session memory write failed: %v", err)
	}
}

// composeReply joins the knowledge and schedule/reschedule reply parts of a
// dual-intent turn, omitting whichever branch produced nothing.
func composeReply(knowledgeReply, actionReply string) string {
	switch {
	case knowledgeReply == "":
		return actionReply
	case actionReply == "":
		return knowledgeReply
	default:
		return knowledgeReply + " " + actionReply
	}
}
