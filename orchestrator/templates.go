package orchestrator

import (
	"math"
	"time"
)

const (
	clarificationReply         = "I'm not sure what you mean. You can ask about our policies or schedule an appointment."
	scheduleMissingEntityReply = "I need both a patient name and a time to schedule an appointment, e.g. 'Book Chen for tomorrow at 10:30'."
	rescheduleMissingTimeReply = "I need a new time to reschedule that appointment, e.g. 'Make it 11:00'."
	scheduleFailureReply       = "I couldn't book that appointment right now, please try again."
	rescheduleFailureReply     = "I couldn't reschedule that appointment right now, please try again."
)

// formatShort renders t using the server's en-US short date/time format,
// per SPEC_FULL.md §4.5's Schedule subflow.
func formatShort(t time.Time) string {
	return t.Format("Mon, Jan 2 at 3:04 PM")
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
