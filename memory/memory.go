// Package memory implements Session Memory: per-session last-appointment
// context with optimistic last-writer-wins semantics and a 30-minute TTL
// refreshed on every write (SPEC_FULL.md §3, §4.6). It is grounded on the
// same KV store contract kv/kv.go exposes, itself grounded on
// jemygraw-langgraphgo's Redis checkpoint store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frontdesk/rag-orchestrator/kv"
)

const sessionTTL = 30 * time.Minute

// Prefix is the KV key prefix every session record is stored under, exposed
// so diagnostic endpoints (GET /debug/sessions) can enumerate live sessions
// without reaching into the store directly.
const Prefix = "memory:"

// LastAppointment is the context a session carries forward across turns so
// a later "make it 11:00" can resolve against the appointment just booked.
type LastAppointment struct {
	Patient   string `json:"patient"`
	SlotISO   string `json:"slot_iso"`
	Location  string `json:"location"`
	ApptID    string `json:"appt_id"`
	Timestamp string `json:"timestamp"`
}

// SessionContext is the full per-session record. LastAppt is nil when the
// session has never booked anything.
type SessionContext struct {
	LastAppt *LastAppointment `json:"last_appt,omitempty"`
}

// Store is the Session Memory contract.
type Store struct {
	kv kv.Store
}

func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func sessionKey(sessionID string) string {
	return Prefix + sessionID
}

// Get returns the session's context, or a zero-value SessionContext (no
// LastAppt) if the session has no record or it has expired.
func (s *Store) Get(ctx context.Context, sessionID string) (SessionContext, error) {
	data, err := s.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if err == kv.ErrNotFound {
			return SessionContext{}, nil
		}
		return SessionContext{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var sc SessionContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return SessionContext{}, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return sc, nil
}

// Set overwrites the session's context and refreshes its TTL. Last writer
// wins — concurrent writes to the same session may drop updates, which is
// acceptable since sessions are single-user (SPEC_FULL.md §5).
func (s *Store) Set(ctx context.Context, sessionID string, sc SessionContext) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sessionID, err)
	}
	if err := s.kv.Set(ctx, sessionKey(sessionID), data, sessionTTL); err != nil {
		return fmt.Errorf("write session %s: %w", sessionID, err)
	}
	return nil
}
