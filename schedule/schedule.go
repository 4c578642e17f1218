// Package schedule implements the Schedule Interface: appointment
// create/reschedule/list/delete against the KV store's "appt:" namespace
// (604800s TTL) and the "appts:all" index set (SPEC_FULL.md §3, §4.6).
// Grounded on the same kv.Store contract as memory/memory.go.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/frontdesk/rag-orchestrator/kv"
)

const (
	appointmentTTL = 7 * 24 * time.Hour
	allApptsKey    = "appts:all"

	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment is a single booked (or cancelled) slot.
type Appointment struct {
	ApptID            string    `json:"appt_id"`
	Patient           string    `json:"patient"`
	NormalizedSlotISO string    `json:"normalized_slot_iso"`
	Location          string    `json:"location"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store is the Schedule Interface contract. Clock is injectable for tests.
type Store struct {
	kv    kv.Store
	Clock func() time.Time
}

func New(store kv.Store) *Store {
	return &Store{kv: store, Clock: time.Now}
}

func apptKey(apptID string) string {
	return "appt:" + apptID
}

// Create books a new appointment and adds it to the all-appointments index.
func (s *Store) Create(ctx context.Context, patient, normalizedSlotISO, location string) (Appointment, error) {
	now := s.Clock()
	appt := Appointment{
		ApptID:            uuid.New().String(),
		Patient:           patient,
		NormalizedSlotISO: normalizedSlotISO,
		Location:          location,
		Status:            StatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.put(ctx, appt); err != nil {
		return Appointment{}, err
	}
	if err := s.kv.SAdd(ctx, allApptsKey, appt.ApptID); err != nil {
		return Appointment{}, fmt.Errorf("index appointment %s: %w", appt.ApptID, err)
	}
	return appt, nil
}

// Reschedule moves an existing appointment to a new slot, preserving its ID.
func (s *Store) Reschedule(ctx context.Context, apptID, newNormalizedSlotISO string) (Appointment, error) {
	appt, err := s.Get(ctx, apptID)
	if err != nil {
		return Appointment{}, err
	}
	appt.NormalizedSlotISO = newNormalizedSlotISO
	appt.Status = StatusScheduled
	appt.UpdatedAt = s.Clock()
	if err := s.put(ctx, appt); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Get returns a single appointment by ID.
func (s *Store) Get(ctx context.Context, apptID string) (Appointment, error) {
	data, err := s.kv.Get(ctx, apptKey(apptID))
	if err != nil {
		if err == kv.ErrNotFound {
			return Appointment{}, kv.ErrNotFound
		}
		return Appointment{}, fmt.Errorf("get appointment %s: %w", apptID, err)
	}
	var appt Appointment
	if err := json.Unmarshal(data, &appt); err != nil {
		return Appointment{}, fmt.Errorf("unmarshal appointment %s: %w", apptID, err)
	}
	return appt, nil
}

// List returns every appointment currently in the index. Appointments whose
// individual TTL has expired are skipped rather than erroring, since the
// index set itself carries no TTL and can outlive its members.
func (s *Store) List(ctx context.Context) ([]Appointment, error) {
	ids, err := s.kv.SMembers(ctx, allApptsKey)
	if err != nil {
		return nil, fmt.Errorf("list appointment ids: %w", err)
	}
	appts := make([]Appointment, 0, len(ids))
	for _, id := range ids {
		appt, err := s.Get(ctx, id)
		if err != nil {
			if err == kv.ErrNotFound {
				continue
			}
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// Delete removes a single appointment and its index entry.
func (s *Store) Delete(ctx context.Context, apptID string) error {
	if err := s.kv.Delete(ctx, apptKey(apptID)); err != nil {
		return fmt.Errorf("delete appointment %s: %w", apptID, err)
	}
	if err := s.kv.SRem(ctx, allApptsKey, apptID); err != nil {
		return fmt.Errorf("unindex appointment %s: %w", apptID, err)
	}
	return nil
}

// DeleteAll removes every appointment and clears the index.
func (s *Store) DeleteAll(ctx context.Context) error {
	ids, err := s.kv.SMembers(ctx, allApptsKey)
	if err != nil {
		return fmt.Errorf("list appointment ids: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) put(ctx context.Context, appt Appointment) error {
	data, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("marshal appointment %s: %w", appt.ApptID, err)
	}
	if err := s.kv.Set(ctx, apptKey(appt.ApptID), data, appointmentTTL); err != nil {
		return fmt.Errorf("write appointment %s: %w", appt.ApptID, err)
	}
	return nil
}
