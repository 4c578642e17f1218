package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk/rag-orchestrator/kv"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return New(kv.New(kv.Options{Addr: mr.Addr()})), mr
}

func TestGetAbsentSessionReturnsZeroValue(t *testing.T) {
	store, _ := newTestStore(t)

	sc, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, sc.LastAppt)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := SessionContext{LastAppt: &LastAppointment{
		Patient:   "Chen",
		SlotISO:   "2026-08-07T10:30:00Z",
		Location:  "Midtown",
		ApptID:    "appt-1",
		Timestamp: "2026-08-06T12:00:00Z",
	}}
	require.NoError(t, store.Set(ctx, "sess-1", want))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastAppt)
	assert.Equal(t, *want.LastAppt, *got.LastAppt)
}

func TestSetRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sc := SessionContext{LastAppt: &LastAppointment{Patient: "Rivera"}}
	require.NoError(t, store.Set(ctx, "sess-2", sc))

	mr.FastForward(20 * time.Minute)
	require.NoError(t, store.Set(ctx, "sess-2", sc))
	mr.FastForward(20 * time.Minute)

	got, err := store.Get(ctx, "sess-2")
	require.NoError(t, err)
	require.NotNil(t, got.LastAppt)
	assert.Equal(t, "Rivera", got.LastAppt.Patient)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-3", SessionContext{LastAppt: &LastAppointment{Patient: "Lee"}}))

	mr.FastForward(31 * time.Minute)

	got, err := store.Get(ctx, "sess-3")
	require.NoError(t, err)
	assert.Nil(t, got.LastAppt)
}
