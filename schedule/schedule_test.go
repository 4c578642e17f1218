package schedule

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
	store := New(kv.New(kv.Options{Addr: mr.Addr()}))
	store.Clock = func() time.Time { return time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC) }
	return store, mr
}

func TestCreateThenGetRoundTrips(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	appt, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.NotEmpty(t, appt.ApptID)

	got, err := store.Get(ctx, appt.ApptID)
	require.NoError(t, err)
	assert.Equal(t, appt, got)
}

func TestCreateAddsToIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)
	b, err := store.Create(ctx, "Rivera", "2026-08-08T09:00:00Z", "Uptown")
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	ids := []string{all[0].ApptID, all[1].ApptID}
	assert.ElementsMatch(t, []string{a.ApptID, b.ApptID}, ids)
}

func TestRescheduleKeepsIDChangesSlot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	appt, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)

	updated, err := store.Reschedule(ctx, appt.ApptID, "2026-08-07T11:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, appt.ApptID, updated.ApptID)
	assert.Equal(t, "2026-08-07T11:00:00Z", updated.NormalizedSlotISO)

	got, err := store.Get(ctx, appt.ApptID)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-07T11:00:00Z", got.NormalizedSlotISO)
}

func TestRescheduleUnknownIDReturnsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Reschedule(context.Background(), "does-not-exist", "2026-08-07T11:00:00Z")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestDeleteRemovesFromIndexAndStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	appt, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, appt.ApptID))

	_, err = store.Get(ctx, appt.ApptID)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteAllClearsEverything(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)
	_, err = store.Create(ctx, "Rivera", "2026-08-08T09:00:00Z", "Uptown")
	require.NoError(t, err)

	require.NoError(t, store.DeleteAll(ctx))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAppointmentExpiresAfterTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	appt, err := store.Create(ctx, "Chen", "2026-08-07T10:30:00Z", "Midtown")
	require.NoError(t, err)

	mr.FastForward(8 * 24 * time.Hour)

	_, err = store.Get(ctx, appt.ApptID)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
