package queue

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curdbook/curdbook/internal/model"
)

func entry(id string) *model.LedgerEntry {
	return &model.LedgerEntry{
		ID:        id,
		Amount:    decimal.RequireFromString("10.00"),
		Direction: model.DirectionDebit,
		Currency:  "EUR",
	}
}

func newQueue(t *testing.T, store Store) *Queue {
	t.Helper()
	q, err := New(store, zerolog.Nop())
	require.NoError(t, err)
	return q
}

func TestEnqueue_MergesSameKey(t *testing.T) {
	q := newQueue(t, NewMemoryStore())

	first, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 1, "timeout")
	require.NoError(t, err)

	second, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 0, "connection refused")
	require.NoError(t, err)

	assert.Equal(t, 1, q.Len(), "same (action, entryID) never duplicates")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.Attempts, "attempts takes the max")
	assert.Equal(t, "connection refused", second.LastError, "lastError is overwritten")
	assert.False(t, second.Timestamp.Before(first.Timestamp), "timestamp takes the latest")
}

func TestEnqueue_DifferentActionsCoexist(t *testing.T) {
	q := newQueue(t, NewMemoryStore())

	_, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)
	_, err = q.Enqueue(model.ActionUpdate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)

	assert.Equal(t, 2, q.Len())
	assert.True(t, q.HasEntry("e-1"))
}

func TestBumpAll(t *testing.T) {
	q := newQueue(t, NewMemoryStore())

	_, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)
	_, err = q.Enqueue(model.ActionUpdate, "e-2", entry("e-2"), 2, "")
	require.NoError(t, err)

	require.NoError(t, q.BumpAll("server unreachable"))
	require.NoError(t, q.BumpAll("server unreachable"))

	actions := q.Actions()
	assert.Equal(t, 2, actions[0].Attempts)
	assert.Equal(t, 4, actions[1].Attempts, "attempts only ever grows")
	for _, a := range actions {
		assert.Equal(t, "server unreachable", a.LastError)
	}
}

func TestClearOnSuccess(t *testing.T) {
	q := newQueue(t, NewMemoryStore())

	a, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)
	_, err = q.Enqueue(model.ActionCreate, "e-2", entry("e-2"), 0, "")
	require.NoError(t, err)

	require.NoError(t, q.ClearOnSuccess([]string{a.ID}))
	assert.Equal(t, 1, q.Len())
	assert.False(t, q.HasEntry("e-1"))
	assert.True(t, q.HasEntry("e-2"))
}

func TestRemoveForEntry(t *testing.T) {
	q := newQueue(t, NewMemoryStore())

	_, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)
	_, err = q.Enqueue(model.ActionUpdate, "e-1", entry("e-1"), 0, "")
	require.NoError(t, err)
	_, err = q.Enqueue(model.ActionCreate, "e-2", entry("e-2"), 0, "")
	require.NoError(t, err)

	require.NoError(t, q.RemoveForEntry("e-1"))
	assert.Equal(t, 1, q.Len())
	assert.False(t, q.HasEntry("e-1"))
}

func TestRestoreFromStore(t *testing.T) {
	store := NewMemoryStore()

	q := newQueue(t, store)
	_, err := q.Enqueue(model.ActionCreate, "e-1", entry("e-1"), 1, "offline")
	require.NoError(t, err)

	// Simulated restart: a fresh queue over the same store.
	restored := newQueue(t, store)
	require.Equal(t, 1, restored.Len())
	got := restored.Actions()[0]
	assert.Equal(t, model.ActionCreate, got.Action)
	assert.Equal(t, "e-1", got.EntryID)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "offline", got.LastError)
	require.NotNil(t, got.Payload)
	assert.Equal(t, "e-1", got.Payload.ID)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "queue.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	// Absent blob is an empty queue, not an error.
	actions, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, actions)

	q := newQueue(t, store)
	_, err = q.Enqueue(model.ActionDelete, "e-9", nil, 0, "")
	require.NoError(t, err)

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	restored := newQueue(t, reopened)
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, model.ActionDelete, restored.Actions()[0].Action)
	assert.Nil(t, restored.Actions()[0].Payload)
}
