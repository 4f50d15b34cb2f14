// Package queue is the durable log of not-yet-confirmed ledger
// mutations. Rows are unique per (action, entryID); re-enqueuing
// merges instead of duplicating, which keeps replays idempotent. The
// queue is written through its Store after every mutation so it
// survives restarts.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/curdbook/curdbook/internal/model"
)

// Store persists the serialized queue as one keyed blob. A missing
// blob is not an error; it reads back as an empty queue.
type Store interface {
	Load() ([]model.PendingAction, error)
	Save(actions []model.PendingAction) error
}

// Queue holds pending actions in memory, mirrored to a Store.
type Queue struct {
	store   Store
	actions []model.PendingAction
	now     func() time.Time
	log     zerolog.Logger
}

// New restores a Queue from its store.
func New(store Store, log zerolog.Logger) (*Queue, error) {
	actions, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("restoring pending queue: %w", err)
	}
	if len(actions) > 0 {
		log.Info().Int("actions", len(actions)).Msg("restored pending queue")
	}
	return &Queue{store: store, actions: actions, now: time.Now, log: log}, nil
}

// Enqueue upserts a pending action keyed by (action, entryID). On
// merge, attempts takes the max, the timestamp takes the latest and
// lastError is overwritten.
func (q *Queue) Enqueue(action model.ActionType, entryID string, payload *model.LedgerEntry, attempts int, lastError string) (model.PendingAction, error) {
	now := q.now()
	for i, existing := range q.actions {
		if existing.Action != action || existing.EntryID != entryID {
			continue
		}
		merged := existing
		merged.Payload = payload
		if attempts > merged.Attempts {
			merged.Attempts = attempts
		}
		if now.After(merged.Timestamp) {
			merged.Timestamp = now
		}
		merged.LastError = lastError
		q.actions[i] = merged
		return merged, q.persist()
	}

	a := model.PendingAction{
		ID:        uuid.NewString(),
		Action:    action,
		EntryID:   entryID,
		Payload:   payload,
		Attempts:  attempts,
		Timestamp: now,
		LastError: lastError,
	}
	q.actions = append(q.actions, a)
	return a, q.persist()
}

// Actions returns a copy of the queued actions in enqueue order.
func (q *Queue) Actions() []model.PendingAction {
	out := make([]model.PendingAction, len(q.actions))
	copy(out, q.actions)
	return out
}

// Len returns the queue depth.
func (q *Queue) Len() int {
	return len(q.actions)
}

// IsEmpty reports whether nothing is queued.
func (q *Queue) IsEmpty() bool {
	return len(q.actions) == 0
}

// HasEntry reports whether any queued action references entryID.
func (q *Queue) HasEntry(entryID string) bool {
	for _, a := range q.actions {
		if a.EntryID == entryID {
			return true
		}
	}
	return false
}

// BumpAll increments attempts and records lastError on every queued
// action, after a failed batch persist.
func (q *Queue) BumpAll(lastError string) error {
	if len(q.actions) == 0 {
		return nil
	}
	for i := range q.actions {
		q.actions[i].Attempts++
		q.actions[i].LastError = lastError
	}
	return q.persist()
}

// ClearOnSuccess removes actions by ID once the batch containing them
// was confirmed remote-side.
func (q *Queue) ClearOnSuccess(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := q.actions[:0]
	for _, a := range q.actions {
		if !drop[a.ID] {
			kept = append(kept, a)
		}
	}
	q.actions = kept
	return q.persist()
}

// RemoveForEntry drops every queued action referencing entryID. Used
// when the entry itself is deleted.
func (q *Queue) RemoveForEntry(entryID string) error {
	kept := q.actions[:0]
	removed := 0
	for _, a := range q.actions {
		if a.EntryID == entryID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	q.actions = kept
	if removed == 0 {
		return nil
	}
	return q.persist()
}

func (q *Queue) persist() error {
	if err := q.store.Save(q.Actions()); err != nil {
		q.log.Error().Err(err).Int("actions", len(q.actions)).Msg("persisting pending queue failed")
		return fmt.Errorf("persisting pending queue: %w", err)
	}
	return nil
}

// MemoryStore is a Store that keeps the blob in memory. Useful in
// tests and as a fallback when no durable path is configured.
type MemoryStore struct {
	actions []model.PendingAction
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load() ([]model.PendingAction, error) {
	out := make([]model.PendingAction, len(m.actions))
	copy(out, m.actions)
	return out, nil
}

// Save implements Store.
func (m *MemoryStore) Save(actions []model.PendingAction) error {
	m.actions = make([]model.PendingAction, len(actions))
	copy(m.actions, actions)
	return nil
}
