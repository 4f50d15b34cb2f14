// Package syncer keeps the local ledger and the remote collaborator
// eventually consistent. Local mutations always commit immediately;
// only the remote half can fail, and failure is always contained to
// the pending queue plus a non-fatal notification. At-least-once,
// never data loss.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/curdbook/curdbook/internal/ledger"
	"github.com/curdbook/curdbook/internal/model"
	"github.com/curdbook/curdbook/internal/queue"
	"github.com/curdbook/curdbook/internal/synclog"
)

// ErrOffline reports that synchronization was deliberately deferred
// because the environment is offline. It is informational, not a
// failure; nothing was lost.
var ErrOffline = errors.New("offline: synchronization deferred")

// SyncError wraps a failed remote persist. The local mutation it
// accompanied is committed regardless; the queued action will be
// retried.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("could not sync, will retry: %v", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Snapshot is the full payload sent to the remote collaborator.
type Snapshot struct {
	Entries      []model.LedgerEntry   `json:"entries"`
	Categories   []model.Category      `json:"categories"`
	Accounts     []model.Account       `json:"accounts"`
	PendingQueue []model.PendingAction `json:"pendingQueue"`
}

// SaveResult is the remote's acknowledgment.
type SaveResult struct {
	Success bool      `json:"success"`
	SavedAt time.Time `json:"savedAt"`
}

// Remote is the opaque persistence collaborator.
type Remote interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) (SaveResult, error)
}

// Connectivity reports whether the remote is reachable at all. A nil
// probe means "assume online".
type Connectivity interface {
	Online() bool
}

// Config wires an Engine.
type Config struct {
	Ledger       *ledger.Store
	Queue        *queue.Queue
	Remote       Remote
	Connectivity Connectivity
	DataDir      string // sync log location; empty disables the log
	Log          zerolog.Logger
}

// Engine coordinates optimistic local mutation with deferred remote
// persistence.
type Engine struct {
	ledger   *ledger.Store
	queue    *queue.Queue
	remote   Remote
	net      Connectivity
	dataDir  string
	log      zerolog.Logger
	onSaved  []func(savedAt time.Time)
	onFailed []func(err error)
}

// New creates an Engine.
func New(cfg Config) *Engine {
	return &Engine{
		ledger:  cfg.Ledger,
		queue:   cfg.Queue,
		remote:  cfg.Remote,
		net:     cfg.Connectivity,
		dataDir: cfg.DataDir,
		log:     cfg.Log,
	}
}

// OnSaved registers a callback for confirmed remote persistence.
func (e *Engine) OnSaved(fn func(savedAt time.Time)) {
	e.onSaved = append(e.onSaved, fn)
}

// OnSyncFailed registers a callback for failed persistence attempts.
func (e *Engine) OnSyncFailed(fn func(err error)) {
	e.onFailed = append(e.onFailed, fn)
}

// PersistAll sends the full current snapshot to the remote. On success
// the queue and all pending flags are cleared; on failure every queued
// action's attempt counter is bumped and a SyncError is returned.
func (e *Engine) PersistAll(ctx context.Context) error {
	snap := e.snapshot()

	res, err := e.remote.SaveSnapshot(ctx, snap)
	if err == nil && !res.Success {
		err = errors.New("remote rejected snapshot")
	}
	if err != nil {
		if qerr := e.queue.BumpAll(err.Error()); qerr != nil {
			e.log.Error().Err(qerr).Msg("recording attempt on pending queue failed")
		}
		e.appendLog(synclog.OutcomeSaveFailed, err.Error(), len(snap.Entries))
		serr := &SyncError{Err: err}
		e.log.Warn().Err(err).Int("queued", e.queue.Len()).Msg("remote persist failed")
		for _, fn := range e.onFailed {
			fn(serr)
		}
		return serr
	}

	ids := make([]string, 0, len(snap.PendingQueue))
	for _, a := range snap.PendingQueue {
		ids = append(ids, a.ID)
	}
	if err := e.queue.ClearOnSuccess(ids); err != nil {
		e.log.Error().Err(err).Msg("clearing confirmed queue actions failed")
	}
	e.ledger.ClearPending()
	e.appendLog(synclog.OutcomeSaved, "", len(snap.Entries))
	e.log.Info().Int("entries", len(snap.Entries)).Time("savedAt", res.SavedAt).Msg("snapshot saved")
	for _, fn := range e.onSaved {
		fn(res.SavedAt)
	}
	return nil
}

// ProcessPendingQueue is the retry entry point: a no-op on an empty
// queue, ErrOffline when the environment is offline (unless forced),
// otherwise a full PersistAll.
func (e *Engine) ProcessPendingQueue(ctx context.Context, force bool) error {
	if e.queue.IsEmpty() {
		return nil
	}
	if !force && e.net != nil && !e.net.Online() {
		e.appendLog(synclog.OutcomeOfflineSkipped, "", e.ledger.Len())
		e.log.Debug().Int("queued", e.queue.Len()).Msg("offline, retry deferred")
		return ErrOffline
	}
	return e.PersistAll(ctx)
}

// RecordLedgerEntry normalizes and records a new entry locally, then
// attempts remote persistence unless deferRemote is set. The returned
// entry is committed locally even when the error is non-nil.
func (e *Engine) RecordLedgerEntry(ctx context.Context, raw map[string]any, deferRemote bool) (model.LedgerEntry, error) {
	entry, err := e.ledger.Record(raw)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return e.afterLocal(ctx, model.ActionCreate, entry, deferRemote)
}

// UpdateLedgerEntry merges changes into an existing entry locally,
// then attempts remote persistence unless deferRemote is set.
func (e *Engine) UpdateLedgerEntry(ctx context.Context, entryID string, changes map[string]any, deferRemote bool) (model.LedgerEntry, error) {
	entry, err := e.ledger.Update(entryID, changes)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return e.afterLocal(ctx, model.ActionUpdate, entry, deferRemote)
}

// UpsertLedgerEntry records or updates depending on whether the
// record's ID already exists, so callers never juggle the
// create-versus-update decision themselves.
func (e *Engine) UpsertLedgerEntry(ctx context.Context, raw map[string]any, deferRemote bool) (model.LedgerEntry, error) {
	action, entry, err := e.ledger.Upsert(raw)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return e.afterLocal(ctx, action, entry, deferRemote)
}

// DeleteLedgerEntry removes an entry locally along with any queued
// actions referencing it, then attempts remote persistence. Absent IDs
// return (false, nil).
func (e *Engine) DeleteLedgerEntry(ctx context.Context, entryID string, deferRemote bool) (bool, error) {
	_, ok := e.ledger.Delete(entryID)
	if !ok {
		return false, nil
	}
	if err := e.queue.RemoveForEntry(entryID); err != nil {
		e.log.Error().Err(err).Str("entry", entryID).Msg("dropping queued actions for deleted entry failed")
	}

	if deferRemote {
		_, err := e.queue.Enqueue(model.ActionDelete, entryID, nil, 0, "")
		return true, err
	}

	if err := e.PersistAll(ctx); err != nil {
		if _, qerr := e.queue.Enqueue(model.ActionDelete, entryID, nil, 1, err.Error()); qerr != nil {
			e.log.Error().Err(qerr).Str("entry", entryID).Msg("queueing delete action failed")
		}
		return true, err
	}
	return true, nil
}

// afterLocal runs the remote half of a mutation: immediate persist, or
// a queued pending action when the persist is deferred or fails.
func (e *Engine) afterLocal(ctx context.Context, action model.ActionType, entry model.LedgerEntry, deferRemote bool) (model.LedgerEntry, error) {
	if deferRemote {
		payload := entry
		if _, err := e.queue.Enqueue(action, entry.ID, &payload, 0, ""); err != nil {
			return entry, err
		}
		e.ledger.SetPending(entry.ID, true)
		entry.Pending = true
		return entry, nil
	}

	if err := e.PersistAll(ctx); err != nil {
		payload := entry
		if _, qerr := e.queue.Enqueue(action, entry.ID, &payload, 1, err.Error()); qerr != nil {
			e.log.Error().Err(qerr).Str("entry", entry.ID).Msg("queueing pending action failed")
		}
		e.ledger.SetPending(entry.ID, true)
		entry.Pending = true
		return entry, err
	}
	entry.Pending = false
	return entry, nil
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Entries:      e.ledger.Entries(),
		Categories:   e.ledger.Categories(),
		Accounts:     e.ledger.Accounts(),
		PendingQueue: e.queue.Actions(),
	}
}

func (e *Engine) appendLog(outcome synclog.Outcome, detail string, entries int) {
	if e.dataDir == "" {
		return
	}
	err := synclog.Append(e.dataDir, []synclog.Entry{{
		Timestamp:  time.Now(),
		Outcome:    outcome,
		Detail:     detail,
		Entries:    entries,
		QueueDepth: e.queue.Len(),
	}})
	if err != nil {
		e.log.Warn().Err(err).Msg("appending sync log failed")
	}
}
