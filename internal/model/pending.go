package model

import "time"

// ActionType names a ledger mutation. The same values key the pending
// queue and the store's update notifications.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// PendingAction is a durably queued mutation awaiting confirmed remote
// persistence. Queue rows are unique per (Action, EntryID); repeated
// submissions merge instead of duplicating.
type PendingAction struct {
	ID        string       `json:"id"`
	Action    ActionType   `json:"action"`
	EntryID   string       `json:"entryId"`
	Payload   *LedgerEntry `json:"payload,omitempty"` // nil for deletes
	Attempts  int          `json:"attempts"`
	Timestamp time.Time    `json:"timestamp"`
	LastError string       `json:"lastError,omitempty"`
}
