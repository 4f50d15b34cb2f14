// Package ledger holds the authoritative in-memory collections the
// rest of the system reads: entries, accounts and categories. All
// mutation goes through the operations here; everything else works on
// snapshots.
package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/curdbook/curdbook/internal/model"
	"github.com/curdbook/curdbook/internal/normalize"
)

var (
	// ErrDuplicateEntry guards Record against reusing an existing ID.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrNotFound guards Update against missing IDs.
	ErrNotFound = errors.New("entry not found")
)

// Update describes one ledger mutation for observers.
type Update struct {
	Action model.ActionType
	Entry  model.LedgerEntry
}

// Observer receives ledger update notifications.
type Observer func(Update)

// Store is the authoritative in-memory ledger. It is not safe for
// concurrent use; the surrounding application serializes access
// (single active writer per device).
type Store struct {
	entries    []model.LedgerEntry
	byID       map[string]int
	accounts   map[string]model.Account
	acctOrder  []string
	categories map[string]model.Category
	catOrder   []string
	observers  []Observer
	now        func() time.Time
	log        zerolog.Logger
}

// New creates an empty Store.
func New(log zerolog.Logger) *Store {
	return &Store{
		byID:       make(map[string]int),
		accounts:   make(map[string]model.Account),
		categories: make(map[string]model.Category),
		now:        time.Now,
		log:        log,
	}
}

// Subscribe registers an observer for ledger update notifications.
// Observers run synchronously, in registration order.
func (s *Store) Subscribe(fn Observer) {
	s.observers = append(s.observers, fn)
}

// Record normalizes a raw record and adds it as a new entry. Fails
// with ErrDuplicateEntry when the resolved ID already exists.
func (s *Store) Record(raw map[string]any) (model.LedgerEntry, error) {
	e, err := normalize.Entry(raw, nil, s.now())
	if err != nil {
		return model.LedgerEntry{}, err
	}
	if _, exists := s.byID[e.ID]; exists {
		return model.LedgerEntry{}, ErrDuplicateEntry
	}

	s.ensureReferenced(e)
	s.entries = append(s.entries, e)
	s.resort()
	s.notify(Update{Action: model.ActionCreate, Entry: e})
	return e, nil
}

// Update merges changes into an existing entry through the normalizer,
// preserving createdAt and the pending flag. Fails with ErrNotFound.
func (s *Store) Update(entryID string, changes map[string]any) (model.LedgerEntry, error) {
	idx, ok := s.byID[entryID]
	if !ok {
		return model.LedgerEntry{}, ErrNotFound
	}
	prev := s.entries[idx]

	merged, err := normalize.Entry(changes, &prev, s.now())
	if err != nil {
		return model.LedgerEntry{}, err
	}
	merged.ID = entryID

	s.ensureReferenced(merged)
	s.entries[idx] = merged
	s.resort()
	s.notify(Update{Action: model.ActionUpdate, Entry: merged})
	return merged, nil
}

// Upsert records a new entry or, when the resolved ID already exists,
// updates it in place. It returns which of the two happened so callers
// can queue the matching pending action.
func (s *Store) Upsert(raw map[string]any) (model.ActionType, model.LedgerEntry, error) {
	e, err := normalize.Entry(raw, nil, s.now())
	if err != nil {
		return "", model.LedgerEntry{}, err
	}
	if _, exists := s.byID[e.ID]; exists {
		updated, err := s.Update(e.ID, raw)
		return model.ActionUpdate, updated, err
	}
	created, err := s.Record(raw)
	if errors.Is(err, ErrDuplicateEntry) {
		updated, uerr := s.Update(e.ID, raw)
		return model.ActionUpdate, updated, uerr
	}
	return model.ActionCreate, created, err
}

// Delete removes an entry. Absent IDs are a no-op returning false.
func (s *Store) Delete(entryID string) (model.LedgerEntry, bool) {
	idx, ok := s.byID[entryID]
	if !ok {
		return model.LedgerEntry{}, false
	}
	removed := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.resort()
	s.notify(Update{Action: model.ActionDelete, Entry: removed})
	return removed, true
}

// Get returns an entry by ID.
func (s *Store) Get(entryID string) (model.LedgerEntry, bool) {
	idx, ok := s.byID[entryID]
	if !ok {
		return model.LedgerEntry{}, false
	}
	return s.entries[idx], true
}

// Entries returns a copy of all entries in (date, createdAt) order.
func (s *Store) Entries() []model.LedgerEntry {
	out := make([]model.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// SetPending flags or clears an entry's pending marker. The flag is
// cosmetic; no update notification is emitted for it.
func (s *Store) SetPending(entryID string, pending bool) bool {
	idx, ok := s.byID[entryID]
	if !ok {
		return false
	}
	s.entries[idx].Pending = pending
	return true
}

// ClearPending clears the pending flag on every entry, after a
// successful full flush.
func (s *Store) ClearPending() {
	for i := range s.entries {
		s.entries[i].Pending = false
	}
}

// EnsureAccount adds an account, or patches mutable display fields
// (name, color, type, currency) on an existing one. Idempotent.
func (s *Store) EnsureAccount(a model.Account) {
	existing, ok := s.accounts[a.ID]
	if !ok {
		s.accounts[a.ID] = a
		s.acctOrder = append(s.acctOrder, a.ID)
		return
	}
	patched := existing
	if a.Name != "" && a.Name != existing.Name {
		patched.Name = a.Name
	}
	if a.Color != "" && a.Color != existing.Color {
		patched.Color = a.Color
	}
	if a.Type != "" && a.Type != existing.Type {
		patched.Type = a.Type
	}
	if a.Currency != "" && a.Currency != existing.Currency {
		patched.Currency = a.Currency
	}
	if patched != existing {
		s.accounts[a.ID] = patched
	}
}

// EnsureCategory is EnsureAccount for categories.
func (s *Store) EnsureCategory(c model.Category) {
	existing, ok := s.categories[c.ID]
	if !ok {
		s.categories[c.ID] = c
		s.catOrder = append(s.catOrder, c.ID)
		return
	}
	patched := existing
	if c.Name != "" && c.Name != existing.Name {
		patched.Name = c.Name
	}
	if c.Color != "" && c.Color != existing.Color {
		patched.Color = c.Color
	}
	if c.Type != "" && c.Type != existing.Type {
		patched.Type = c.Type
	}
	if patched != existing {
		s.categories[c.ID] = patched
	}
}

// EnsureDefaults seeds all well-known accounts and categories.
func (s *Store) EnsureDefaults() {
	for _, a := range DefaultAccounts() {
		s.EnsureAccount(a)
	}
	for _, c := range DefaultCategories() {
		s.EnsureCategory(c)
	}
}

// Accounts returns all accounts in creation order.
func (s *Store) Accounts() []model.Account {
	out := make([]model.Account, 0, len(s.acctOrder))
	for _, id := range s.acctOrder {
		out = append(out, s.accounts[id])
	}
	return out
}

// Categories returns all categories in creation order.
func (s *Store) Categories() []model.Category {
	out := make([]model.Category, 0, len(s.catOrder))
	for _, id := range s.catOrder {
		out = append(out, s.categories[id])
	}
	return out
}

// Account returns an account by ID.
func (s *Store) Account(id string) (model.Account, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

// Category returns a category by ID.
func (s *Store) Category(id string) (model.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// ensureReferenced lazily creates well-known accounts/categories the
// first time an entry references them. Unknown IDs are tolerated.
func (s *Store) ensureReferenced(e model.LedgerEntry) {
	if e.AccountID != "" {
		if _, ok := s.accounts[e.AccountID]; !ok {
			if a, known := defaultAccountByID(e.AccountID); known {
				s.EnsureAccount(a)
			} else {
				s.log.Debug().Str("account", e.AccountID).Str("entry", e.ID).Msg("entry references unknown account")
			}
		}
	}
	if e.CategoryID != "" {
		if _, ok := s.categories[e.CategoryID]; !ok {
			if c, known := defaultCategoryByID(e.CategoryID); known {
				s.EnsureCategory(c)
			} else {
				s.log.Debug().Str("category", e.CategoryID).Str("entry", e.ID).Msg("entry references unknown category")
			}
		}
	}
}

func (s *Store) resort() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		if !s.entries[i].Date.Equal(s.entries[j].Date) {
			return s.entries[i].Date.Before(s.entries[j].Date)
		}
		return s.entries[i].CreatedAt.Before(s.entries[j].CreatedAt)
	})
	clear(s.byID)
	for i, e := range s.entries {
		s.byID[e.ID] = i
	}
}

func (s *Store) notify(u Update) {
	for _, fn := range s.observers {
		fn(u)
	}
}
