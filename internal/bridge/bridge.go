// Package bridge keeps daily-revenue and extra-cost records of the
// event catalog in 1:1 correspondence with derived ledger entries.
// Entry IDs are a deterministic function of the source record, so
// re-deriving the same record always targets the same entry and the
// whole derivation is idempotent.
package bridge

import (
	"context"

	"github.com/curdbook/curdbook/internal/id"
	"github.com/curdbook/curdbook/internal/ledger"
	"github.com/curdbook/curdbook/internal/model"
	"github.com/curdbook/curdbook/internal/syncer"
)

// Derivation kinds, part of the deterministic ID.
const (
	KindRevenue   = "revenue"
	KindExtraCost = "extra-cost"
)

// Bridge derives ledger entries from event records through the sync
// engine, so derived entries get the same local-first persistence
// semantics as directly recorded ones.
type Bridge struct {
	engine *syncer.Engine
}

// New creates a Bridge on top of a sync engine.
func New(engine *syncer.Engine) *Bridge {
	return &Bridge{engine: engine}
}

// RevenueEntryID returns the deterministic ledger entry ID for a
// revenue record.
func RevenueEntryID(eventID, recordID string) string {
	return id.FormatBridgeID(KindRevenue, eventID, recordID)
}

// ExtraCostEntryID returns the deterministic ledger entry ID for an
// extra-cost record.
func ExtraCostEntryID(eventID, recordID string) string {
	return id.FormatBridgeID(KindExtraCost, eventID, recordID)
}

// SyncRevenue derives (or re-derives) the ledger entry for one daily
// revenue record and upserts it.
func (b *Bridge) SyncRevenue(ctx context.Context, ev model.Event, rev model.RevenueEntry, deferRemote bool) (model.LedgerEntry, error) {
	return b.engine.UpsertLedgerEntry(ctx, RevenuePayload(ev, rev), deferRemote)
}

// SyncExtraCost derives the ledger entry for an ad-hoc event cost and
// upserts it.
func (b *Bridge) SyncExtraCost(ctx context.Context, ev model.Event, cost model.ExtraCost, deferRemote bool) (model.LedgerEntry, error) {
	return b.engine.UpsertLedgerEntry(ctx, ExtraCostPayload(ev, cost), deferRemote)
}

// DeleteRevenue removes the ledger entry derived from a revenue
// record. Returns false when no derived entry exists.
func (b *Bridge) DeleteRevenue(ctx context.Context, eventID, recordID string, deferRemote bool) (bool, error) {
	return b.engine.DeleteLedgerEntry(ctx, RevenueEntryID(eventID, recordID), deferRemote)
}

// DeleteExtraCost removes the ledger entry derived from an extra-cost
// record.
func (b *Bridge) DeleteExtraCost(ctx context.Context, eventID, recordID string, deferRemote bool) (bool, error) {
	return b.engine.DeleteLedgerEntry(ctx, ExtraCostEntryID(eventID, recordID), deferRemote)
}

// RevenuePayload builds the raw ledger payload for a revenue record.
// The entry keeps the record's original currency; cash takings land on
// the per-currency cash account, invoiced/debtor takings on the
// debtors account.
func RevenuePayload(ev model.Event, rev model.RevenueEntry) map[string]any {
	amount := rev.EUR
	currency := "EUR"
	if amount.IsZero() && !rev.USD.IsZero() {
		amount = rev.USD
		currency = "USD"
	}

	accountID := ledger.CashAccountID(currency)
	if rev.PaymentMethod == model.PaymentDebtor || rev.PaymentMethod == model.PaymentInvoice {
		accountID = ledger.AccountDebtors
	}

	note := rev.Note
	if note == "" {
		note = ev.Name + " takings"
	}

	meta := map[string]any{
		"source":   "bridge",
		"kind":     KindRevenue,
		"eventId":  ev.ID,
		"recordId": rev.ID,
	}
	if !rev.ExchangeRate.IsZero() {
		meta["exchangeRate"] = rev.ExchangeRate.String()
	}
	if rev.Debtor != "" {
		meta["debtor"] = rev.Debtor
	}

	return map[string]any{
		"id":         RevenueEntryID(ev.ID, rev.ID),
		"date":       rev.Date,
		"amount":     amount,
		"type":       "revenue",
		"currency":   currency,
		"accountId":  accountID,
		"categoryId": ledger.CategoryEventIncome,
		"note":       note,
		"reference":  rev.ID,
		"meta":       meta,
	}
}

// ExtraCostPayload builds the raw ledger payload for an ad-hoc event
// cost: always an expense in its stated currency.
func ExtraCostPayload(ev model.Event, cost model.ExtraCost) map[string]any {
	currency := cost.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	date := cost.Date
	if date.IsZero() {
		date = ev.StartDate
	}

	return map[string]any{
		"id":         ExtraCostEntryID(ev.ID, cost.ID),
		"date":       date,
		"amount":     cost.Amount,
		"type":       "expense",
		"currency":   currency,
		"accountId":  ledger.ExpenseAccountID(currency),
		"categoryId": ledger.CategoryEventExpense,
		"note":       cost.Label,
		"reference":  cost.ID,
		"meta": map[string]any{
			"source":   "bridge",
			"kind":     KindExtraCost,
			"eventId":  ev.ID,
			"recordId": cost.ID,
		},
	}
}
