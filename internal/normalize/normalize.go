// Package normalize converts heterogeneous raw records into canonical
// ledger entries. Input shapes vary by origin (remote snapshots, bridge
// payloads, direct recording calls), so every logical field is resolved
// through an ordered list of candidate keys instead of one fixed
// schema. Everything here is pure: no clock reads, no ID state, no
// store access.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/curdbook/curdbook/internal/id"
	"github.com/curdbook/curdbook/internal/model"
)

// ValidationError marks a record the normalizer cannot turn into a
// ledger entry. Such records are skipped, never queued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
}

// Candidate keys per logical field, tried in order.
var (
	idKeys        = []string{"id", "entryId", "entry_id", "ledgerId", "uuid", "_id"}
	signedKeys    = []string{"signedAmount", "signed_amount", "delta"}
	amountKeys    = []string{"amount", "amountEUR", "amount_eur", "value", "total", "sum"}
	directionKeys = []string{"direction", "type", "kind", "entryType"}
	dateKeys      = []string{"date", "day", "bookedAt", "booked_at", "timestamp"}
	currencyKeys  = []string{"currency", "currencyCode", "ccy"}
	accountKeys   = []string{"accountId", "account_id", "account"}
	categoryKeys  = []string{"categoryId", "category_id", "category"}
	noteKeys      = []string{"note", "description", "memo", "label"}
	referenceKeys = []string{"reference", "ref", "externalRef"}
)

// Direction/type values of the credit-expense family. Anything else
// with an explicit direction key is treated as a debit.
var creditWords = map[string]bool{
	"credit":  true,
	"expense": true,
	"cost":    true,
	"outflow": true,
	"payable": true,
}

var debitWords = map[string]bool{
	"debit":   true,
	"income":  true,
	"revenue": true,
	"inflow":  true,
}

// Entry builds a canonical ledger entry from a raw record, layered over
// a previous version when one exists (updates and snapshot refreshes).
// now is injected by the caller so the function stays deterministic.
func Entry(raw map[string]any, prev *model.LedgerEntry, now time.Time) (model.LedgerEntry, error) {
	if len(raw) == 0 && prev == nil {
		return model.LedgerEntry{}, &ValidationError{Field: "record", Reason: "empty"}
	}

	var e model.LedgerEntry
	if prev != nil {
		e = *prev
		e.Meta = cloneMeta(prev.Meta)
	}

	e.ID = resolveID(raw, prev)

	amount, direction, ok := resolveSignedAmount(raw)
	switch {
	case ok:
		e.Amount = amount
		e.Direction = direction
	case prev != nil:
		// Keep the previous amount when the update doesn't touch it.
	default:
		return model.LedgerEntry{}, &ValidationError{Field: "amount", Reason: "no usable amount field"}
	}

	if d, ok := resolveDate(raw); ok {
		e.Date = d
	} else if e.Date.IsZero() {
		e.Date = truncateDay(now)
	}

	if c, ok := resolveCurrency(raw); ok {
		e.Currency = c
	} else if e.Currency == "" {
		e.Currency = model.DefaultCurrency
	}

	if v, ok := lookupString(raw, accountKeys); ok {
		e.AccountID = v
	}
	if v, ok := lookupString(raw, categoryKeys); ok {
		e.CategoryID = v
	}
	if v, ok := lookupString(raw, noteKeys); ok {
		e.Note = v
	}
	if v, ok := lookupString(raw, referenceKeys); ok {
		e.Reference = v
	}
	if v, ok := raw["pending"].(bool); ok {
		e.Pending = v
	}

	if m, ok := raw["meta"].(map[string]any); ok {
		e.Meta = mergeMeta(e.Meta, m)
	}

	if prev != nil && !prev.CreatedAt.IsZero() {
		e.CreatedAt = prev.CreatedAt
	} else if t, ok := parseTime(raw["createdAt"]); ok {
		e.CreatedAt = t
	} else if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	return e, nil
}

func resolveID(raw map[string]any, prev *model.LedgerEntry) string {
	if v, ok := lookupString(raw, idKeys); ok {
		return v
	}
	if prev != nil && prev.ID != "" {
		return prev.ID
	}
	return id.New()
}

// resolveSignedAmount implements the three-step amount rule: explicit
// signed field first, then an unsigned amount with a direction keyword,
// then the sign of the raw amount itself. The stored amount is always
// abs(value) rounded to cents.
func resolveSignedAmount(raw map[string]any) (decimal.Decimal, model.Direction, bool) {
	if v, ok := lookupDecimal(raw, signedKeys); ok {
		return v.Abs().Round(2), model.DirectionFromSign(v), true
	}

	v, ok := lookupDecimal(raw, amountKeys)
	if !ok {
		return decimal.Decimal{}, "", false
	}

	if word, found := lookupString(raw, directionKeys); found {
		w := strings.ToLower(strings.TrimSpace(word))
		if creditWords[w] {
			return v.Abs().Round(2), model.DirectionCredit, true
		}
		if debitWords[w] {
			return v.Abs().Round(2), model.DirectionDebit, true
		}
	}

	return v.Abs().Round(2), model.DirectionFromSign(v), true
}

func resolveDate(raw map[string]any) (time.Time, bool) {
	for _, key := range dateKeys {
		v, present := raw[key]
		if !present {
			continue
		}
		if t, ok := parseTime(v); ok {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func resolveCurrency(raw map[string]any) (string, bool) {
	v, ok := lookupString(raw, currencyKeys)
	if !ok {
		return "", false
	}
	c := strings.ToUpper(v)
	if len(c) != 3 {
		return model.DefaultCurrency, true
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return model.DefaultCurrency, true
		}
	}
	return c, true
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func lookupString(raw map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, present := raw[key]
		if !present {
			continue
		}
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

func lookupDecimal(raw map[string]any, keys []string) (decimal.Decimal, bool) {
	for _, key := range keys {
		v, present := raw[key]
		if !present {
			continue
		}
		if d, ok := toDecimal(v); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeMeta(existing, incoming map[string]any) map[string]any {
	if existing == nil && len(incoming) == 0 {
		return nil
	}
	out := cloneMeta(existing)
	if out == nil {
		out = make(map[string]any, len(incoming))
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
