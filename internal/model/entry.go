package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether an entry increases or decreases the balance
// of its account. Amounts are always non-negative; the sign lives here.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// DefaultCurrency is assumed whenever a record carries no usable
// currency code.
const DefaultCurrency = "EUR"

// LedgerEntry is a single dated monetary record tied to an account and
// a category. It is the canonical row every other component works with.
type LedgerEntry struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"` // truncated to a calendar day
	AccountID  string          `json:"accountId"`
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"` // >= 0, two decimal places
	Direction  Direction       `json:"direction"`
	Currency   string          `json:"currency"`
	Note       string          `json:"note,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Meta       map[string]any  `json:"meta,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Pending    bool            `json:"pending"` // awaiting remote confirmation
}

// SignedAmount returns the amount with the direction applied:
// positive for debits, negative for credits.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionCredit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// DirectionFromSign maps a signed value to a direction: negative
// values decrease the balance.
func DirectionFromSign(v decimal.Decimal) Direction {
	if v.IsNegative() {
		return DirectionCredit
	}
	return DirectionDebit
}
