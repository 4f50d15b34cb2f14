package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tells how money from a revenue entry arrives.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentDebtor  PaymentMethod = "debtor"
	PaymentInvoice PaymentMethod = "invoice"
)

// Event is a single sales event in the catalog: a market day, fair or
// standing pitch where cheese is sold. The catalog itself is owned by
// the surrounding application; this core only reads it and derives
// ledger entries from its revenue and cost records.
type Event struct {
	ID            string
	Name          string
	StartDate     time.Time
	CommissionPct decimal.Decimal // organizer commission as a fraction, e.g. 0.20
	ExchangeRate  decimal.Decimal // event-level USD->EUR rate, zero if unknown
	Revenue       []RevenueEntry
	ExtraCosts    []ExtraCost
}

// RevenueEntry is one day's takings at an event, denominated in one or
// both currencies. When EUR is set it is authoritative; otherwise USD
// is converted through the best available rate.
type RevenueEntry struct {
	ID            string
	Date          time.Time
	USD           decimal.Decimal
	EUR           decimal.Decimal
	Note          string
	Debtor        string
	PaymentMethod PaymentMethod
	ExchangeRate  decimal.Decimal // entry-level USD->EUR rate, zero if unknown
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Pending       bool
}

// ExtraCost is an ad-hoc, one-time cost attached to an event (stall
// fee, transport, spoilage).
type ExtraCost struct {
	ID       string
	Label    string
	Amount   decimal.Decimal
	Currency string
	Date     time.Time
}
