package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a fixed cost recurs.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyYearly  Frequency = "yearly"
)

// FixedCost is a recurring overhead item, always denominated in EUR.
// A zero StartDate means "from today".
type FixedCost struct {
	ID        string
	Name      string
	AmountEUR decimal.Decimal
	Frequency Frequency
	StartDate time.Time
	Active    bool
}

// ObligationStatus is the lifecycle of a receivable or payable.
// The only valid transition is open -> paid.
type ObligationStatus string

const (
	StatusOpen ObligationStatus = "open"
	StatusPaid ObligationStatus = "paid"
)

// Obligation is an open debtor (receivable) or creditor (payable)
// position in EUR. A zero DueDate means "undated".
type Obligation struct {
	ID        string
	Name      string
	AmountEUR decimal.Decimal
	DueDate   time.Time
	Status    ObligationStatus
	Notes     string
}

// FinanceState bundles the operator-maintained finance records the
// projection engine reads. It is persisted independently of the ledger.
type FinanceState struct {
	FixedCosts  []FixedCost
	Receivables []Obligation
	Payables    []Obligation
}
