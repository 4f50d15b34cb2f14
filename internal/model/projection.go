package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthProjection is one bucket of a cashflow projection. Derived data,
// recomputed on every call, never persisted.
type MonthProjection struct {
	MonthKey           string // "2006-01"
	BaselineDeltaEUR   decimal.Decimal
	ScenarioDeltaEUR   decimal.Decimal
	BaselineBalanceEUR decimal.Decimal
	ScenarioBalanceEUR decimal.Decimal
}

// EventEconomicsSnapshot is the per-event, per-month rollup the
// projection is built from: gross takings, commission, one-time extra
// costs and the resulting net contribution, all in EUR.
type EventEconomicsSnapshot struct {
	EventID       string
	MonthKey      string
	GrossEUR      decimal.Decimal
	CommissionPct decimal.Decimal
	ExtraCostsEUR decimal.Decimal // zero except in the event's first revenue month
	NetEUR        decimal.Decimal
}

// ScenarioOverride adds a hypothetical event contribution to the
// scenario side of a projection. It is ignored when the event already
// has actual revenue in its start month.
type ScenarioOverride struct {
	EventID          string
	StartDate        time.Time
	ExpectedGrossEUR decimal.Decimal
	CommissionPct    decimal.Decimal
}
