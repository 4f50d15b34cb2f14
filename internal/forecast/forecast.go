// Package forecast computes multi-month cashflow projections from the
// finance state and the event catalog. Everything is derived on
// demand; no result is persisted. All figures are EUR.
package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/curdbook/curdbook/internal/fx"
	"github.com/curdbook/curdbook/internal/model"
)

// DefaultOverheadFraction is the share of gross event revenue reserved
// for fixed overhead. Inherited from long-standing operator practice;
// callers can override it per projection.
var DefaultOverheadFraction = decimal.NewFromFloat(0.30)

const (
	minMonths = 1
	maxMonths = 12
	monthKey  = "2006-01"
)

// Params controls one projection run.
type Params struct {
	Months           int
	StartMonth       time.Time // zero means the current month
	OpeningBalance   decimal.Decimal
	OverheadFraction decimal.Decimal
	Overrides        []model.ScenarioOverride
	Now              time.Time // zero means time.Now(); injected in tests
}

// Result is an ordered list of month buckets plus aggregate totals of
// open positions.
type Result struct {
	Months             []model.MonthProjection
	OpenReceivablesEUR decimal.Decimal
	OpenPayablesEUR    decimal.Decimal
}

// DefaultParams returns Params for a six-month projection with the
// standard overhead fraction.
func DefaultParams() Params {
	return Params{Months: 6, OverheadFraction: DefaultOverheadFraction}
}

// Project computes baseline and scenario balances over consecutive
// month buckets. Baseline uses confirmed data only; scenario adds
// hypothetical event revenue from the overrides.
func Project(p Params, fin *model.FinanceState, events []model.Event) Result {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	start := p.StartMonth
	if start.IsZero() {
		start = now
	}
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.Local)

	n := p.Months
	if n < minMonths {
		n = minMonths
	}
	if n > maxMonths {
		n = maxMonths
	}

	baseline := make([]decimal.Decimal, n)
	scenario := make([]decimal.Decimal, n)
	addBoth := func(idx int, v decimal.Decimal) {
		baseline[idx] = baseline[idx].Add(v)
		scenario[idx] = scenario[idx].Add(v)
	}

	// bucketFor clamps undated and pre-window dates to the first
	// bucket; dates past the window return -1 and are skipped.
	bucketFor := func(t time.Time) int {
		if t.IsZero() {
			return 0
		}
		idx := monthsBetween(start, t)
		if idx < 0 {
			return 0
		}
		if idx >= n {
			return -1
		}
		return idx
	}

	var openReceivables, openPayables decimal.Decimal
	for _, ob := range fin.Receivables {
		if ob.Status != model.StatusOpen {
			continue
		}
		openReceivables = openReceivables.Add(ob.AmountEUR)
		if idx := bucketFor(ob.DueDate); idx >= 0 {
			addBoth(idx, ob.AmountEUR)
		}
	}
	for _, ob := range fin.Payables {
		if ob.Status != model.StatusOpen {
			continue
		}
		openPayables = openPayables.Add(ob.AmountEUR)
		if idx := bucketFor(ob.DueDate); idx >= 0 {
			addBoth(idx, ob.AmountEUR.Neg())
		}
	}

	for _, fc := range fin.FixedCosts {
		if !fc.Active {
			continue
		}
		fcStart := fc.StartDate
		if fcStart.IsZero() {
			fcStart = now
		}
		startIdx := monthsBetween(start, fcStart)
		if startIdx >= n {
			continue
		}
		if startIdx < 0 {
			startIdx = 0
		}
		for i := startIdx; i < n; i++ {
			if fc.Frequency == model.FrequencyYearly && bucketMonth(start, i) != fcStart.Month() {
				continue
			}
			addBoth(i, fc.AmountEUR.Neg())
		}
	}

	// Months with actual revenue, per event, so overrides never double
	// count a month that already happened.
	actualMonths := make(map[string]map[string]bool)
	for _, ev := range events {
		for _, snap := range EventEconomics(ev, p.OverheadFraction) {
			if actualMonths[ev.ID] == nil {
				actualMonths[ev.ID] = make(map[string]bool)
			}
			actualMonths[ev.ID][snap.MonthKey] = true

			t, err := time.ParseInLocation(monthKey, snap.MonthKey, time.Local)
			if err != nil {
				continue
			}
			idx := monthsBetween(start, t)
			if idx < 0 || idx >= n {
				continue
			}
			addBoth(idx, snap.NetEUR)
		}
	}

	for _, ov := range p.Overrides {
		if ov.StartDate.IsZero() {
			continue
		}
		if actualMonths[ov.EventID][ov.StartDate.Format(monthKey)] {
			continue
		}
		idx := monthsBetween(start, ov.StartDate)
		if idx < 0 || idx >= n {
			continue
		}
		net := hypotheticalNet(ov.ExpectedGrossEUR, ov.CommissionPct, p.OverheadFraction)
		scenario[idx] = scenario[idx].Add(net)
	}

	months := make([]model.MonthProjection, n)
	baseBal := p.OpeningBalance
	scenBal := p.OpeningBalance
	for i := 0; i < n; i++ {
		// Round the running balance at every step, not just at the
		// end, so errors never compound.
		baseBal = baseBal.Add(baseline[i]).Round(2)
		scenBal = scenBal.Add(scenario[i]).Round(2)
		months[i] = model.MonthProjection{
			MonthKey:           start.AddDate(0, i, 0).Format(monthKey),
			BaselineDeltaEUR:   baseline[i].Round(2),
			ScenarioDeltaEUR:   scenario[i].Round(2),
			BaselineBalanceEUR: baseBal,
			ScenarioBalanceEUR: scenBal,
		}
	}

	return Result{
		Months:             months,
		OpenReceivablesEUR: openReceivables.Round(2),
		OpenPayablesEUR:    openPayables.Round(2),
	}
}

// EventEconomics rolls one event up into per-month snapshots: gross
// revenue in EUR, the net contribution after commission and overhead,
// and the event's one-time extra costs attributed entirely to its
// earliest revenue month. Undated revenue entries contribute nothing.
func EventEconomics(ev model.Event, overheadFraction decimal.Decimal) []model.EventEconomicsSnapshot {
	grossByMonth := make(map[string]decimal.Decimal)
	earliest := ""
	for _, rev := range ev.Revenue {
		if rev.Date.IsZero() {
			continue
		}
		key := rev.Date.Format(monthKey)
		grossByMonth[key] = grossByMonth[key].Add(fx.RevenueEUR(rev, ev))
		if earliest == "" || key < earliest {
			earliest = key
		}
	}
	if len(grossByMonth) == 0 {
		return nil
	}

	var extraTotal decimal.Decimal
	for _, cost := range ev.ExtraCosts {
		extraTotal = extraTotal.Add(fx.ExtraCostEUR(cost, ev))
	}

	keys := make([]string, 0, len(grossByMonth))
	for key := range grossByMonth {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	snaps := make([]model.EventEconomicsSnapshot, 0, len(keys))
	for _, key := range keys {
		gross := grossByMonth[key]
		net := hypotheticalNet(gross, ev.CommissionPct, overheadFraction)
		extra := decimal.Zero
		if key == earliest {
			extra = extraTotal
			net = net.Sub(extraTotal)
		}
		snaps = append(snaps, model.EventEconomicsSnapshot{
			EventID:       ev.ID,
			MonthKey:      key,
			GrossEUR:      gross.Round(2),
			CommissionPct: ev.CommissionPct,
			ExtraCostsEUR: extra.Round(2),
			NetEUR:        net.Round(2),
		})
	}
	return snaps
}

// hypotheticalNet is gross x (1 - commission - overhead), without any
// extra-cost term.
func hypotheticalNet(gross, commission, overhead decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(commission).Sub(overhead)
	return gross.Mul(factor).Round(2)
}

func monthsBetween(start, t time.Time) int {
	return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
}

func bucketMonth(start time.Time, i int) time.Month {
	return start.AddDate(0, i, 0).Month()
}
