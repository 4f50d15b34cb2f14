package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curdbook/curdbook/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// params pins the clock so buckets are deterministic.
func params(months int) Params {
	return Params{
		Months:           months,
		StartMonth:       date(2025, time.January, 1),
		OverheadFraction: DefaultOverheadFraction,
		Now:              date(2025, time.January, 10),
	}
}

func balances(r Result) []string {
	out := make([]string, len(r.Months))
	for i, m := range r.Months {
		out[i] = m.BaselineBalanceEUR.StringFixed(2)
	}
	return out
}

func TestProject_EmptyStateHoldsOpeningBalance(t *testing.T) {
	p := params(6)
	p.OpeningBalance = dec("1000")

	r := Project(p, &model.FinanceState{}, nil)

	require.Len(t, r.Months, 6)
	for _, m := range r.Months {
		assert.True(t, m.BaselineBalanceEUR.Equal(dec("1000")), m.MonthKey)
		assert.True(t, m.ScenarioBalanceEUR.Equal(dec("1000")), m.MonthKey)
		assert.True(t, m.BaselineDeltaEUR.IsZero())
	}
	assert.Equal(t, "2025-01", r.Months[0].MonthKey)
	assert.Equal(t, "2025-06", r.Months[5].MonthKey)
}

func TestProject_MonthsClamped(t *testing.T) {
	p := params(0)
	r := Project(p, &model.FinanceState{}, nil)
	assert.Len(t, r.Months, 1)

	p = params(99)
	r = Project(p, &model.FinanceState{}, nil)
	assert.Len(t, r.Months, 12)
}

func TestProject_SinglePayable(t *testing.T) {
	fin := &model.FinanceState{
		Payables: []model.Obligation{
			{ID: "p-1", AmountEUR: dec("500"), DueDate: date(2025, time.March, 10), Status: model.StatusOpen},
		},
	}

	r := Project(params(6), fin, nil)

	assert.Equal(t, []string{"0.00", "0.00", "-500.00", "-500.00", "-500.00", "-500.00"}, balances(r))
	assert.True(t, r.OpenPayablesEUR.Equal(dec("500")))
}

func TestProject_ReceivableInDueMonth(t *testing.T) {
	fin := &model.FinanceState{
		Receivables: []model.Obligation{
			{ID: "r-1", AmountEUR: dec("300"), DueDate: date(2025, time.February, 20), Status: model.StatusOpen},
			{ID: "r-2", AmountEUR: dec("100"), Status: model.StatusOpen},                                       // undated: first bucket
			{ID: "r-3", AmountEUR: dec("50"), DueDate: date(2024, time.November, 1), Status: model.StatusOpen}, // pre-window: first bucket
			{ID: "r-4", AmountEUR: dec("999"), DueDate: date(2025, time.February, 1), Status: model.StatusPaid},
		},
	}

	r := Project(params(3), fin, nil)

	assert.True(t, r.Months[0].BaselineDeltaEUR.Equal(dec("150")))
	assert.True(t, r.Months[1].BaselineDeltaEUR.Equal(dec("300")), "paid receivables are ignored")
	assert.True(t, r.OpenReceivablesEUR.Equal(dec("450")))
}

func TestProject_MonthlyFixedCost(t *testing.T) {
	fin := &model.FinanceState{
		FixedCosts: []model.FixedCost{
			{ID: "fc-1", AmountEUR: dec("100"), Frequency: model.FrequencyMonthly, StartDate: date(2025, time.January, 1), Active: true},
		},
	}

	r := Project(params(3), fin, nil)

	for _, m := range r.Months {
		assert.True(t, m.BaselineDeltaEUR.Equal(dec("-100")), m.MonthKey)
	}
}

func TestProject_FixedCostStartAndFrequency(t *testing.T) {
	fin := &model.FinanceState{
		FixedCosts: []model.FixedCost{
			{ID: "later", AmountEUR: dec("10"), Frequency: model.FrequencyMonthly, StartDate: date(2025, time.March, 1), Active: true},
			{ID: "weekly", AmountEUR: dec("5"), Frequency: model.FrequencyWeekly, StartDate: date(2025, time.February, 1), Active: true},
			{ID: "yearly", AmountEUR: dec("120"), Frequency: model.FrequencyYearly, StartDate: date(2024, time.April, 1), Active: true},
			{ID: "inactive", AmountEUR: dec("999"), Frequency: model.FrequencyMonthly, Active: false},
		},
	}

	r := Project(params(6), fin, nil)

	deltas := make([]string, 6)
	for i, m := range r.Months {
		deltas[i] = m.BaselineDeltaEUR.StringFixed(2)
	}
	// Jan: nothing. Feb: weekly 5. Mar: 10+5. Apr: 10+5+120 (yearly hits
	// its anniversary month). May, Jun: 15.
	assert.Equal(t, []string{"0.00", "-5.00", "-15.00", "-135.00", "-15.00", "-15.00"}, deltas)
}

func TestProject_EventActualRevenue(t *testing.T) {
	ev := model.Event{
		ID:            "ev-1",
		Name:          "Spring fair",
		StartDate:     date(2025, time.January, 15),
		CommissionPct: dec("0.20"),
		Revenue: []model.RevenueEntry{
			{ID: "r-1", Date: date(2025, time.February, 8), EUR: dec("600")},
			{ID: "r-2", Date: date(2025, time.February, 9), EUR: dec("400")},
		},
		ExtraCosts: []model.ExtraCost{
			{ID: "c-1", Amount: dec("50"), Currency: "EUR"},
		},
	}

	r := Project(params(3), &model.FinanceState{}, []model.Event{ev})

	// net = 1000 x (1 - 0.20 - 0.30) - 50 = 450, in February only.
	assert.True(t, r.Months[0].BaselineDeltaEUR.IsZero())
	assert.True(t, r.Months[1].BaselineDeltaEUR.Equal(dec("450")), r.Months[1].BaselineDeltaEUR.String())
	assert.True(t, r.Months[1].ScenarioDeltaEUR.Equal(dec("450")))
	assert.True(t, r.Months[2].BaselineDeltaEUR.IsZero())
}

func TestProject_ExtraCostOnlyInEarliestRevenueMonth(t *testing.T) {
	ev := model.Event{
		ID:            "ev-1",
		CommissionPct: dec("0"),
		Revenue: []model.RevenueEntry{
			{ID: "r-1", Date: date(2025, time.January, 10), EUR: dec("100")},
			{ID: "r-2", Date: date(2025, time.March, 10), EUR: dec("100")},
		},
		ExtraCosts: []model.ExtraCost{{ID: "c-1", Amount: dec("30"), Currency: "EUR"}},
	}

	p := params(3)
	p.OverheadFraction = decimal.Zero
	r := Project(p, &model.FinanceState{}, []model.Event{ev})

	assert.True(t, r.Months[0].BaselineDeltaEUR.Equal(dec("70")), "extra cost amortized here")
	assert.True(t, r.Months[2].BaselineDeltaEUR.Equal(dec("100")), "never repeated")
}

func TestProject_ScenarioOverride(t *testing.T) {
	ov := model.ScenarioOverride{
		EventID:          "ev-new",
		StartDate:        date(2025, time.March, 1),
		ExpectedGrossEUR: dec("2000"),
		CommissionPct:    dec("0.10"),
	}

	p := params(3)
	p.Overrides = []model.ScenarioOverride{ov}
	r := Project(p, &model.FinanceState{}, nil)

	// Hypothetical net = 2000 x (1 - 0.10 - 0.30) = 1200, scenario only.
	assert.True(t, r.Months[2].BaselineDeltaEUR.IsZero())
	assert.True(t, r.Months[2].ScenarioDeltaEUR.Equal(dec("1200")), r.Months[2].ScenarioDeltaEUR.String())
	assert.True(t, r.Months[2].ScenarioBalanceEUR.Equal(dec("1200")))
}

func TestProject_OverrideNeverDoubleCountsActualMonth(t *testing.T) {
	ev := model.Event{
		ID:            "ev-1",
		CommissionPct: dec("0.20"),
		Revenue: []model.RevenueEntry{
			{ID: "r-1", Date: date(2025, time.February, 8), EUR: dec("1000")},
		},
	}
	ov := model.ScenarioOverride{
		EventID:          "ev-1",
		StartDate:        date(2025, time.February, 1),
		ExpectedGrossEUR: dec("1000"),
		CommissionPct:    dec("0.20"),
	}

	p := params(3)
	p.Overrides = []model.ScenarioOverride{ov}
	r := Project(p, &model.FinanceState{}, []model.Event{ev})

	// Scenario carries the actual contribution once, nothing more.
	assert.True(t, r.Months[1].ScenarioDeltaEUR.Equal(r.Months[1].BaselineDeltaEUR))
}

func TestProject_UndatedRevenueContributesNothing(t *testing.T) {
	ev := model.Event{
		ID:      "ev-1",
		Revenue: []model.RevenueEntry{{ID: "r-1", EUR: dec("500")}},
	}

	r := Project(params(3), &model.FinanceState{}, []model.Event{ev})
	for _, m := range r.Months {
		assert.True(t, m.BaselineDeltaEUR.IsZero())
	}
}

func TestProject_USDRevenueConverted(t *testing.T) {
	ev := model.Event{
		ID:            "ev-1",
		ExchangeRate:  dec("0.90"),
		CommissionPct: dec("0"),
		Revenue: []model.RevenueEntry{
			{ID: "r-1", Date: date(2025, time.January, 5), USD: dec("1000")},
		},
	}

	p := params(1)
	p.OverheadFraction = decimal.Zero
	r := Project(p, &model.FinanceState{}, []model.Event{ev})

	assert.True(t, r.Months[0].BaselineDeltaEUR.Equal(dec("900")), r.Months[0].BaselineDeltaEUR.String())
}

func TestProject_BalancesRoundedEveryStep(t *testing.T) {
	fin := &model.FinanceState{
		FixedCosts: []model.FixedCost{
			{ID: "fc-1", AmountEUR: dec("33.335"), Frequency: model.FrequencyMonthly, StartDate: date(2025, time.January, 1), Active: true},
		},
	}

	r := Project(params(3), fin, nil)
	for _, m := range r.Months {
		assert.True(t, m.BaselineBalanceEUR.Equal(m.BaselineBalanceEUR.Round(2)))
	}
}

func TestEventEconomics(t *testing.T) {
	ev := model.Event{
		ID:            "ev-1",
		CommissionPct: dec("0.20"),
		Revenue: []model.RevenueEntry{
			{ID: "r-1", Date: date(2025, time.February, 8), EUR: dec("600")},
			{ID: "r-2", Date: date(2025, time.February, 9), EUR: dec("400")},
			{ID: "r-3", Date: date(2025, time.March, 1), EUR: dec("200")},
		},
		ExtraCosts: []model.ExtraCost{{ID: "c-1", Amount: dec("50"), Currency: "EUR"}},
	}

	snaps := EventEconomics(ev, DefaultOverheadFraction)
	require.Len(t, snaps, 2)

	feb := snaps[0]
	assert.Equal(t, "2025-02", feb.MonthKey)
	assert.True(t, feb.GrossEUR.Equal(dec("1000")))
	assert.True(t, feb.ExtraCostsEUR.Equal(dec("50")))
	assert.True(t, feb.NetEUR.Equal(dec("450")))

	mar := snaps[1]
	assert.Equal(t, "2025-03", mar.MonthKey)
	assert.True(t, mar.ExtraCostsEUR.IsZero())
	assert.True(t, mar.NetEUR.Equal(dec("100")), mar.NetEUR.String())
}

func TestEventEconomics_NoRevenue(t *testing.T) {
	assert.Nil(t, EventEconomics(model.Event{ID: "ev-1"}, DefaultOverheadFraction))
}
