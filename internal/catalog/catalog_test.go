package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curdbook/curdbook/internal/model"
)

const sampleCatalog = `events:
  - id: ev-1
    name: Spring fair
    start_date: 2025-03-01
    commission_pct: "0.20"
    exchange_rate: "0.90"
    revenue:
      - id: r-1
        date: 2025-03-01
        eur: "240.00"
        payment_method: cash
      - id: r-2
        date: 2025-03-02
        usd: "120.00"
        payment_method: debtor
        debtor: Bistro Anna
    extra_costs:
      - id: c-1
        label: stall fee
        amount: "35.00"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	events, err := Load(path)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "Spring fair", ev.Name)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), ev.StartDate)
	assert.True(t, ev.CommissionPct.Equal(decimal.RequireFromString("0.20")))

	require.Len(t, ev.Revenue, 2)
	assert.True(t, ev.Revenue[0].EUR.Equal(decimal.RequireFromString("240.00")))
	assert.Equal(t, model.PaymentCash, ev.Revenue[0].PaymentMethod)
	assert.Equal(t, "Bistro Anna", ev.Revenue[1].Debtor)
	assert.True(t, ev.Revenue[1].USD.Equal(decimal.RequireFromString("120.00")))

	require.Len(t, ev.ExtraCosts, 1)
	assert.Equal(t, "stall fee", ev.ExtraCosts[0].Label)
}

func TestLoad_MissingFileIsEmptyCatalog(t *testing.T) {
	events, err := Load(filepath.Join(t.TempDir(), "events.yaml"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoad_BadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events:\n  - id: ev-1\n    start_date: someday\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ev-1")
}
