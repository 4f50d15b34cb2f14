// Package fx converts foreign-currency figures to EUR using the best
// available rate candidate: an entry-level rate, then an event-level
// rate, then a 1:1 fallback. All results are rounded to cents.
package fx

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/curdbook/curdbook/internal/model"
)

var one = decimal.NewFromInt(1)

// Rate picks the conversion rate to EUR for a currency. EUR is always
// 1. Candidates are tried in order; zero rates are skipped.
func Rate(currency string, candidates ...decimal.Decimal) decimal.Decimal {
	if strings.EqualFold(currency, model.DefaultCurrency) {
		return one
	}
	for _, c := range candidates {
		if c.IsPositive() {
			return c
		}
	}
	return one
}

// ToEUR converts amount in currency to EUR through the candidate chain.
func ToEUR(amount decimal.Decimal, currency string, candidates ...decimal.Decimal) decimal.Decimal {
	return amount.Mul(Rate(currency, candidates...)).Round(2)
}

// RevenueEUR returns a revenue entry's gross takings in EUR. An
// explicit EUR figure is authoritative; otherwise the USD figure is
// converted through the entry rate, then the event rate.
func RevenueEUR(rev model.RevenueEntry, ev model.Event) decimal.Decimal {
	if !rev.EUR.IsZero() {
		return rev.EUR.Round(2)
	}
	return ToEUR(rev.USD, "USD", rev.ExchangeRate, ev.ExchangeRate)
}

// ExtraCostEUR returns an event cost in EUR through the event rate.
func ExtraCostEUR(cost model.ExtraCost, ev model.Event) decimal.Decimal {
	return ToEUR(cost.Amount, cost.Currency, ev.ExchangeRate)
}
