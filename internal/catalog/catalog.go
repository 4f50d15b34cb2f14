// Package catalog reads the event catalog from disk. The catalog is
// owned by the surrounding application; this loader exists so the CLI
// can feed events into the bridge and the projection engine.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/curdbook/curdbook/internal/model"
)

const dateFormat = "2006-01-02"

type catalogFile struct {
	Events []eventRec `yaml:"events"`
}

type eventRec struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	StartDate     string       `yaml:"start_date,omitempty"`
	CommissionPct string       `yaml:"commission_pct,omitempty"`
	ExchangeRate  string       `yaml:"exchange_rate,omitempty"`
	Revenue       []revenueRec `yaml:"revenue,omitempty"`
	ExtraCosts    []costRec    `yaml:"extra_costs,omitempty"`
}

type revenueRec struct {
	ID            string `yaml:"id"`
	Date          string `yaml:"date,omitempty"`
	USD           string `yaml:"usd,omitempty"`
	EUR           string `yaml:"eur,omitempty"`
	Note          string `yaml:"note,omitempty"`
	Debtor        string `yaml:"debtor,omitempty"`
	PaymentMethod string `yaml:"payment_method,omitempty"`
	ExchangeRate  string `yaml:"exchange_rate,omitempty"`
}

type costRec struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Amount   string `yaml:"amount"`
	Currency string `yaml:"currency,omitempty"`
	Date     string `yaml:"date,omitempty"`
}

// Load reads events from a YAML file. A missing file is an empty
// catalog.
func Load(path string) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading event catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing event catalog: %w", err)
	}

	events := make([]model.Event, 0, len(file.Events))
	for i, rec := range file.Events {
		ev, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, rec.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r eventRec) toModel() (model.Event, error) {
	ev := model.Event{ID: r.ID, Name: r.Name}

	var err error
	if ev.StartDate, err = optDate(r.StartDate); err != nil {
		return model.Event{}, err
	}
	if ev.CommissionPct, err = optDecimal(r.CommissionPct); err != nil {
		return model.Event{}, err
	}
	if ev.ExchangeRate, err = optDecimal(r.ExchangeRate); err != nil {
		return model.Event{}, err
	}

	for _, rev := range r.Revenue {
		m := model.RevenueEntry{
			ID:            rev.ID,
			Note:          rev.Note,
			Debtor:        rev.Debtor,
			PaymentMethod: model.PaymentMethod(rev.PaymentMethod),
		}
		if m.Date, err = optDate(rev.Date); err != nil {
			return model.Event{}, fmt.Errorf("revenue %s: %w", rev.ID, err)
		}
		if m.USD, err = optDecimal(rev.USD); err != nil {
			return model.Event{}, fmt.Errorf("revenue %s: %w", rev.ID, err)
		}
		if m.EUR, err = optDecimal(rev.EUR); err != nil {
			return model.Event{}, fmt.Errorf("revenue %s: %w", rev.ID, err)
		}
		if m.ExchangeRate, err = optDecimal(rev.ExchangeRate); err != nil {
			return model.Event{}, fmt.Errorf("revenue %s: %w", rev.ID, err)
		}
		ev.Revenue = append(ev.Revenue, m)
	}

	for _, cost := range r.ExtraCosts {
		m := model.ExtraCost{ID: cost.ID, Label: cost.Label, Currency: cost.Currency}
		if m.Amount, err = optDecimal(cost.Amount); err != nil {
			return model.Event{}, fmt.Errorf("cost %s: %w", cost.ID, err)
		}
		if m.Date, err = optDate(cost.Date); err != nil {
			return model.Event{}, fmt.Errorf("cost %s: %w", cost.ID, err)
		}
		ev.ExtraCosts = append(ev.ExtraCosts, m)
	}

	return ev, nil
}

func optDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func optDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
