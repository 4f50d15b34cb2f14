// Package finance persists the operator-maintained finance state:
// recurring fixed costs and open debtor/creditor positions. The
// projection engine consumes this state read-only.
package finance

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

// ErrNotFound reports an unknown record ID.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTransition reports a status change other than open->paid.
var ErrInvalidTransition = errors.New("invalid status transition")

const dateFormat = "2006-01-02"

// stateFile is the on-disk YAML layout. Amounts are stored as strings
// so they round-trip exactly.
type stateFile struct {
	FixedCosts  []fixedCostRec  `yaml:"fixed_costs,omitempty"`
	Receivables []obligationRec `yaml:"receivables,omitempty"`
	Payables    []obligationRec `yaml:"payables,omitempty"`
}

type fixedCostRec struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	AmountEUR string `yaml:"amount_eur"`
	Frequency string `yaml:"frequency"`
	StartDate string `yaml:"start_date,omitempty"`
	Active    bool   `yaml:"active"`
}

type obligationRec struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	AmountEUR string `yaml:"amount_eur"`
	DueDate   string `yaml:"due_date,omitempty"`
	Status    string `yaml:"status"`
	Notes     string `yaml:"notes,omitempty"`
}

// Load reads finance state from a YAML file. A missing file is an
// empty state, not an error.
func Load(path string) (*model.FinanceState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &model.FinanceState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading finance state: %w", err)
	}

	var file stateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing finance state: %w", err)
	}

	st := &model.FinanceState{}
	for i, rec := range file.FixedCosts {
		fc, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("fixed cost %d: %w", i, err)
		}
		st.FixedCosts = append(st.FixedCosts, fc)
	}
	for i, rec := range file.Receivables {
		ob, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("receivable %d: %w", i, err)
		}
		st.Receivables = append(st.Receivables, ob)
	}
	for i, rec := range file.Payables {
		ob, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("payable %d: %w", i, err)
		}
		st.Payables = append(st.Payables, ob)
	}
	return st, nil
}

// Save writes finance state to a YAML file.
func Save(path string, st *model.FinanceState) error {
	var file stateFile
	for _, fc := range st.FixedCosts {
		file.FixedCosts = append(file.FixedCosts, fixedCostToRec(fc))
	}
	for _, ob := range st.Receivables {
		file.Receivables = append(file.Receivables, obligationToRec(ob))
	}
	for _, ob := range st.Payables {
		file.Payables = append(file.Payables, obligationToRec(ob))
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling finance state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing finance state: %w", err)
	}
	return nil
}

// MarkReceivablePaid transitions a receivable open->paid. Any other
// transition fails with ErrInvalidTransition.
func MarkReceivablePaid(st *model.FinanceState, id string) error {
	return markPaid(st.Receivables, id)
}

// MarkPayablePaid transitions a payable open->paid.
func MarkPayablePaid(st *model.FinanceState, id string) error {
	return markPaid(st.Payables, id)
}

func markPaid(list []model.Obligation, id string) error {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Status != model.StatusOpen {
			return fmt.Errorf("%s is %s: %w", id, list[i].Status, ErrInvalidTransition)
		}
		list[i].Status = model.StatusPaid
		return nil
	}
	return fmt.Errorf("%s: %w", id, ErrNotFound)
}

func (r fixedCostRec) toModel() (model.FixedCost, error) {
	amount, err := decimal.NewFromString(r.AmountEUR)
	if err != nil {
		return model.FixedCost{}, fmt.Errorf("parsing amount %q: %w", r.AmountEUR, err)
	}
	var start time.Time
	if r.StartDate != "" {
		start, err = time.ParseInLocation(dateFormat, r.StartDate, time.Local)
		if err != nil {
			return model.FixedCost{}, fmt.Errorf("parsing start date %q: %w", r.StartDate, err)
		}
	}
	return model.FixedCost{
		ID:        r.ID,
		Name:      r.Name,
		AmountEUR: amount,
		Frequency: model.Frequency(r.Frequency),
		StartDate: start,
		Active:    r.Active,
	}, nil
}

func (r obligationRec) toModel() (model.Obligation, error) {
	amount, err := decimal.NewFromString(r.AmountEUR)
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing amount %q: %w", r.AmountEUR, err)
	}
	var due time.Time
	if r.DueDate != "" {
		due, err = time.ParseInLocation(dateFormat, r.DueDate, time.Local)
		if err != nil {
			return model.Obligation{}, fmt.Errorf("parsing due date %q: %w", r.DueDate, err)
		}
	}
	status := model.ObligationStatus(r.Status)
	if status == "" {
		status = model.StatusOpen
	}
	return model.Obligation{
		ID:        r.ID,
		Name:      r.Name,
		AmountEUR: amount,
		DueDate:   due,
		Status:    status,
		Notes:     r.Notes,
	}, nil
}

func fixedCostToRec(fc model.FixedCost) fixedCostRec {
	rec := fixedCostRec{
		ID:        fc.ID,
		Name:      fc.Name,
		AmountEUR: fc.AmountEUR.StringFixed(2),
		Frequency: string(fc.Frequency),
		Active:    fc.Active,
	}
	if !fc.StartDate.IsZero() {
		rec.StartDate = fc.StartDate.Format(dateFormat)
	}
	return rec
}

func obligationToRec(ob model.Obligation) obligationRec {
	rec := obligationRec{
		ID:        ob.ID,
		Name:      ob.Name,
		AmountEUR: ob.AmountEUR.StringFixed(2),
		Status:    string(ob.Status),
		Notes:     ob.Notes,
	}
	if !ob.DueDate.IsZero() {
		rec.DueDate = ob.DueDate.Format(dateFormat)
	}
	return rec
}
