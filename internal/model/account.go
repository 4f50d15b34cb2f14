package model

// AccountType classifies accounts in the simplified chart used by the
// ledger. There is no equity side; the model is single-row, not
// double-entry.
type AccountType string

const (
	AccountTypeCash    AccountType = "cash"
	AccountTypeDebtor  AccountType = "debtor"
	AccountTypeExpense AccountType = "expense"
)

// Account is a lookup dimension for entries. Entries reference it by
// ID only; a dangling reference is tolerated, never fatal.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	Currency string      `json:"currency,omitempty"`
	Color    string      `json:"color,omitempty"`
}

// CategoryType classifies categories by the side of the business they
// describe.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is the second lookup dimension, same weak-reference rules
// as Account.
type Category struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Color string       `json:"color,omitempty"`
}
