package ledger

import "github.com/curdbook/curdbook/internal/model"

// Well-known account and category IDs. Entries reference these by ID;
// the store creates the backing record lazily on first reference.
const (
	AccountCashEUR     = "acct.cash.eur"
	AccountCashUSD     = "acct.cash.usd"
	AccountDebtors     = "acct.debtors"
	AccountExpensesEUR = "acct.expenses.eur"
	AccountExpensesUSD = "acct.expenses.usd"
	AccountOverhead    = "acct.overhead"

	CategoryEventIncome     = "cat.event-income"
	CategoryEventExpense    = "cat.event-expense"
	CategoryPurchaseInvoice = "cat.purchase-invoice"
	CategoryOverhead        = "cat.overhead"
)

// DefaultAccounts returns the well-known chart for a mobile cheese
// stand: cash floats per currency, a debtors account for invoiced
// sales, and expense accounts.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{ID: AccountCashEUR, Name: "Event Cash (EUR)", Type: model.AccountTypeCash, Currency: "EUR"},
		{ID: AccountCashUSD, Name: "Event Cash (USD)", Type: model.AccountTypeCash, Currency: "USD"},
		{ID: AccountDebtors, Name: "Trade Debtors", Type: model.AccountTypeDebtor, Currency: "EUR"},
		{ID: AccountExpensesEUR, Name: "Event Expenses (EUR)", Type: model.AccountTypeExpense, Currency: "EUR"},
		{ID: AccountExpensesUSD, Name: "Event Expenses (USD)", Type: model.AccountTypeExpense, Currency: "USD"},
		{ID: AccountOverhead, Name: "Overhead", Type: model.AccountTypeExpense, Currency: "EUR"},
	}
}

// DefaultCategories returns the well-known category set.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: CategoryEventIncome, Name: "Event income", Type: model.CategoryTypeIncome, Color: "#3a7d44"},
		{ID: CategoryEventExpense, Name: "Event expense", Type: model.CategoryTypeExpense, Color: "#b33a3a"},
		{ID: CategoryPurchaseInvoice, Name: "Purchase invoices", Type: model.CategoryTypeExpense, Color: "#8a6d3b"},
		{ID: CategoryOverhead, Name: "Overhead", Type: model.CategoryTypeExpense, Color: "#5b5b5b"},
	}
}

// CashAccountID maps a currency to its cash account, EUR by default.
func CashAccountID(currency string) string {
	if currency == "USD" {
		return AccountCashUSD
	}
	return AccountCashEUR
}

// ExpenseAccountID maps a currency to its expense account.
func ExpenseAccountID(currency string) string {
	if currency == "USD" {
		return AccountExpensesUSD
	}
	return AccountExpensesEUR
}

func defaultAccountByID(id string) (model.Account, bool) {
	for _, a := range DefaultAccounts() {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

func defaultCategoryByID(id string) (model.Category, bool) {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}
