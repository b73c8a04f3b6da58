package core

import "time"

// Read-side projections. None of these are stored; they are computed from
// the current transactions, accounts, categories and holdings on each read.

type DashboardSummary struct {
	TotalIncome       Money            `json:"total_income"`
	TotalExpense      Money            `json:"total_expense"`
	Balance           Money            `json:"balance"`
	ExpenseByCategory map[string]Money `json:"expense_by_category"`
	TransactionsCount int              `json:"transactions_count"`
}

type Invoice struct {
	AccountID      string        `json:"account_id"`
	AccountName    string        `json:"account_name"`
	Total          Money         `json:"total"`
	CreditLimit    Money         `json:"credit_limit"`
	RemainingLimit Money         `json:"remaining_limit"`
	DueDay         int           `json:"due_day"`
	ClosingDay     int           `json:"closing_day"`
	Transactions   []Transaction `json:"transactions"`
}

type StockPosition struct {
	Symbol        string         `json:"symbol"`
	AssetType     AssetType      `json:"asset_type"`
	TotalQuantity Quantity       `json:"total_quantity"`
	TotalInvested Money          `json:"total_invested"`
	AveragePrice  Money          `json:"average_price"`
	Positions     []StockHolding `json:"positions"`
}

// Quote is a point-in-time market price. Note is set when the figures are
// placeholder data rather than a live price.
type Quote struct {
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	AssetType     AssetType `json:"asset_type"`
	Price         Money     `json:"price"`
	Change        Money     `json:"change"`
	ChangePercent Money     `json:"change_percent"`
	Volume        Money     `json:"volume"`
	Currency      string    `json:"currency"`
	Source        string    `json:"source"`
	Note          string    `json:"note,omitempty"`
}

// ExtractedItem is one transaction proposed by the extraction helper.
// It is never persisted by the extractor itself.
type ExtractedItem struct {
	Description          string          `json:"description"`
	Amount               Money           `json:"amount"`
	Type                 TransactionType `json:"type"`
	CategoryName         string          `json:"category_name"`
	CategoryID           string          `json:"category_id"`
	Date                 string          `json:"date"`
	PaymentMethod        string          `json:"payment_method"`
	BankName             string          `json:"bank_name,omitempty"`
	SuggestedAccountID   string          `json:"suggested_account_id,omitempty"`
	SuggestedAccountName string          `json:"suggested_account_name,omitempty"`
}

// BalanceDrift reports an account whose cached balance disagrees with
// its opening balance plus the effects of its transactions.
type BalanceDrift struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Cached      Money  `json:"cached"`
	Expected    Money  `json:"expected"`
}

func (d BalanceDrift) Delta() Money { return d.Expected.Sub(d.Cached) }
