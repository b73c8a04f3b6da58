package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindBank       AccountKind = "bank"
	KindCash       AccountKind = "cash"
	KindCreditCard AccountKind = "credit_card"

	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	BRStock AssetType = "br_stock"
	USStock AssetType = "us_stock"
	Crypto  AssetType = "crypto"
)

// FallbackCategoryName labels expenses whose category no longer resolves.
const FallbackCategoryName = "Outros"

type (
	AccountKind     string
	TransactionType string
	AssetType       string

	// Account holds a cached balance that the reconciler keeps equal to
	// OpeningBalance plus the effect of every transaction referencing it.
	Account struct {
		ID             string      `json:"id"`
		Name           string      `json:"name"`
		Kind           AccountKind `json:"type"`
		Balance        Money       `json:"balance"`
		OpeningBalance Money       `json:"opening_balance"`
		Currency       string      `json:"currency"`
		CreditLimit    Money       `json:"credit_limit"`
		DueDay         int         `json:"due_day"`
		ClosingDay     int         `json:"closing_day"`
		BankName       string      `json:"bank_name"`
		BankIcon       string      `json:"bank_icon"`
	}

	Transaction struct {
		ID            string          `json:"id"`
		Description   string          `json:"description"`
		Amount        Money           `json:"amount"` // magnitude, sign comes from Type
		Type          TransactionType `json:"type"`
		CategoryID    string          `json:"category_id"`
		AccountID     string          `json:"account_id"`
		Date          string          `json:"date"` // ISO YYYY-MM-DD, kept as text
		PaymentMethod string          `json:"payment_method"`
		Tags          []string        `json:"tags"`
		CreatedAt     time.Time       `json:"created_at"`
	}

	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Icon  string          `json:"icon"`
		Color string          `json:"color"`
	}

	StockHolding struct {
		ID            string    `json:"id"`
		Symbol        string    `json:"symbol"`
		Quantity      Quantity  `json:"quantity"`
		PurchasePrice Money     `json:"purchase_price"`
		PurchaseDate  string    `json:"purchase_date"`
		AssetType     AssetType `json:"asset_type"`
		CreatedAt     time.Time `json:"created_at"`
	}

	Settings struct {
		ID       string `json:"id"`
		UserName string `json:"user_name"`
		Currency string `json:"currency"`
		Theme    string `json:"theme"`
		Language string `json:"language"`
	}
)

var (
	// ErrNotFound marks an absent transaction, account or other record
	// where the operation requires it to exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is wrapped by every input validation error.
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: invalid quantity", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrEmptyDate          = fmt.Errorf("%w: empty date", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidKind        = fmt.Errorf("%w: account type must be bank, cash or credit_card", ErrValidation)
	ErrInvalidDay         = fmt.Errorf("%w: day must be between 1 and 31", ErrValidation)
	ErrEmptySymbol        = fmt.Errorf("%w: empty symbol", ErrValidation)
	ErrInvalidAssetType   = fmt.Errorf("%w: asset type must be br_stock, us_stock or crypto", ErrValidation)
	ErrEmptyText          = fmt.Errorf("%w: empty text", ErrValidation)
)

func (t TransactionType) Valid() bool { return t == Income || t == Expense }

func (k AccountKind) Valid() bool {
	switch k {
	case KindBank, KindCash, KindCreditCard:
		return true
	}
	return false
}

func (a AssetType) Valid() bool {
	switch a {
	case BRStock, USStock, Crypto:
		return true
	}
	return false
}

// Effect is the signed delta t applies to its account balance.
func (t Transaction) Effect() Money {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Reversal is the delta that undoes t.
func (t Transaction) Reversal() Money {
	return t.Effect().Neg()
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	return nil
}

func (a Account) IsCreditCard() bool { return a.Kind == KindCreditCard }

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Kind.Valid() {
		return ErrInvalidKind
	}
	if a.DueDay < 1 || a.DueDay > 31 || a.ClosingDay < 1 || a.ClosingDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (h StockHolding) Validate() error {
	if strings.TrimSpace(h.Symbol) == "" {
		return ErrEmptySymbol
	}
	if !h.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if h.PurchasePrice.IsNegative() {
		return ErrInvalidAmount
	}
	if !h.AssetType.Valid() {
		return ErrInvalidAssetType
	}
	return nil
}

// MatchesMonth reports whether an ISO date string falls in month ("YYYY-MM").
// It is a plain prefix test: an empty month matches everything and any date
// text starting with the given prefix matches, well-formed or not.
func MatchesMonth(date, month string) bool {
	return month == "" || strings.HasPrefix(date, month)
}

// TransactionFilter narrows a transaction listing. Empty fields match all.
type TransactionFilter struct {
	Type       TransactionType
	CategoryID string
	AccountID  string
	Month      string
	Limit      int // 0 means unlimited
}

func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	return MatchesMonth(t.Date, f.Month)
}
