package core

import (
	"strings"
	"time"
)

// Request payloads. Optional fields are pointers so that an absent field can
// be told apart from an explicit zero; defaults are applied here, once, at
// the boundary.

const (
	DefaultCurrency      = "BRL"
	DefaultPaymentMethod = "cash"
	DefaultDueDay        = 10
	DefaultClosingDay    = 5
	DefaultBankName      = "Outro"
	DefaultBankIcon      = "bank"
	DefaultCategoryIcon  = "📁"
	DefaultCategoryColor = "#6B7280"
	DefaultUserName      = "Usuário"
	DefaultTheme         = "light"
	DefaultLanguage      = "pt-BR"
)

type (
	TransactionInput struct {
		Description   string          `json:"description"`
		Amount        Money           `json:"amount"`
		Type          TransactionType `json:"type"`
		CategoryID    string          `json:"category_id"`
		AccountID     string          `json:"account_id"`
		Date          string          `json:"date"`
		PaymentMethod *string         `json:"payment_method,omitempty"`
		Tags          []string        `json:"tags,omitempty"`
	}

	AccountInput struct {
		Name        string      `json:"name"`
		Kind        AccountKind `json:"type"`
		Balance     *Money      `json:"balance,omitempty"`
		Currency    *string     `json:"currency,omitempty"`
		CreditLimit *Money      `json:"credit_limit,omitempty"`
		DueDay      *int        `json:"due_day,omitempty"`
		ClosingDay  *int        `json:"closing_day,omitempty"`
		BankName    *string     `json:"bank_name,omitempty"`
		BankIcon    *string     `json:"bank_icon,omitempty"`
	}

	CategoryInput struct {
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Icon  *string         `json:"icon,omitempty"`
		Color *string         `json:"color,omitempty"`
	}

	StockInput struct {
		Symbol        string     `json:"symbol"`
		Quantity      Quantity   `json:"quantity"`
		PurchasePrice Money      `json:"purchase_price"`
		PurchaseDate  string     `json:"purchase_date"`
		AssetType     *AssetType `json:"asset_type,omitempty"`
	}

	SettingsInput struct {
		UserName *string `json:"user_name,omitempty"`
		Currency *string `json:"currency,omitempty"`
		Theme    *string `json:"theme,omitempty"`
		Language *string `json:"language,omitempty"`
	}
)

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Transaction builds the record for in. Tags are trimmed and de-duplicated.
func (in TransactionInput) Transaction(id string, createdAt time.Time) Transaction {
	return Transaction{
		ID:            id,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		Type:          in.Type,
		CategoryID:    in.CategoryID,
		AccountID:     in.AccountID,
		Date:          strings.TrimSpace(in.Date),
		PaymentMethod: orDefault(in.PaymentMethod, DefaultPaymentMethod),
		Tags:          normalizeTags(in.Tags),
		CreatedAt:     createdAt,
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Account builds a new account; the given balance becomes the opening balance.
func (in AccountInput) Account(id string) Account {
	opening := orDefault(in.Balance, Money{})
	a := Account{ID: id, Balance: opening, OpeningBalance: opening}
	in.applyTo(&a)
	return a
}

// ApplyTo overwrites the metadata of a with in. Balances are left untouched.
func (in AccountInput) ApplyTo(a Account) Account {
	in.applyTo(&a)
	return a
}

func (in AccountInput) applyTo(a *Account) {
	a.Name = strings.TrimSpace(in.Name)
	a.Kind = in.Kind
	a.Currency = orDefault(in.Currency, DefaultCurrency)
	a.CreditLimit = orDefault(in.CreditLimit, Money{})
	a.DueDay = orDefault(in.DueDay, DefaultDueDay)
	a.ClosingDay = orDefault(in.ClosingDay, DefaultClosingDay)
	a.BankName = orDefault(in.BankName, DefaultBankName)
	a.BankIcon = orDefault(in.BankIcon, DefaultBankIcon)
}

func (in CategoryInput) Category(id string) Category {
	return Category{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Type:  in.Type,
		Icon:  orDefault(in.Icon, DefaultCategoryIcon),
		Color: orDefault(in.Color, DefaultCategoryColor),
	}
}

func (in StockInput) Holding(id string, createdAt time.Time) StockHolding {
	return StockHolding{
		ID:            id,
		Symbol:        strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  strings.TrimSpace(in.PurchaseDate),
		AssetType:     orDefault(in.AssetType, BRStock),
		CreatedAt:     createdAt,
	}
}

// DefaultSettings is what callers see before anything has been saved.
func DefaultSettings(id string) Settings {
	return Settings{
		ID:       id,
		UserName: DefaultUserName,
		Currency: DefaultCurrency,
		Theme:    DefaultTheme,
		Language: DefaultLanguage,
	}
}

// Settings replaces every field of the stored settings, defaulting absent ones.
func (in SettingsInput) Settings(id string) Settings {
	return Settings{
		ID:       id,
		UserName: orDefault(in.UserName, DefaultUserName),
		Currency: orDefault(in.Currency, DefaultCurrency),
		Theme:    orDefault(in.Theme, DefaultTheme),
		Language: orDefault(in.Language, DefaultLanguage),
	}
}
