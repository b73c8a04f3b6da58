package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransactionEffect(t *testing.T) {
	cases := []struct {
		typ  TransactionType
		want string
	}{
		{Income, "100"},
		{Expense, "-100"},
	}
	for _, tc := range cases {
		tx := Transaction{Amount: NewMoney(100), Type: tc.typ}
		if got := tx.Effect().String(); got != tc.want {
			t.Fatalf("%s: expected effect %s, got %s", tc.typ, tc.want, got)
		}
		if !tx.Effect().Add(tx.Reversal()).IsZero() {
			t.Fatalf("%s: reversal does not cancel effect", tc.typ)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Description: "Lunch", Amount: NewMoney(10), Type: Expense, Date: "2024-03-10"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
		{"negative amount", func(tx *Transaction) { tx.Amount = NewMoney(-1) }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"no date", func(tx *Transaction) { tx.Date = "" }, ErrEmptyDate},
	}
	for _, tc := range cases {
		tx := valid
		tc.mod(&tx)
		err := tx.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	zero := valid
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}
}

func TestMatchesMonth(t *testing.T) {
	cases := []struct {
		date, month string
		want        bool
	}{
		{"2024-03-10", "2024-03", true},
		{"2024-04-01", "2024-03", false},
		{"2024-03-10", "", true},
		{"2024-03-10", "2024", true},
		{"garbage", "2024-03", false},
	}
	for _, tc := range cases {
		if got := MatchesMonth(tc.date, tc.month); got != tc.want {
			t.Fatalf("MatchesMonth(%q, %q) = %v, want %v", tc.date, tc.month, got, tc.want)
		}
	}
}

func TestTransactionInputDefaults(t *testing.T) {
	in := TransactionInput{
		Description: " Coffee ",
		Amount:      NewMoney(5),
		Type:        Expense,
		Date:        "2024-03-10",
		Tags:        []string{"food", " food", "", "morning"},
	}
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	tx := in.Transaction("id-1", now)
	if tx.Description != "Coffee" {
		t.Fatalf("description not trimmed: %q", tx.Description)
	}
	if tx.PaymentMethod != DefaultPaymentMethod {
		t.Fatalf("expected default payment method, got %q", tx.PaymentMethod)
	}
	if len(tx.Tags) != 2 || tx.Tags[0] != "food" || tx.Tags[1] != "morning" {
		t.Fatalf("unexpected tags %v", tx.Tags)
	}
	if !tx.CreatedAt.Equal(now) {
		t.Fatalf("created_at not set")
	}
}

func TestAccountInput(t *testing.T) {
	opening := NewMoney(250)
	a := AccountInput{Name: "Nubank", Kind: KindCreditCard, Balance: &opening}.Account("acc-1")
	if a.DueDay != DefaultDueDay || a.ClosingDay != DefaultClosingDay {
		t.Fatalf("unexpected days %d/%d", a.DueDay, a.ClosingDay)
	}
	if !a.Balance.Equal(opening) || !a.OpeningBalance.Equal(opening) {
		t.Fatalf("opening balance not applied: %+v", a)
	}
	if a.Currency != DefaultCurrency || a.BankName != DefaultBankName || a.BankIcon != DefaultBankIcon {
		t.Fatalf("defaults not applied: %+v", a)
	}

	a.Balance = NewMoney(-40)
	limit := NewMoney(1000)
	updated := AccountInput{Name: "Nubank Gold", Kind: KindCreditCard, CreditLimit: &limit, Balance: &limit}.ApplyTo(a)
	if !updated.Balance.Equal(NewMoney(-40)) {
		t.Fatalf("metadata update must not touch balance, got %s", updated.Balance)
	}
	if updated.Name != "Nubank Gold" || !updated.CreditLimit.Equal(limit) {
		t.Fatalf("metadata not applied: %+v", updated)
	}
}

func TestAccountValidate(t *testing.T) {
	a := AccountInput{Name: "Wallet", Kind: KindCash}.Account("x")
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	a.Kind = "savings"
	if !errors.Is(a.Validate(), ErrInvalidKind) {
		t.Fatal("expected invalid kind")
	}
	a.Kind = KindCash
	a.DueDay = 32
	if !errors.Is(a.Validate(), ErrInvalidDay) {
		t.Fatal("expected invalid day")
	}
}

func TestStockHoldingValidate(t *testing.T) {
	h := StockInput{Symbol: "petr4", Quantity: NewQuantity(10), PurchasePrice: NewMoney(30)}.Holding("h", time.Now())
	if h.Symbol != "PETR4" || h.AssetType != BRStock {
		t.Fatalf("unexpected holding %+v", h)
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	h.Quantity = Quantity{}
	if !errors.Is(h.Validate(), ErrInvalidQuantity) {
		t.Fatal("expected invalid quantity")
	}
}

func TestTransactionFilter(t *testing.T) {
	tx := Transaction{Type: Expense, CategoryID: "c1", AccountID: "a1", Date: "2024-03-10"}
	cases := []struct {
		f    TransactionFilter
		want bool
	}{
		{TransactionFilter{}, true},
		{TransactionFilter{Type: Expense, Month: "2024-03"}, true},
		{TransactionFilter{Type: Income}, false},
		{TransactionFilter{CategoryID: "c2"}, false},
		{TransactionFilter{AccountID: "a1", Month: "2024-04"}, false},
	}
	for i, tc := range cases {
		if got := tc.f.Matches(tx); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}
