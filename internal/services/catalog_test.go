package services

import (
	"context"
	"errors"
	"testing"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger/memory"
)

func TestAccountServiceUpdateKeepsBalances(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	ctx := context.Background()
	opening := core.NewMoney(250)

	a, err := svc.Create(ctx, core.AccountInput{Name: "Inter", Kind: core.KindBank, Balance: &opening})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.OpeningBalance.Equal(opening) || a.BankName != core.DefaultBankName || a.Currency != core.DefaultCurrency {
		t.Errorf("unexpected defaults %+v", a)
	}

	other := core.NewMoney(1)
	updated, err := svc.Update(ctx, a.ID, core.AccountInput{Name: "Inter PJ", Kind: core.KindBank, Balance: &other})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Inter PJ" || !updated.Balance.Equal(opening) || !updated.OpeningBalance.Equal(opening) {
		t.Errorf("unexpected account after update %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", core.AccountInput{Name: "x", Kind: core.KindCash}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update missing err = %v", err)
	}
	if _, err := svc.Create(ctx, core.AccountInput{Name: "", Kind: core.KindCash}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("empty name err = %v", err)
	}
}

func TestAccountDeleteKeepsTransactions(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	acc := f.account(t, "Temp", 0)

	tx, err := f.txs.Create(ctx, txInput("x", 5, core.Expense, acc.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.accounts.Delete(ctx, acc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.store.GetTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("transaction should survive account deletion: %v", err)
	}
	// The orphan can still be removed without error.
	if err := f.txs.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete orphan: %v", err)
	}
}

func TestCategorySeedIsIdempotent(t *testing.T) {
	svc := NewCategoryService(memory.New())
	ctx := context.Background()

	seeded, n, err := svc.Seed(ctx)
	if err != nil || !seeded || n != len(defaultCategories) {
		t.Fatalf("first Seed = %v, %d, %v", seeded, n, err)
	}
	seeded, n, err = svc.Seed(ctx)
	if err != nil || seeded || n != len(defaultCategories) {
		t.Fatalf("second Seed = %v, %d, %v", seeded, n, err)
	}

	c, err := svc.Create(ctx, core.CategoryInput{Name: "Pets", Type: core.Expense})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Icon != core.DefaultCategoryIcon || c.Color != core.DefaultCategoryColor {
		t.Errorf("unexpected defaults %+v", c)
	}
	if _, err := svc.Create(ctx, core.CategoryInput{Name: "x", Type: "other"}); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("invalid type err = %v", err)
	}
}

func TestSettingsDefaultsAndReplace(t *testing.T) {
	svc := NewSettingsService(memory.New())
	ctx := context.Background()

	st, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st != core.DefaultSettings(SettingsID) {
		t.Errorf("defaults = %+v", st)
	}

	name := "Ana"
	if _, err := svc.Update(ctx, core.SettingsInput{UserName: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	st, _ = svc.Get(ctx)
	if st.UserName != "Ana" || st.Theme != core.DefaultTheme {
		t.Errorf("settings = %+v", st)
	}
}
