package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

// SettingsID is the key of the single settings record.
const SettingsID = "settings"

// AccountService manages account metadata. Balances are owned by the
// Reconciler and are never written here after creation.
type AccountService struct {
	store ledger.AccountStore
}

func NewAccountService(store ledger.AccountStore) *AccountService {
	return &AccountService{store: store}
}

func (s *AccountService) List(ctx context.Context) ([]core.Account, error) {
	as, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if as == nil {
		as = []core.Account{}
	}
	return as, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) Create(ctx context.Context, in core.AccountInput) (core.Account, error) {
	a := in.Account(uuid.NewString())
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	return a, nil
}

// Update rewrites account metadata; a balance in the input is ignored.
func (s *AccountService) Update(ctx context.Context, id string, in core.AccountInput) (core.Account, error) {
	cur, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	a := in.ApplyTo(cur)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("save account %s: %w", id, err)
	}
	return a, nil
}

// Delete removes the account. Transactions that reference it are kept and
// from then on are skipped by the Reconciler.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteAccount(ctx, id)
}

type CategoryService struct {
	store ledger.CategoryStore
}

func NewCategoryService(store ledger.CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cs, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cs == nil {
		cs = []core.Category{}
	}
	return cs, nil
}

func (s *CategoryService) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c := in.Category(uuid.NewString())
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

var defaultCategories = []core.CategoryInput{
	{Name: "Alimentação", Type: core.Expense, Icon: ptr("🍔"), Color: ptr("#EF4444")},
	{Name: "Transporte", Type: core.Expense, Icon: ptr("🚗"), Color: ptr("#F59E0B")},
	{Name: "Moradia", Type: core.Expense, Icon: ptr("🏠"), Color: ptr("#10B981")},
	{Name: "Saúde", Type: core.Expense, Icon: ptr("💊"), Color: ptr("#06B6D4")},
	{Name: "Educação", Type: core.Expense, Icon: ptr("📚"), Color: ptr("#8B5CF6")},
	{Name: "Lazer", Type: core.Expense, Icon: ptr("🎮"), Color: ptr("#EC4899")},
	{Name: "Compras", Type: core.Expense, Icon: ptr("🛍️"), Color: ptr("#F97316")},
	{Name: "Outros", Type: core.Expense, Icon: ptr("📦"), Color: ptr("#6B7280")},
	{Name: "Salário", Type: core.Income, Icon: ptr("💰"), Color: ptr("#10B981")},
	{Name: "Freelance", Type: core.Income, Icon: ptr("💼"), Color: ptr("#3B82F6")},
	{Name: "Investimentos", Type: core.Income, Icon: ptr("📈"), Color: ptr("#8B5CF6")},
	{Name: "Outros", Type: core.Income, Icon: ptr("💵"), Color: ptr("#10B981")},
}

// Seed inserts the default categories when none exist. It returns whether
// anything was inserted and the resulting category count.
func (s *CategoryService) Seed(ctx context.Context) (bool, int, error) {
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return false, len(existing), nil
	}
	for _, in := range defaultCategories {
		if err := s.store.CreateCategory(ctx, in.Category(uuid.NewString())); err != nil {
			return false, 0, fmt.Errorf("seed category %s: %w", in.Name, err)
		}
	}
	return true, len(defaultCategories), nil
}

type SettingsService struct {
	store ledger.SettingsStore
}

func NewSettingsService(store ledger.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the stored settings or the defaults when nothing was saved.
func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	st, err := s.store.GetSettings(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return core.DefaultSettings(SettingsID), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) Update(ctx context.Context, in core.SettingsInput) (core.Settings, error) {
	st := in.Settings(SettingsID)
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return st, nil
}

func ptr[T any](v T) *T { return &v }
