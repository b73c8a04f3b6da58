// Package memory is an in-process ledger store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneyflow/internal/core"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]core.Account
	transactions map[string]core.Transaction
	categories   []core.Category
	holdings     []core.StockHolding
	settings     *core.Settings
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]core.Account),
		transactions: make(map[string]core.Transaction),
	}
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok {
		return fmt.Errorf("account %s: %w", a.ID, core.ErrNotFound)
	}
	a.Balance = cur.Balance
	a.OpeningBalance = cur.OpeningBalance
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	delete(s.accounts, id)
	return nil
}

// AdjustBalance applies delta under the store lock, so concurrent
// adjustments of the same account never lose an update.
func (s *Store) AdjustBalance(_ context.Context, id string, delta core.Money) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Money{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	s.accounts[id] = a
	return a.Balance, nil
}

// CheckBalance derives the balance under the store lock, so no adjustment
// can land between the sum and the comparison or the repair.
func (s *Store) CheckBalance(_ context.Context, id string, repair bool) (core.BalanceDrift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.BalanceDrift{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	expected := a.OpeningBalance
	for _, t := range s.transactions {
		if t.AccountID == id {
			expected = expected.Add(t.Effect())
		}
	}
	d := core.BalanceDrift{AccountID: a.ID, AccountName: a.Name, Cached: a.Balance, Expected: expected}
	if repair && !expected.Equal(a.Balance) {
		a.Balance = expected
		s.accounts[id] = a
	}
	return d, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; ok {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	s.transactions[t.ID] = cloneTx(t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return cloneTx(t), nil
}

func (s *Store) ListTransactions(_ context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if f.Matches(t) {
			out = append(out, cloneTx(t))
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	s.transactions[t.ID] = cloneTx(t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
	return nil
}

// ListCategories returns categories in insertion order.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) CreateHolding(_ context.Context, h core.StockHolding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = append(s.holdings, h)
	return nil
}

func (s *Store) ListHoldings(_ context.Context) ([]core.StockHolding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.StockHolding(nil), s.holdings...), nil
}

func (s *Store) DeleteHolding(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.holdings {
		if h.ID == id {
			s.holdings = append(s.holdings[:i], s.holdings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("holding %s: %w", id, core.ErrNotFound)
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return core.Settings{}, fmt.Errorf("settings: %w", core.ErrNotFound)
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &st
	return nil
}

func cloneTx(t core.Transaction) core.Transaction {
	t.Tags = append([]string{}, t.Tags...)
	return t
}
