// Package ledger declares the storage ports of the service. Adapters live in
// ledger/memory (in-process) and storage (SQLite).
package ledger

import (
	"context"

	"moneyflow/internal/core"
)

// Ports for outbound storage adapters. Lookups of a single record return
// core.ErrNotFound when the record is absent.
type (
	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, id string) (core.Account, error)
		ListAccounts(ctx context.Context) ([]core.Account, error)
		// UpdateAccount overwrites metadata. Balance and opening balance are
		// not touched.
		UpdateAccount(ctx context.Context, a core.Account) error
		DeleteAccount(ctx context.Context, id string) error
		// AdjustBalance atomically adds delta to the stored balance and
		// returns the new balance.
		AdjustBalance(ctx context.Context, id string, delta core.Money) (core.Money, error)
		// CheckBalance derives the balance of one account from its opening
		// balance and its transactions and reports it next to the stored
		// one. The sum, the comparison and, with repair set, the overwrite
		// happen in one atomic step of the store.
		CheckBalance(ctx context.Context, id string, repair bool) (core.BalanceDrift, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns matching transactions, newest date first.
		ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) error
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	HoldingStore interface {
		CreateHolding(ctx context.Context, h core.StockHolding) error
		ListHoldings(ctx context.Context) ([]core.StockHolding, error)
		DeleteHolding(ctx context.Context, id string) error
	}

	SettingsStore interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// Store is the full set of ports a backend provides.
	Store interface {
		AccountStore
		TransactionStore
		CategoryStore
		HoldingStore
		SettingsStore
	}
)
