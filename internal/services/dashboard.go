package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

type DashboardAggregator struct {
	transactions ledger.TransactionStore
	categories   ledger.CategoryStore
}

func NewDashboardAggregator(transactions ledger.TransactionStore, categories ledger.CategoryStore) *DashboardAggregator {
	return &DashboardAggregator{transactions: transactions, categories: categories}
}

// Summary loads transactions and categories concurrently and summarizes them.
func (d *DashboardAggregator) Summary(ctx context.Context, month string) (core.DashboardSummary, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = d.transactions.ListTransactions(gctx, core.TransactionFilter{Month: month})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cats, err = d.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, err
	}
	return Summarize(txs, cats), nil
}

// Summarize is the pure aggregation behind Summary. Expenses whose category
// id does not resolve are grouped under core.FallbackCategoryName.
func Summarize(txs []core.Transaction, cats []core.Category) core.DashboardSummary {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	s := core.DashboardSummary{
		ExpenseByCategory: make(map[string]core.Money),
		TransactionsCount: len(txs),
	}
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			name, ok := names[t.CategoryID]
			if !ok {
				name = core.FallbackCategoryName
			}
			s.ExpenseByCategory[name] = s.ExpenseByCategory[name].Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}
