package services

import (
	"context"
	"fmt"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

// InvoiceProjector derives a credit-card invoice from the account and its
// expense transactions. It never writes.
type InvoiceProjector struct {
	accounts     ledger.AccountStore
	transactions ledger.TransactionStore
}

func NewInvoiceProjector(accounts ledger.AccountStore, transactions ledger.TransactionStore) *InvoiceProjector {
	return &InvoiceProjector{accounts: accounts, transactions: transactions}
}

// Project builds the invoice of accountID, optionally limited to a month
// prefix. Accounts that are not credit cards are reported as not found.
func (p *InvoiceProjector) Project(ctx context.Context, accountID, month string) (core.Invoice, error) {
	acc, err := p.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return core.Invoice{}, err
	}
	if !acc.IsCreditCard() {
		return core.Invoice{}, fmt.Errorf("credit card account %s: %w", accountID, core.ErrNotFound)
	}

	txs, err := p.transactions.ListTransactions(ctx, core.TransactionFilter{
		Type:      core.Expense,
		AccountID: accountID,
		Month:     month,
	})
	if err != nil {
		return core.Invoice{}, fmt.Errorf("list invoice transactions: %w", err)
	}
	return BuildInvoice(acc, txs), nil
}

// BuildInvoice totals the given expenses against the card limit. The
// remaining limit is not clamped and goes negative when the card is over.
func BuildInvoice(acc core.Account, expenses []core.Transaction) core.Invoice {
	total := core.Money{}
	for _, t := range expenses {
		total = total.Add(t.Amount)
	}
	if expenses == nil {
		expenses = []core.Transaction{}
	}
	return core.Invoice{
		AccountID:      acc.ID,
		AccountName:    acc.Name,
		Total:          total,
		CreditLimit:    acc.CreditLimit,
		RemainingLimit: acc.CreditLimit.Sub(total),
		DueDay:         acc.DueDay,
		ClosingDay:     acc.ClosingDay,
		Transactions:   expenses,
	}
}
