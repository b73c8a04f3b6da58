// Package worker mirrors ledger mutations into the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"moneyflow/internal/amqp"
	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
	"moneyflow/internal/sheets"
)

// SyncWorker handles ledger events by rewriting the matching mirror row.
// Events carry ids only, so the current state is always read from storage;
// redelivered or out-of-order events converge on the same row.
type SyncWorker struct {
	transactions ledger.TransactionStore
	categories   ledger.CategoryStore
	accounts     ledger.AccountStore
	mirror       sheets.TransactionMirror
}

func NewSyncWorker(store ledger.Store, mirror sheets.TransactionMirror) *SyncWorker {
	return &SyncWorker{
		transactions: store,
		categories:   store,
		accounts:     store,
		mirror:       mirror,
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event", ev.Event,
		"transaction_id", ev.TransactionID,
		"account_id", ev.AccountID)

	if ev.Event == amqp.TransactionDeleted {
		return w.remove(ctx, ev.TransactionID)
	}

	t, err := w.transactions.GetTransaction(ctx, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted after the event was published; the delete event follows.
		return w.remove(ctx, ev.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", ev.TransactionID, err)
	}

	names, err := w.loadNames(ctx)
	if err != nil {
		return err
	}
	ref, err := w.mirror.Upsert(ctx, names.row(t))
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"transaction_id", t.ID,
		"ref", ref)
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove mirrored transaction %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Mirrored transaction removed", "transaction_id", id)
	return nil
}

// FullResync rewrites every transaction into the mirror and removes rows
// whose transaction no longer exists. It recovers from missed AMQP
// messages or worker downtime.
func (w *SyncWorker) FullResync(ctx context.Context) error {
	txs, err := w.transactions.ListTransactions(ctx, core.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	names, err := w.loadNames(ctx)
	if err != nil {
		return err
	}

	synced, failed := 0, 0
	live := make(map[string]struct{}, len(txs))
	for _, t := range txs {
		live[t.ID] = struct{}{}
		if _, err := w.mirror.Upsert(ctx, names.row(t)); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during resync",
				"transaction_id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	removed := 0
	if reader, ok := w.mirror.(sheets.MirrorReader); ok {
		rows, err := reader.Rows(ctx)
		if err != nil {
			return fmt.Errorf("read mirror rows: %w", err)
		}
		for _, r := range rows {
			if _, ok := live[r.ID]; ok || r.ID == "" {
				continue
			}
			if err := w.mirror.Remove(ctx, r.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to remove stale row",
					"transaction_id", r.ID, "error", err)
				failed++
				continue
			}
			removed++
		}
	}

	slog.InfoContext(ctx, "Full resync completed",
		"total", len(txs),
		"synced", synced,
		"removed", removed,
		"errors", failed)
	if failed > 0 {
		return fmt.Errorf("resync finished with %d errors", failed)
	}
	return nil
}

type nameIndex struct {
	categories map[string]string
	accounts   map[string]string
}

// loadNames reads categories and accounts concurrently.
func (w *SyncWorker) loadNames(ctx context.Context) (nameIndex, error) {
	var (
		cats     []core.Category
		accounts []core.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cats, err = w.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		accounts, err = w.accounts.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nameIndex{}, err
	}

	idx := nameIndex{
		categories: make(map[string]string, len(cats)),
		accounts:   make(map[string]string, len(accounts)),
	}
	for _, c := range cats {
		idx.categories[c.ID] = c.Name
	}
	for _, a := range accounts {
		idx.accounts[a.ID] = a.Name
	}
	return idx, nil
}

func (n nameIndex) row(t core.Transaction) sheets.Row {
	return sheets.RowFromTransaction(t, n.categories[t.CategoryID], n.accounts[t.AccountID])
}
