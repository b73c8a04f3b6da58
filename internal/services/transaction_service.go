package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"moneyflow/internal/amqp"
	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

// ListLimit caps transaction listings.
const ListLimit = 1000

// LedgerPublisher announces transaction mutations to other processes.
type LedgerPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// TransactionService orchestrates transaction writes: the record in the
// store, the balance effect through the Reconciler, and the ledger event.
type TransactionService struct {
	store      ledger.TransactionStore
	reconciler *Reconciler
	publisher  LedgerPublisher
	now        func() time.Time
}

// NewTransactionService wires the service. publisher may be nil.
func NewTransactionService(store ledger.TransactionStore, reconciler *Reconciler, publisher LedgerPublisher) *TransactionService {
	return &TransactionService{
		store:      store,
		reconciler: reconciler,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionService) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.Limit <= 0 || f.Limit > ListLimit {
		f.Limit = ListLimit
	}
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Create persists a transaction then applies its effect.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t := in.Transaction(uuid.NewString(), s.now())
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	if err := s.reconciler.Apply(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("apply transaction %s: %w", t.ID, err)
	}

	s.publish(ctx, amqp.TransactionCreated, t)
	return t, nil
}

// Update replaces the transaction with id. The old effect is reversed and
// the new one applied before the record itself is rewritten; created_at is
// kept from the stored record.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated := in.Transaction(id, old.CreatedAt)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.reconciler.Reapply(ctx, old, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("reapply transaction %s: %w", id, err)
	}
	if err := s.store.UpdateTransaction(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction %s: %w", id, err)
	}

	s.publish(ctx, amqp.TransactionUpdated, updated)
	return updated, nil
}

// Delete reverses the effect of the transaction then removes it.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.reconciler.Unapply(ctx, old); err != nil {
		return fmt.Errorf("unapply transaction %s: %w", id, err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.publish(ctx, amqp.TransactionDeleted, old)
	return nil
}

// publish never fails the request: the ledger is already consistent.
func (s *TransactionService) publish(ctx context.Context, event amqp.EventType, t core.Transaction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No ledger publisher configured, skipping event", "event", event)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(event, t.ID, t.AccountID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event", event,
			"transaction_id", t.ID,
			"error", err)
	}
}
