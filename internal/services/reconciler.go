package services

import (
	"context"
	"errors"
	"fmt"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
	"moneyflow/internal/log"
)

// Reconciler keeps each account's cached balance equal to its opening
// balance plus the effects of the transactions that reference it.
//
// Every adjustment re-reads the account inside the store's atomic
// AdjustBalance and is serialized per account id. A transaction whose
// account does not exist is tolerated: the adjustment is skipped and logged.
type Reconciler struct {
	accounts ledger.AccountStore
	locks    *keyedMutex
	log      *log.StructuredLogger
}

func NewReconciler(accounts ledger.AccountStore) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		locks:    newKeyedMutex(),
		log:      log.NewStructuredLogger(log.Default(log.ComponentReconciler)),
	}
}

// Apply adds the effect of t to its account.
func (r *Reconciler) Apply(ctx context.Context, t core.Transaction) error {
	return r.adjust(ctx, log.OpApply, t, t.Effect())
}

// Unapply removes the effect of t from its account.
func (r *Reconciler) Unapply(ctx context.Context, t core.Transaction) error {
	return r.adjust(ctx, log.OpUnapply, t, t.Reversal())
}

// Reapply moves a transaction from old to updated: the old effect is
// reversed on the old account first, then the new effect is applied to the
// new account. The two steps are not atomic; if the second fails the first
// is not rolled back and Recompute is the repair path.
func (r *Reconciler) Reapply(ctx context.Context, old, updated core.Transaction) error {
	if err := r.adjust(ctx, log.OpReapply, old, old.Reversal()); err != nil {
		return fmt.Errorf("reverse previous effect: %w", err)
	}
	if err := r.adjust(ctx, log.OpReapply, updated, updated.Effect()); err != nil {
		return fmt.Errorf("apply new effect: %w", err)
	}
	return nil
}

func (r *Reconciler) adjust(ctx context.Context, op string, t core.Transaction, delta core.Money) error {
	if t.AccountID == "" {
		r.log.LogSkipped(ctx, op, t)
		return nil
	}

	unlock := r.locks.Lock(t.AccountID)
	defer unlock()

	balance, err := r.accounts.AdjustBalance(ctx, t.AccountID, delta)
	if errors.Is(err, core.ErrNotFound) {
		r.log.LogSkipped(ctx, op, t)
		return nil
	}
	if err != nil {
		return fmt.Errorf("adjust balance of %s: %w", t.AccountID, err)
	}
	r.log.LogAdjustment(ctx, op, t, delta, balance)
	return nil
}

// Recompute derives every account's balance from scratch and reports the
// accounts whose cached balance differs. With repair set, drifted balances
// are overwritten with the derived value.
//
// Each account is summed and compared by the store in one atomic step, so
// adjustments that complete before or after it are never lost. A mutation
// still in flight, with its record written but its balance not yet
// adjusted, shows up as drift; repair it only while writers are stopped.
func (r *Reconciler) Recompute(ctx context.Context, repair bool) ([]core.BalanceDrift, error) {
	accounts, err := r.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var drifts []core.BalanceDrift
	for _, a := range accounts {
		unlock := r.locks.Lock(a.ID)
		d, err := r.accounts.CheckBalance(ctx, a.ID, repair)
		unlock()
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			r.log.LogError(ctx, "Failed to check balance", err, log.OpRecompute,
				log.NewFields().WithAccount(a.ID))
			return drifts, fmt.Errorf("check balance of %s: %w", a.ID, err)
		}
		if d.Expected.Equal(d.Cached) {
			continue
		}
		drifts = append(drifts, d)
	}
	return drifts, nil
}
