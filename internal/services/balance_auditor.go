package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneyflow/internal/core"
	"moneyflow/internal/log"
)

// BalanceAuditorConfig holds configuration for the balance auditor
type BalanceAuditorConfig struct {
	// Interval is how often balances are recomputed (default: 1h)
	Interval time.Duration

	// Repair overwrites drifted balances instead of only reporting them.
	// Leave it off while the API is serving writes; see Reconciler.Recompute.
	Repair bool
}

func DefaultBalanceAuditorConfig() BalanceAuditorConfig {
	return BalanceAuditorConfig{
		Interval: time.Hour,
		Repair:   false,
	}
}

// recomputer is the part of the Reconciler the auditor drives.
type recomputer interface {
	Recompute(ctx context.Context, repair bool) ([]core.BalanceDrift, error)
}

// BalanceAuditor periodically recomputes every account balance from its
// transactions and reports drift, such as a Reapply that failed halfway.
type BalanceAuditor struct {
	reconciler recomputer
	config     BalanceAuditorConfig
	logger     *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	lastRun    time.Time
	lastDrifts int
}

func NewBalanceAuditor(reconciler recomputer, config BalanceAuditorConfig) *BalanceAuditor {
	return &BalanceAuditor{
		reconciler: reconciler,
		config:     config,
		logger:     log.Default(log.ComponentReconciler),
	}
}

// Start begins the audit loop. Returns an error if already running.
func (a *BalanceAuditor) Start(ctx context.Context) error {
	if a.config.Interval <= 0 {
		return fmt.Errorf("balance auditor interval must be positive, got %v", a.config.Interval)
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("balance auditor is already running")
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	a.mu.Unlock()

	go a.runLoop(ctx)

	a.logger.InfoContext(ctx, "Balance auditor started",
		"interval", a.config.Interval,
		"repair", a.config.Repair)
	return nil
}

// Stop signals the loop and waits for the current audit to finish.
func (a *BalanceAuditor) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	close(a.stopCh)
	done := a.doneCh
	a.mu.Unlock()

	select {
	case <-done:
		a.logger.InfoContext(ctx, "Balance auditor stopped gracefully")
		return nil
	case <-ctx.Done():
		a.logger.WarnContext(ctx, "Balance auditor stop timed out")
		return ctx.Err()
	}
}

func (a *BalanceAuditor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// LastRun reports when the last audit finished and how many drifted
// accounts it found.
func (a *BalanceAuditor) LastRun() (time.Time, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRun, a.lastDrifts
}

func (a *BalanceAuditor) runLoop(ctx context.Context) {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	a.RunOnce(ctx)

	for {
		select {
		case <-a.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single audit and returns the drifts it found.
func (a *BalanceAuditor) RunOnce(ctx context.Context) []core.BalanceDrift {
	start := time.Now()
	drifts, err := a.reconciler.Recompute(ctx, a.config.Repair)
	if err != nil {
		a.logger.ErrorContext(ctx, "Balance audit failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRecompute)
	}

	for _, d := range drifts {
		a.logger.WarnContext(ctx, "Balance drift detected",
			log.FieldAccountID, d.AccountID,
			"account_name", d.AccountName,
			"cached", d.Cached.String(),
			"expected", d.Expected.String(),
			"repaired", a.config.Repair && err == nil)
	}

	a.mu.Lock()
	a.lastRun = time.Now()
	a.lastDrifts = len(drifts)
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "Balance audit completed",
		"drifted_accounts", len(drifts),
		log.FieldDuration, time.Since(start).Milliseconds())
	return drifts
}
