package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"moneyflow/internal/core"
)

type countingRecomputer struct {
	calls  atomic.Int32
	repair atomic.Bool
	err    error
}

func (c *countingRecomputer) Recompute(_ context.Context, repair bool) ([]core.BalanceDrift, error) {
	c.calls.Add(1)
	c.repair.Store(repair)
	return []core.BalanceDrift{{AccountID: "a"}}, c.err
}

func TestDefaultBalanceAuditorConfig(t *testing.T) {
	cfg := DefaultBalanceAuditorConfig()
	if cfg.Interval != time.Hour {
		t.Errorf("expected Interval 1h, got %v", cfg.Interval)
	}
	if cfg.Repair {
		t.Error("expected the auditor to report only by default")
	}
}

func TestBalanceAuditorLifecycle(t *testing.T) {
	rec := &countingRecomputer{}
	a := NewBalanceAuditor(rec, BalanceAuditorConfig{Interval: 10 * time.Millisecond, Repair: true})
	ctx := context.Background()

	if a.IsRunning() {
		t.Fatal("auditor should not be running initially")
	}
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(ctx); err == nil {
		t.Error("expected error when starting a running auditor")
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.calls.Load() < 3 {
		t.Fatalf("expected repeated audits, got %d", rec.calls.Load())
	}
	if !rec.repair.Load() {
		t.Error("expected repair mode to be passed through")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if a.IsRunning() {
		t.Error("auditor should not be running after Stop")
	}
	if err := a.Stop(stopCtx); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	last, drifts := a.LastRun()
	if last.IsZero() || drifts != 1 {
		t.Errorf("LastRun = %v, %d", last, drifts)
	}
}

func TestBalanceAuditorRejectsZeroInterval(t *testing.T) {
	a := NewBalanceAuditor(&countingRecomputer{}, BalanceAuditorConfig{})
	if err := a.Start(context.Background()); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if a.IsRunning() {
		t.Fatal("auditor must not run after a rejected start")
	}
}

func TestBalanceAuditorRunOnceSurvivesErrors(t *testing.T) {
	rec := &countingRecomputer{err: errors.New("disk I/O error")}
	a := NewBalanceAuditor(rec, BalanceAuditorConfig{Interval: time.Hour})

	if drifts := a.RunOnce(context.Background()); len(drifts) != 1 {
		t.Fatalf("expected partial drifts to be returned, got %d", len(drifts))
	}
}

func TestBalanceAuditorOnRealLedger(t *testing.T) {
	tests := []struct {
		name   string
		repair bool
		want   string
	}{
		{"report only", false, "-1"},
		{"repair", true, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			ctx := context.Background()
			acc := f.account(t, "Drifted", 10)
			f.drift(t, acc.ID, -11)

			a := NewBalanceAuditor(f.reconciler, BalanceAuditorConfig{Interval: time.Hour, Repair: tt.repair})
			if drifts := a.RunOnce(ctx); len(drifts) != 1 {
				t.Fatalf("expected one drift, got %d", len(drifts))
			}
			if got := f.balance(t, acc.ID).String(); got != tt.want {
				t.Fatalf("balance = %s, want %s", got, tt.want)
			}
		})
	}
}
