package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
	"moneyflow/internal/services"
	"moneyflow/internal/storage"
)

type SeedCmd struct{}

func (cmd *SeedCmd) Run(e env) error {
	store := e.open()
	defer store.Close()

	seeded, count, err := services.NewCategoryService(store.Store).Seed(e.ctx)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Printf("Categories seeded successfully (%d)\n", count)
	} else {
		fmt.Printf("Categories already exist (%d)\n", count)
	}
	return nil
}

var errDrift = errors.New("balance drift detected")

type VerifyCmd struct{}

func (cmd *VerifyCmd) Run(e env) error {
	store := e.open()
	defer store.Close()

	drifts, err := services.NewReconciler(store.Store).Recompute(e.ctx, false)
	if err != nil {
		return err
	}
	if len(drifts) == 0 {
		fmt.Println("All balances consistent")
		return nil
	}
	printDrifts(os.Stdout, drifts, displayCurrency(e.ctx, store.Store))
	return fmt.Errorf("%w in %d accounts", errDrift, len(drifts))
}

type ReconcileCmd struct {
	DryRun bool `help:"Only report drift, do not write balances."`
}

func (cmd *ReconcileCmd) Run(e env) error {
	store := e.open()
	defer store.Close()

	drifts, err := services.NewReconciler(store.Store).Recompute(e.ctx, !cmd.DryRun)
	if len(drifts) > 0 {
		printDrifts(os.Stdout, drifts, displayCurrency(e.ctx, store.Store))
	}
	if err != nil {
		return err
	}
	switch {
	case len(drifts) == 0:
		fmt.Println("All balances consistent")
	case cmd.DryRun:
		fmt.Printf("%d accounts would be repaired\n", len(drifts))
	default:
		fmt.Printf("Repaired %d accounts\n", len(drifts))
	}
	return nil
}

type InvoiceCmd struct {
	AccountID string `arg:"" help:"Credit card account id."`
	Month     string `help:"Limit to a month (YYYY-MM) or year (YYYY)." short:"m"`
}

func (cmd *InvoiceCmd) Run(e env) error {
	store := e.open()
	defer store.Close()

	acc, err := store.Store.GetAccount(e.ctx, cmd.AccountID)
	if err != nil {
		return err
	}
	inv, err := services.NewInvoiceProjector(store.Store, store.Store).Project(e.ctx, cmd.AccountID, cmd.Month)
	if err != nil {
		return err
	}
	printInvoice(os.Stdout, inv, acc.Currency)
	return nil
}

type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(e env) error {
	if e.cfg.DataBackend != "sqlite" {
		return fmt.Errorf("migrations only apply to the sqlite backend, got %q", e.cfg.DataBackend)
	}
	version, err := storage.RunMigrations(e.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	fmt.Printf("Schema at version %d\n", version)
	return nil
}

// displayCurrency is the currency for drift reports, which span accounts.
func displayCurrency(ctx context.Context, store ledger.SettingsStore) string {
	st, err := services.NewSettingsService(store).Get(ctx)
	if err != nil {
		return core.DefaultCurrency
	}
	return st.Currency
}

func printDrifts(w io.Writer, drifts []core.BalanceDrift, currency string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tID\tCACHED\tEXPECTED\tDELTA")
	for _, d := range drifts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.AccountName, d.AccountID,
			formatMoney(d.Cached, currency),
			formatMoney(d.Expected, currency),
			formatMoney(d.Delta(), currency))
	}
	tw.Flush()
}

func printInvoice(w io.Writer, inv core.Invoice, currency string) {
	fmt.Fprintf(w, "%s (%s)\n", inv.AccountName, inv.AccountID)
	fmt.Fprintf(w, "Closes on day %d, due on day %d\n\n", inv.ClosingDay, inv.DueDay)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT")
	for _, t := range inv.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Date, t.Description, formatMoney(t.Amount, currency))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal:           %s\n", formatMoney(inv.Total, currency))
	fmt.Fprintf(w, "Credit limit:    %s\n", formatMoney(inv.CreditLimit, currency))
	fmt.Fprintf(w, "Remaining limit: %s\n", formatMoney(inv.RemainingLimit, currency))
}
