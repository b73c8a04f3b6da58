package main

import (
	"bytes"
	"strings"
	"testing"

	"moneyflow/internal/core"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "BRL", "R$1.234,50"},
		{-32.49, "BRL", "-R$32,49"},
		{0, "BRL", "R$0,00"},
		{10, "USD", "$10.00"},
		{10, "XXX-unknown", "R$10,00"},
	}
	for _, tt := range tests {
		if got := formatMoney(core.NewMoney(tt.amount), tt.currency); got != tt.want {
			t.Errorf("formatMoney(%v, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestPrintInvoice(t *testing.T) {
	inv := core.Invoice{
		AccountID:      "card-1",
		AccountName:    "Roxinho",
		Total:          core.NewMoney(300),
		CreditLimit:    core.NewMoney(1000),
		RemainingLimit: core.NewMoney(700),
		DueDay:         15,
		ClosingDay:     8,
		Transactions: []core.Transaction{
			{Date: "2025-01-10", Description: "Mercado", Amount: core.NewMoney(300)},
		},
	}
	var buf bytes.Buffer
	printInvoice(&buf, inv, "BRL")
	out := buf.String()

	for _, want := range []string{"Roxinho (card-1)", "Closes on day 8, due on day 15", "Mercado", "R$300,00", "R$700,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDrifts(t *testing.T) {
	var buf bytes.Buffer
	printDrifts(&buf, []core.BalanceDrift{
		{AccountID: "a1", AccountName: "Nubank", Cached: core.NewMoney(999), Expected: core.NewMoney(70)},
	}, "BRL")
	out := buf.String()
	for _, want := range []string{"Nubank", "R$999,00", "R$70,00", "-R$929,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
