package sheets

import (
	"testing"

	"moneyflow/internal/core"
)

func TestRowFromTransaction(t *testing.T) {
	tx := core.Transaction{
		ID:            "tx-1",
		Description:   "Mercado",
		Amount:        core.NewMoney(123.45),
		Type:          core.Expense,
		Date:          "2024-03-10",
		PaymentMethod: "pix",
		Tags:          []string{"casa", "mensal"},
	}
	row := RowFromTransaction(tx, "", "Nubank")
	if row.Category != core.FallbackCategoryName {
		t.Fatalf("expected fallback category, got %q", row.Category)
	}
	if row.Amount != "123.45" || row.Tags != "casa, mensal" || row.Account != "Nubank" {
		t.Fatalf("unexpected row %+v", row)
	}

	back := RowFromValues(row.Values())
	if back != row {
		t.Fatalf("values round trip mismatch: %+v vs %+v", back, row)
	}
	if len(row.Values()) != len(Header) {
		t.Fatalf("row has %d cells, header has %d", len(row.Values()), len(Header))
	}
}

func TestRowFromShortValues(t *testing.T) {
	row := RowFromValues([]any{"tx-2", "2024-01-01"})
	if row.ID != "tx-2" || row.Date != "2024-01-01" || row.Tags != "" {
		t.Fatalf("unexpected row %+v", row)
	}
}
