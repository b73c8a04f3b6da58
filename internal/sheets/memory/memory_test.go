package memory

import (
	"context"
	"testing"

	"moneyflow/internal/sheets"
)

func TestMirrorUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	m := New()

	ref, err := m.Upsert(ctx, sheets.Row{ID: "a", Amount: "10"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	_, _ = m.Upsert(ctx, sheets.Row{ID: "b", Amount: "20"})

	ref, err = m.Upsert(ctx, sheets.Row{ID: "a", Amount: "15"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("upsert of existing id should rewrite in place: ref=%q err=%v", ref, err)
	}
	rows, _ := m.Rows(ctx)
	if len(rows) != 2 || rows[0].Amount != "15" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if err := m.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing a missing row should not fail: %v", err)
	}
	rows, _ = m.Rows(ctx)
	if len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("unexpected rows after remove %+v", rows)
	}

	if _, err := m.Upsert(ctx, sheets.Row{}); err == nil {
		t.Fatal("expected error for row without id")
	}
}
