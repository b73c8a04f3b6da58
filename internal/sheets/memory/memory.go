// Package memory is an in-process transaction mirror used when no
// spreadsheet is configured, and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneyflow/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []sheets.Row
}

func New() *Mirror {
	return &Mirror{}
}

// Upsert keeps rows in first-written order; references are 1-based and
// count the header row like the spreadsheet does.
func (m *Mirror) Upsert(_ context.Context, row sheets.Row) (string, error) {
	if row.ID == "" {
		return "", fmt.Errorf("row without id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = row
			return fmt.Sprintf("mem:%d", i+2), nil
		}
	}
	m.rows = append(m.rows, row)
	return fmt.Sprintf("mem:%d", len(m.rows)+1), nil
}

func (m *Mirror) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Mirror) Rows(_ context.Context) ([]sheets.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sheets.Row(nil), m.rows...), nil
}
