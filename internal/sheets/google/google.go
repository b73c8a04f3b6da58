package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"moneyflow/internal/cache"
	ports "moneyflow/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	lastColumn   = "I"
	rowCacheSize = 5000
	rowCacheTTL  = 24 * time.Hour
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors transactions into one sheet. Removed transactions are
// cleared rather than deleted so row numbers never shift, which lets the
// client remember where each id lives.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string

	mu   sync.Mutex // serializes writes so two appends never pick the same row
	rows *cache.LRUCache[int]
}

var (
	_ ports.TransactionMirror = (*Client)(nil)
	_ ports.MirrorReader      = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
// Extra options are passed to the underlying service (tests point it at a
// local endpoint).
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		cfg.SheetName = "Transactions"
	}

	if len(opts) == 0 {
		creds, err := loadCredentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets mirror ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         cfg.SheetName,
		rows:          cache.NewLRUCache[int](rowCacheSize, rowCacheTTL),
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read application credentials: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Cache exposes the row index cache so it can be swept by a cache.Manager.
func (c *Client) Cache() cache.Cleaner { return c.rows }

func (c *Client) Upsert(ctx context.Context, row ports.Row) (string, error) {
	if row.ID == "" {
		return "", errors.New("row without id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.rows.Get(row.ID)
	if !ok {
		ids, err := c.readIDs(ctx)
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			if err := c.writeRow(ctx, 1, ports.Header); err != nil {
				return "", fmt.Errorf("write header: %w", err)
			}
			ids = [][]any{{ports.Header[0]}}
		}
		n = findRow(ids, row.ID)
		if n == 0 {
			n = len(ids) + 1
		}
	}

	if err := c.writeRow(ctx, n, row.Values()); err != nil {
		return "", err
	}
	c.rows.Set(row.ID, n)
	return rowRange(c.sheet, n), nil
}

func (c *Client) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.rows.Get(id)
	if !ok {
		ids, err := c.readIDs(ctx)
		if err != nil {
			return err
		}
		n = findRow(ids, id)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Row not mirrored, nothing to clear", "transaction_id", id)
		return nil
	}

	rng := rowRange(c.sheet, n)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.rows.Delete(id)
	return nil
}

// Rows lists mirrored rows, skipping the header and cleared rows.
func (c *Client) Rows(ctx context.Context) ([]ports.Row, error) {
	rng := fmt.Sprintf("%s!A:%s", c.sheet, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []ports.Row
	for i, cells := range resp.Values {
		if i == 0 {
			continue
		}
		r := ports.RowFromValues(cells)
		if r.ID == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) writeRow(ctx context.Context, n int, cells []any) error {
	rng := rowRange(c.sheet, n)
	vr := &gsheet.ValueRange{Values: [][]any{cells}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}
