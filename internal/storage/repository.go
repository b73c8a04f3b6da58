package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moneyflow/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.Store on a single SQLite file.
// Amounts are stored as decimal text so they round-trip exactly.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: SQLite has a single writer and this keeps every
	// balance adjustment strictly serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Accounts

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, insertAccount,
		a.ID, a.Name, string(a.Kind), a.Balance.String(), a.OpeningBalance.String(),
		a.Currency, a.CreditLimit.String(), a.DueDay, a.ClosingDay, a.BankName, a.BankIcon)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccount+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectAccount+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, updateAccount,
		a.Name, string(a.Kind), a.Currency, a.CreditLimit.String(), a.DueDay, a.ClosingDay,
		a.BankName, a.BankIcon, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account", a.ID)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, "account", id)
}

// AdjustBalance performs the read-modify-write inside one SQL transaction.
func (r *SQLiteRepository) AdjustBalance(ctx context.Context, id string, delta core.Money) (core.Money, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Money{}, fmt.Errorf("begin adjust: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("read balance: %w", err)
	}
	current, err := core.ParseMoney(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("stored balance of %s: %w", id, err)
	}

	next := current.Add(delta)
	if _, err := tx.ExecContext(ctx, "UPDATE accounts SET balance = ? WHERE id = ?", next.String(), id); err != nil {
		return core.Money{}, fmt.Errorf("write balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Money{}, fmt.Errorf("commit adjust: %w", err)
	}
	return next, nil
}

// CheckBalance sums the account's transactions and compares the result with
// the stored balance inside one SQL transaction.
func (r *SQLiteRepository) CheckBalance(ctx context.Context, id string, repair bool) (core.BalanceDrift, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.BalanceDrift{}, fmt.Errorf("begin check: %w", err)
	}
	defer tx.Rollback()

	var name, balance, opening string
	err = tx.QueryRowContext(ctx, "SELECT name, balance, opening_balance FROM accounts WHERE id = ?", id).
		Scan(&name, &balance, &opening)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BalanceDrift{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.BalanceDrift{}, fmt.Errorf("read account: %w", err)
	}
	d := core.BalanceDrift{AccountID: id, AccountName: name}
	if d.Cached, err = core.ParseMoney(balance); err != nil {
		return core.BalanceDrift{}, fmt.Errorf("stored balance of %s: %w", id, err)
	}
	if d.Expected, err = core.ParseMoney(opening); err != nil {
		return core.BalanceDrift{}, fmt.Errorf("opening balance of %s: %w", id, err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT amount, type FROM transactions WHERE account_id = ?", id)
	if err != nil {
		return core.BalanceDrift{}, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var amount, typ string
		if err := rows.Scan(&amount, &typ); err != nil {
			return core.BalanceDrift{}, fmt.Errorf("scan transaction: %w", err)
		}
		m, err := core.ParseMoney(amount)
		if err != nil {
			return core.BalanceDrift{}, fmt.Errorf("stored amount: %w", err)
		}
		t := core.Transaction{Amount: m, Type: core.TransactionType(typ)}
		d.Expected = d.Expected.Add(t.Effect())
	}
	if err := rows.Err(); err != nil {
		return core.BalanceDrift{}, fmt.Errorf("sum transactions: %w", err)
	}
	rows.Close()

	if !repair || d.Expected.Equal(d.Cached) {
		return d, nil
	}
	if _, err := tx.ExecContext(ctx, "UPDATE accounts SET balance = ? WHERE id = ?", d.Expected.String(), id); err != nil {
		return core.BalanceDrift{}, fmt.Errorf("repair balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.BalanceDrift{}, fmt.Errorf("commit repair: %w", err)
	}
	return d, nil
}

// Transactions

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertTransaction,
		t.ID, t.Description, t.Amount.String(), string(t.Type), t.CategoryID, t.AccountID,
		t.Date, t.PaymentMethod, tags, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, selectTransaction+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	query, args := buildTransactionQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateTransaction,
		t.Description, t.Amount.String(), string(t.Type), t.CategoryID, t.AccountID,
		t.Date, t.PaymentMethod, tags, formatTime(t.CreatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

// Categories

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, string(c.Type), c.Icon, c.Color)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, type, icon, color FROM categories ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Holdings

func (r *SQLiteRepository) CreateHolding(ctx context.Context, h core.StockHolding) error {
	_, err := r.db.ExecContext(ctx, insertHolding,
		h.ID, h.Symbol, h.Quantity.String(), h.PurchasePrice.String(), h.PurchaseDate,
		string(h.AssetType), formatTime(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("create holding: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListHoldings(ctx context.Context) ([]core.StockHolding, error) {
	rows, err := r.db.QueryContext(ctx, selectHolding+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var out []core.StockHolding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteHolding(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM stock_holdings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return requireRow(res, "holding", id)
}

// Settings

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_name, currency, theme, language FROM settings LIMIT 1").
		Scan(&s.ID, &s.UserName, &s.Currency, &s.Theme, &s.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, fmt.Errorf("settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, upsertSettings, s.ID, s.UserName, s.Currency, s.Theme, s.Language)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (core.Account, error) {
	var (
		a                             core.Account
		kind                          string
		balance, opening, creditLimit string
	)
	err := row.Scan(&a.ID, &a.Name, &kind, &balance, &opening, &a.Currency, &creditLimit,
		&a.DueDay, &a.ClosingDay, &a.BankName, &a.BankIcon)
	if err != nil {
		return core.Account{}, err
	}
	a.Kind = core.AccountKind(kind)
	if a.Balance, err = core.ParseMoney(balance); err != nil {
		return core.Account{}, err
	}
	if a.OpeningBalance, err = core.ParseMoney(opening); err != nil {
		return core.Account{}, err
	}
	if a.CreditLimit, err = core.ParseMoney(creditLimit); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t                          core.Transaction
		amount, typ, tags, created string
	)
	err := row.Scan(&t.ID, &t.Description, &amount, &typ, &t.CategoryID, &t.AccountID,
		&t.Date, &t.PaymentMethod, &tags, &created)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if t.Amount, err = core.ParseMoney(amount); err != nil {
		return core.Transaction{}, err
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return core.Transaction{}, fmt.Errorf("decode tags: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanHolding(row scanner) (core.StockHolding, error) {
	var (
		h                              core.StockHolding
		qty, price, assetType, created string
	)
	err := row.Scan(&h.ID, &h.Symbol, &qty, &price, &h.PurchaseDate, &assetType, &created)
	if err != nil {
		return core.StockHolding{}, err
	}
	h.AssetType = core.AssetType(assetType)
	if h.Quantity, err = core.ParseQuantity(qty); err != nil {
		return core.StockHolding{}, err
	}
	if h.PurchasePrice, err = core.ParseMoney(price); err != nil {
		return core.StockHolding{}, err
	}
	if h.CreatedAt, err = parseTime(created); err != nil {
		return core.StockHolding{}, err
	}
	return h, nil
}

// buildTransactionQuery mirrors core.TransactionFilter.Matches in SQL.
// The month filter is the same plain prefix match.
func buildTransactionQuery(f core.TransactionFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Month != "" {
		where = append(where, "substr(date, 1, length(?)) = ?")
		args = append(args, f.Month, f.Month)
	}

	var b strings.Builder
	b.WriteString(selectTransaction)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY date DESC, created_at DESC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
