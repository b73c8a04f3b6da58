package storage

const (
	selectAccount = `SELECT id, name, kind, balance, opening_balance, currency, credit_limit,
       due_day, closing_day, bank_name, bank_icon
FROM accounts`

	insertAccount = `INSERT INTO accounts
    (id, name, kind, balance, opening_balance, currency, credit_limit, due_day, closing_day, bank_name, bank_icon)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Balance columns are deliberately absent.
	updateAccount = `UPDATE accounts
SET name = ?, kind = ?, currency = ?, credit_limit = ?, due_day = ?, closing_day = ?,
    bank_name = ?, bank_icon = ?
WHERE id = ?`

	selectTransaction = `SELECT id, description, amount, type, category_id, account_id,
       date, payment_method, tags, created_at
FROM transactions`

	insertTransaction = `INSERT INTO transactions
    (id, description, amount, type, category_id, account_id, date, payment_method, tags, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateTransaction = `UPDATE transactions
SET description = ?, amount = ?, type = ?, category_id = ?, account_id = ?,
    date = ?, payment_method = ?, tags = ?, created_at = ?
WHERE id = ?`

	selectHolding = `SELECT id, symbol, quantity, purchase_price, purchase_date, asset_type, created_at
FROM stock_holdings`

	insertHolding = `INSERT INTO stock_holdings
    (id, symbol, quantity, purchase_price, purchase_date, asset_type, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	upsertSettings = `INSERT INTO settings (id, user_name, currency, theme, language)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    user_name = excluded.user_name,
    currency = excluded.currency,
    theme = excluded.theme,
    language = excluded.language`
)
