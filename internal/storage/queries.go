package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID           string
	Seq          int64
	Type         string
	AmountCents  int64
	Category     string
	Description  string
	Date         string
	CreatedAt    string
	MirrorStatus string
}

type Budget struct {
	Category   string
	LimitCents int64
}

type Setting struct {
	DarkMode bool
	Currency string
}

const (
	MirrorPending  = "pending"
	MirrorMirrored = "mirrored"
	MirrorError    = "error"
)

const transactionColumns = `id, seq, type, amount_cents, category, description, date, created_at, mirror_status`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Seq, &t.Type, &t.AmountCents, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.MirrorStatus)
	return t, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, seq, type, amount_cents, category, description, date, created_at)
VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions), ?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID          string
	Type        string
	AmountCents int64
	Category    string
	Description string
	Date        string
	CreatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.Type,
		arg.AmountCents,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.CreatedAt,
	)
	return err
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + ` FROM transactions ORDER BY seq DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllTransactions = `-- name: DeleteAllTransactions :exec
DELETE FROM transactions
`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const getPendingMirror = `-- name: GetPendingMirror :many
SELECT id FROM transactions WHERE mirror_status = 'pending' ORDER BY seq ASC LIMIT ?
`

func (q *Queries) GetPendingMirror(ctx context.Context, limit int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getPendingMirror, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setMirrorStatus = `-- name: SetMirrorStatus :execrows
UPDATE transactions SET mirror_status = ? WHERE id = ?
`

type SetMirrorStatusParams struct {
	MirrorStatus string
	ID           string
}

func (q *Queries) SetMirrorStatus(ctx context.Context, arg SetMirrorStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setMirrorStatus, arg.MirrorStatus, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBudgets = `-- name: ListBudgets :many
SELECT category, limit_cents FROM budgets ORDER BY category
`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.Category, &b.LimitCents); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllBudgets = `-- name: DeleteAllBudgets :exec
DELETE FROM budgets
`

func (q *Queries) DeleteAllBudgets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBudgets)
	return err
}

const insertBudget = `-- name: InsertBudget :exec
INSERT INTO budgets (category, limit_cents) VALUES (?, ?)
`

func (q *Queries) InsertBudget(ctx context.Context, arg Budget) error {
	_, err := q.db.ExecContext(ctx, insertBudget, arg.Category, arg.LimitCents)
	return err
}

const getSettings = `-- name: GetSettings :one
SELECT dark_mode, currency FROM settings WHERE id = 1
`

func (q *Queries) GetSettings(ctx context.Context) (Setting, error) {
	var s Setting
	err := q.db.QueryRowContext(ctx, getSettings).Scan(&s.DarkMode, &s.Currency)
	return s, err
}

const upsertSettings = `-- name: UpsertSettings :exec
INSERT INTO settings (id, dark_mode, currency) VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET dark_mode = excluded.dark_mode, currency = excluded.currency
`

func (q *Queries) UpsertSettings(ctx context.Context, arg Setting) error {
	_, err := q.db.ExecContext(ctx, upsertSettings, arg.DarkMode, arg.Currency)
	return err
}
