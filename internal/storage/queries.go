package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type ExpenseRow struct {
	ID                 string
	Position           int64
	Name               string
	AmountCents        int64
	Category           string
	DueDate            string
	InstallmentCurrent sql.NullInt64
	InstallmentTotal   sql.NullInt64
	Recurrence         string
	Payer              string
}

const getSetting = `SELECT value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(&value)
	return value, err
}

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, key, value)
	return err
}

const listExpenses = `SELECT id, position, name, amount_cents, category, due_date,
       installment_current, installment_total, recurrence, payer
FROM expenses
ORDER BY position`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(
			&i.ID,
			&i.Position,
			&i.Name,
			&i.AmountCents,
			&i.Category,
			&i.DueDate,
			&i.InstallmentCurrent,
			&i.InstallmentTotal,
			&i.Recurrence,
			&i.Payer,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertExpense = `INSERT INTO expenses (
    id, position, name, amount_cents, category, due_date,
    installment_current, installment_total, recurrence, payer
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		arg.ID,
		arg.Position,
		arg.Name,
		arg.AmountCents,
		arg.Category,
		arg.DueDate,
		arg.InstallmentCurrent,
		arg.InstallmentTotal,
		arg.Recurrence,
		arg.Payer,
	)
	return err
}

const deleteAllExpenses = `DELETE FROM expenses`

func (q *Queries) DeleteAllExpenses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllExpenses)
	return err
}

type TargetRow struct {
	Category string
	Target   string
}

const listTargets = `SELECT category, target FROM budget_targets ORDER BY category`

func (q *Queries) ListTargets(ctx context.Context) ([]TargetRow, error) {
	rows, err := q.db.QueryContext(ctx, listTargets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TargetRow
	for rows.Next() {
		var i TargetRow
		if err := rows.Scan(&i.Category, &i.Target); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTarget = `INSERT INTO budget_targets (category, target) VALUES (?, ?)`

func (q *Queries) InsertTarget(ctx context.Context, arg TargetRow) error {
	_, err := q.db.ExecContext(ctx, insertTarget, arg.Category, arg.Target)
	return err
}

const deleteAllTargets = `DELETE FROM budget_targets`

func (q *Queries) DeleteAllTargets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTargets)
	return err
}
