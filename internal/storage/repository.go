package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"poupa/internal/core"

	_ "modernc.org/sqlite"
)

const (
	settingIncome   = "income_cents"
	settingRevision = "ledger_revision"
)

// SQLiteRepository implements store.LedgerStore and store.TargetStore on a
// single SQLite file. Save replaces the whole ledger in one transaction.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements store.LedgerStore
func (r *SQLiteRepository) Load(ctx context.Context) (core.Ledger, error) {
	var l core.Ledger

	raw, err := r.queries.GetSetting(ctx, settingIncome)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return l, fmt.Errorf("get income: %w", err)
	default:
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return l, fmt.Errorf("parse income %q: %w", raw, err)
		}
		l.Income = core.Cents(cents)
	}

	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return l, fmt.Errorf("list expenses: %w", err)
	}
	l.Expenses = make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := rowToExpense(row)
		if err != nil {
			return l, fmt.Errorf("decode expense %s: %w", row.ID, err)
		}
		l.Expenses = append(l.Expenses, e)
	}
	return l, nil
}

// Save implements store.LedgerStore
func (r *SQLiteRepository) Save(ctx context.Context, l core.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.UpsertSetting(ctx, settingIncome, strconv.FormatInt(l.Income.Cents, 10)); err != nil {
		return fmt.Errorf("save income: %w", err)
	}
	if err := q.DeleteAllExpenses(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for i, e := range l.Expenses {
		if err := q.InsertExpense(ctx, expenseToRow(e, i)); err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}
	rev, err := nextRevision(ctx, q)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite",
		"expenses", len(l.Expenses),
		"income_cents", l.Income.Cents,
		"revision", rev)
	return nil
}

// Revision returns a counter bumped by every Save. Zero means never saved.
func (r *SQLiteRepository) Revision(ctx context.Context) (int64, error) {
	raw, err := r.queries.GetSetting(ctx, settingRevision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get revision: %w", err)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func nextRevision(ctx context.Context, q *Queries) (int64, error) {
	var rev int64
	raw, err := q.GetSetting(ctx, settingRevision)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, fmt.Errorf("get revision: %w", err)
	default:
		if rev, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return 0, fmt.Errorf("parse revision %q: %w", raw, err)
		}
	}
	rev++
	if err := q.UpsertSetting(ctx, settingRevision, strconv.FormatInt(rev, 10)); err != nil {
		return 0, fmt.Errorf("bump revision: %w", err)
	}
	return rev, nil
}

// LoadTargets implements store.TargetStore
func (r *SQLiteRepository) LoadTargets(ctx context.Context) (core.TargetOverrides, error) {
	rows, err := r.queries.ListTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make(core.TargetOverrides, len(rows))
	for _, row := range rows {
		v, err := decimal.NewFromString(row.Target)
		if err != nil {
			return nil, fmt.Errorf("parse target for %s: %w", row.Category, err)
		}
		out[core.Category(row.Category)] = v
	}
	return out, nil
}

// SaveTargets implements store.TargetStore
func (r *SQLiteRepository) SaveTargets(ctx context.Context, o core.TargetOverrides) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllTargets(ctx); err != nil {
		return fmt.Errorf("clear targets: %w", err)
	}
	for c, v := range o {
		if err := q.InsertTarget(ctx, TargetRow{Category: string(c), Target: v.String()}); err != nil {
			return fmt.Errorf("insert target %s: %w", c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit targets: %w", err)
	}
	slog.InfoContext(ctx, "Budget targets saved", "count", len(o))
	return nil
}

// ClearTargets implements store.TargetStore
func (r *SQLiteRepository) ClearTargets(ctx context.Context) error {
	if err := r.queries.DeleteAllTargets(ctx); err != nil {
		return fmt.Errorf("clear targets: %w", err)
	}
	slog.InfoContext(ctx, "Budget targets reset to defaults")
	return nil
}

func expenseToRow(e core.Expense, position int) ExpenseRow {
	row := ExpenseRow{
		ID:          e.ID,
		Position:    int64(position),
		Name:        e.Name,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		DueDate:     e.DueDate.String(),
		Recurrence:  string(e.Recurrence),
		Payer:       e.Payer,
	}
	if e.Installments != nil {
		row.InstallmentCurrent = sql.NullInt64{Int64: int64(e.Installments.Current), Valid: true}
		row.InstallmentTotal = sql.NullInt64{Int64: int64(e.Installments.Total), Valid: true}
	}
	return row
}

func rowToExpense(row ExpenseRow) (core.Expense, error) {
	due, err := core.ParseDate(row.DueDate)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:         row.ID,
		Name:       row.Name,
		Amount:     core.Cents(row.AmountCents),
		Category:   core.Category(row.Category),
		DueDate:    due,
		Recurrence: core.Recurrence(row.Recurrence),
		Payer:      row.Payer,
	}
	if row.InstallmentCurrent.Valid && row.InstallmentTotal.Valid {
		e.Installments = &core.Installments{
			Current: int(row.InstallmentCurrent.Int64),
			Total:   int(row.InstallmentTotal.Int64),
		}
	}
	return e, nil
}
