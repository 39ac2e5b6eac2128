package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence collaborator for both the ledger
// and budget stores. Transactions are append-only from its callers'
// perspective; budgets are upserted atomically on the category unique key.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction appends a transaction and returns its generated id.
// The store defends the positivity invariant even though validation is
// the ingestion layer's job; the schema CHECK is the last line.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := core.ValidateAmount(t.Amount); err != nil {
		return 0, err
	}
	if t.Vendor == "" {
		return 0, core.ErrEmptyVendor
	}

	var rawData sql.NullString
	if len(t.RawData) > 0 {
		rawData = sql.NullString{String: string(t.RawData), Valid: true}
	}

	createdAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(vendor, amount_cents, category, transaction_date, description, is_recurring, source_type, raw_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Vendor, core.Cents(t.Amount), t.Category, t.Date.String(),
		t.Description, t.IsRecurring, string(t.Source), rawData,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w: %w", core.ErrPersistence, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w: %w", core.ErrPersistence, err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"vendor", t.Vendor,
		"amount", t.Amount.StringFixed(2),
		"category", t.Category,
		"date", t.Date.String(),
		"source", string(t.Source))

	return id, nil
}

// ListTransactions returns transactions ordered by transaction date
// descending, with insertion id as the stable secondary key. A limit
// below zero means unbounded; the limit is always a bound parameter.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit == 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vendor, amount_cents, category, transaction_date, description, is_recurring, source_type, raw_data, created_at
		FROM transactions
		ORDER BY transaction_date DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w: %w", core.ErrPersistence, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t         core.Transaction
			cents     int64
			dateStr   string
			source    string
			rawData   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Vendor, &cents, &t.Category, &dateStr,
			&t.Description, &t.IsRecurring, &source, &rawData, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w: %w", core.ErrPersistence, err)
		}
		t.Amount = core.FromCents(cents)
		t.Source = core.SourceType(source)
		if d, err := core.ParseDate(dateStr); err == nil {
			t.Date = d
		}
		if rawData.Valid {
			t.RawData = []byte(rawData.String)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = ts
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w: %w", core.ErrPersistence, err)
	}
	return out, nil
}

// SumCategoryMonth returns the sum of transaction amounts for a category
// within the given calendar month. Categories with no rows sum to zero.
func (r *SQLiteRepository) SumCategoryMonth(ctx context.Context, category string, year, month int) (decimal.Decimal, error) {
	first, last := monthBounds(year, month)

	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE category = ? AND transaction_date BETWEEN ? AND ?`,
		category, first, last,
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum category month: %w: %w", core.ErrPersistence, err)
	}
	return core.FromCents(cents), nil
}

// UpsertBudget atomically inserts or replaces the monthly limit for a
// category. The unique key on category guarantees at most one row; a
// partial write is never observable.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category, monthly_limit_cents, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (category)
		DO UPDATE SET monthly_limit_cents = excluded.monthly_limit_cents`,
		b.Category, core.Cents(b.MonthlyLimit), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert budget: %w: %w", core.ErrPersistence, err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"category", b.Category,
		"monthly_limit", b.MonthlyLimit.StringFixed(2))

	return nil
}

// ListBudgets returns all budgeted categories ordered lexicographically.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, monthly_limit_cents, created_at
		FROM budgets
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w: %w", core.ErrPersistence, err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b         core.Budget
			cents     int64
			createdAt string
		)
		if err := rows.Scan(&b.Category, &cents, &createdAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w: %w", core.ErrPersistence, err)
		}
		b.MonthlyLimit = core.FromCents(cents)
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			b.CreatedAt = ts
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w: %w", core.ErrPersistence, err)
	}
	return out, nil
}

// monthBounds returns the first and last day of a calendar month as
// YYYY-MM-DD strings, matching the stored transaction_date format.
func monthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
