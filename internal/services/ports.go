package services

import (
	"context"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// Ports for the persistence collaborator. Both the SQLite repository and
// the in-memory store satisfy them; construction and lifecycle are owned
// by the application entry point, never by a package-level handle.
type (
	// LedgerStore is the durable, append-mostly transaction collection.
	LedgerStore interface {
		// InsertTransaction appends a transaction and returns its
		// generated id. A returned error means "not recorded".
		InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)

		// ListTransactions returns transactions ordered by date
		// descending with insertion id as the stable tiebreaker.
		// A non-positive limit means unbounded.
		ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error)

		// SumCategoryMonth sums transaction amounts for a category
		// within the given calendar month; no rows sum to zero.
		SumCategoryMonth(ctx context.Context, category string, year, month int) (decimal.Decimal, error)
	}

	// BudgetStore holds at most one monthly limit per category.
	BudgetStore interface {
		// UpsertBudget atomically inserts or replaces the limit for
		// a category.
		UpsertBudget(ctx context.Context, b core.Budget) error

		// ListBudgets returns budgets ordered lexicographically by
		// category.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// AlertPublisher emits a transaction-recorded event after a
	// successful insert. Publishing is best-effort: failures are logged
	// by the caller and never fail the insert.
	AlertPublisher interface {
		PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
	}
)
