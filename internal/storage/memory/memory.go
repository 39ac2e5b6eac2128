// Package memory provides an in-memory store used by tests and the
// memory backend. It mirrors the SQLite repository's semantics:
// monotonic ids, date-descending listing, month-scoped sums, and
// one budget row per category.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

type Store struct {
	mu           sync.Mutex
	nextID       int64
	transactions []core.Transaction
	budgets      map[string]core.Budget
}

func New() *Store {
	return &Store{nextID: 1, budgets: make(map[string]core.Budget)}
}

// InsertTransaction appends a transaction and returns its assigned id.
func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := core.ValidateAmount(t.Amount); err != nil {
		return 0, err
	}
	if t.Vendor == "" {
		return 0, core.ErrEmptyVendor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	t.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

// ListTransactions returns transactions ordered by date descending, id
// descending. A limit of zero or below means unbounded.
func (s *Store) ListTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Transaction(nil), s.transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// SumCategoryMonth sums amounts for a category within a calendar month.
func (s *Store) SumCategoryMonth(_ context.Context, category string, year, month int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, t := range s.transactions {
		if t.Category == category && t.Date.InMonth(year, month) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

// UpsertBudget replaces the monthly limit for a category.
func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.budgets[b.Category]; ok {
		b.CreatedAt = existing.CreatedAt
	} else {
		b.CreatedAt = time.Now().UTC()
	}
	s.budgets[b.Category] = b
	return nil
}

// ListBudgets returns budgets ordered lexicographically by category.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
