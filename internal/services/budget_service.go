package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// BudgetEvaluator joins the budget store with month-scoped ledger sums
// and classifies each category's spend.
//
// Clock policy: the current-month boundary comes from the injected clock
// and is interpreted in that clock's location; stored dates are date-only
// and carry no timezone, so the same clock governs both sides of the
// comparison. Nothing is cached: every call re-reads store state.
type BudgetEvaluator struct {
	ledger   LedgerStore
	budgets  BudgetStore
	taxonomy *core.Taxonomy

	now func() time.Time
}

func NewBudgetEvaluator(ledger LedgerStore, budgets BudgetStore, taxonomy *core.Taxonomy) *BudgetEvaluator {
	return &BudgetEvaluator{
		ledger:   ledger,
		budgets:  budgets,
		taxonomy: taxonomy,
		now:      time.Now,
	}
}

// Summary returns one status row per budgeted category, ordered by
// category. Spend is recomputed from the ledger on every call.
func (e *BudgetEvaluator) Summary(ctx context.Context) ([]core.BudgetStatus, error) {
	budgets, err := e.budgets.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("budget summary: %w", err)
	}

	now := e.now()
	year, month := now.Year(), int(now.Month())

	statuses := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, err := e.ledger.SumCategoryMonth(ctx, b.Category, year, month)
		if err != nil {
			return nil, fmt.Errorf("budget summary for %q: %w", b.Category, err)
		}
		statuses = append(statuses, core.NewBudgetStatus(b, spent))
	}
	return statuses, nil
}

// CheckSingle classifies a category's spend with an incremental amount
// added on top of the current-month ledger sum. It reads the same stores
// Summary reads, so a check right after a committed insert agrees with
// the next Summary. The second return is false when the category has no
// budget.
func (e *BudgetEvaluator) CheckSingle(ctx context.Context, category string, incremental decimal.Decimal) (core.BudgetStatus, bool, error) {
	budgets, err := e.budgets.ListBudgets(ctx)
	if err != nil {
		return core.BudgetStatus{}, false, fmt.Errorf("check budget: %w", err)
	}

	var budget core.Budget
	found := false
	for _, b := range budgets {
		if b.Category == category {
			budget = b
			found = true
			break
		}
	}
	if !found {
		return core.BudgetStatus{}, false, nil
	}

	now := e.now()
	spent, err := e.ledger.SumCategoryMonth(ctx, category, now.Year(), int(now.Month()))
	if err != nil {
		return core.BudgetStatus{}, false, fmt.Errorf("check budget for %q: %w", category, err)
	}

	return core.NewBudgetStatus(budget, spent.Add(incremental)), true, nil
}

// SetBudget validates and upserts a monthly limit for a category. The
// category must belong to the configured taxonomy.
func (e *BudgetEvaluator) SetBudget(ctx context.Context, category, limit string) error {
	category = strings.TrimSpace(category)
	if !e.taxonomy.Contains(category) {
		return fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}
	parsed, err := core.ParseLimit(limit)
	if err != nil {
		return err
	}
	return e.budgets.UpsertBudget(ctx, core.Budget{Category: category, MonthlyLimit: parsed})
}
