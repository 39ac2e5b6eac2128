// Package worker evaluates budget alerts for committed transactions
// delivered over the message broker.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"finsight/internal/amqp"
	"finsight/internal/core"
)

// BudgetChecker evaluates the current standing of a single category.
type BudgetChecker interface {
	CheckSingle(ctx context.Context, category string, incremental decimal.Decimal) (core.BudgetStatus, bool, error)
}

// AlertWorker turns transaction-recorded events into budget alerts. The
// event only names the category; spend is always re-read from the store
// so the alert reflects committed state.
type AlertWorker struct {
	checker BudgetChecker
}

func NewAlertWorker(checker BudgetChecker) *AlertWorker {
	return &AlertWorker{checker: checker}
}

// Handle processes one transaction-recorded event. Returning an error
// requeues the delivery.
func (w *AlertWorker) Handle(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	// The event is published after commit, so the stored month sum
	// already includes this transaction.
	status, found, err := w.checker.CheckSingle(ctx, msg.Category, decimal.Zero)
	if err != nil {
		return fmt.Errorf("check budget for %q: %w", msg.Category, err)
	}
	if !found {
		slog.DebugContext(ctx, "No budget configured for category, skipping",
			"category", msg.Category,
			"transaction_id", msg.TransactionID)
		return nil
	}

	switch status.Status {
	case core.StatusOverBudget:
		slog.WarnContext(ctx, "ALERT: category over budget",
			"category", status.Category,
			"spent", status.Spent.StringFixed(2),
			"limit", status.MonthlyLimit.StringFixed(2),
			"percentage", status.Percentage.StringFixed(1),
			"transaction_id", msg.TransactionID,
			"event_id", msg.EventID)
	case core.StatusWarning:
		slog.WarnContext(ctx, "ALERT: category approaching budget limit",
			"category", status.Category,
			"spent", status.Spent.StringFixed(2),
			"limit", status.MonthlyLimit.StringFixed(2),
			"percentage", status.Percentage.StringFixed(1),
			"transaction_id", msg.TransactionID,
			"event_id", msg.EventID)
	default:
		slog.InfoContext(ctx, "Category within budget",
			"category", status.Category,
			"spent", status.Spent.StringFixed(2),
			"limit", status.MonthlyLimit.StringFixed(2))
	}

	return nil
}
