package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceManualEntry SourceType = "manual_entry"
	SourceReceiptScan SourceType = "receipt_scan"
	SourceSampleData  SourceType = "sample_data"
)

const (
	StatusOnTrack    Status = "on_track"
	StatusWarning    Status = "warning"
	StatusOverBudget Status = "over_budget"
)

type (
	// SourceType records how a transaction entered the ledger.
	SourceType string

	// Status classifies current-month spend against a budget limit.
	Status string

	// Date is a calendar date with no time-of-day semantics.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Vendor      string
		Amount      decimal.Decimal
		Category    string
		Date        Date
		Description string
		IsRecurring bool // reserved, never read by evaluation
		Source      SourceType
		RawData     []byte // opaque audit payload, never interpreted
		CreatedAt   time.Time
	}

	Budget struct {
		Category     string
		MonthlyLimit decimal.Decimal
		CreatedAt    time.Time
	}

	// BudgetStatus is derived on demand, never persisted.
	BudgetStatus struct {
		Category     string
		MonthlyLimit decimal.Decimal
		Spent        decimal.Decimal
		Remaining    decimal.Decimal
		Percentage   decimal.Decimal
		Status       Status
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyVendor     = errors.New("empty vendor")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNegativeLimit   = errors.New("negative monthly limit")
	ErrInvalidDate     = errors.New("invalid transaction date")
	ErrInvalidSource   = errors.New("invalid source type")

	// ErrPersistence marks failures of the underlying store. Callers must
	// treat it as "not recorded", never as partial success.
	ErrPersistence = errors.New("persistence failure")
)

// IsValidation reports whether err belongs to the validation taxonomy,
// i.e. the caller can recover by correcting input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyVendor) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrNegativeLimit) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidSource)
}

func (s SourceType) IsValid() bool {
	switch s {
	case SourceManualEntry, SourceReceiptScan, SourceSampleData:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// InMonth reports whether the date falls within the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && int(d.Month()) == month
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Vendor) == "" {
		return ErrEmptyVendor
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrUnknownCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Source.IsValid() {
		return ErrInvalidSource
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrUnknownCategory
	}
	if b.MonthlyLimit.IsNegative() || !CentExact(b.MonthlyLimit) {
		return ErrNegativeLimit
	}
	return nil
}

var (
	eighty  = decimal.NewFromInt(80)
	hundred = decimal.NewFromInt(100)
)

// Classify computes the spend percentage and status for a budget limit.
//
// A zero limit resolves to percentage 0 and on_track; this is a policy
// choice to avoid division by zero, not a derived fact. The tie-break
// order matters: exactly 100% is warning, not over_budget.
func Classify(limit, spent decimal.Decimal) (decimal.Decimal, Status) {
	if limit.IsZero() {
		return decimal.Zero, StatusOnTrack
	}
	pct := spent.Div(limit).Mul(hundred)
	switch {
	case pct.GreaterThan(hundred):
		return pct, StatusOverBudget
	case pct.GreaterThan(eighty):
		return pct, StatusWarning
	default:
		return pct, StatusOnTrack
	}
}

// NewBudgetStatus derives the full status row for a budget and its
// current-month spend.
func NewBudgetStatus(b Budget, spent decimal.Decimal) BudgetStatus {
	pct, status := Classify(b.MonthlyLimit, spent)
	return BudgetStatus{
		Category:     b.Category,
		MonthlyLimit: b.MonthlyLimit,
		Spent:        spent,
		Remaining:    b.MonthlyLimit.Sub(spent),
		Percentage:   pct,
		Status:       status,
	}
}
