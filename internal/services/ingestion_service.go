package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/internal/core"
)

// Candidate is unvalidated incoming transaction data, whether typed by a
// user or proposed by the receipt-extraction collaborator. Amount and
// date arrive as raw text and are parsed here.
type Candidate struct {
	Vendor      string
	Amount      string
	Category    string
	Date        string
	Description string
	Source      core.SourceType
	RawData     []byte
}

// Ingestion validates and normalizes candidates before writing them to
// the ledger store. All validation passes before any store write; on
// success it publishes a transaction-recorded event for the alert worker.
type Ingestion struct {
	ledger    LedgerStore
	taxonomy  *core.Taxonomy
	publisher AlertPublisher // nil when AMQP is not configured

	now func() time.Time
}

func NewIngestion(ledger LedgerStore, taxonomy *core.Taxonomy, publisher AlertPublisher) *Ingestion {
	return &Ingestion{
		ledger:    ledger,
		taxonomy:  taxonomy,
		publisher: publisher,
		now:       time.Now,
	}
}

// Taxonomy returns the configured category set.
func (s *Ingestion) Taxonomy() *core.Taxonomy {
	return s.taxonomy
}

// Record validates the candidate and appends it to the ledger, returning
// the stored transaction with its generated id.
//
// An unparseable date is substituted with the current date and logged;
// that is a documented fallback, not silent data loss. Every other
// violation rejects the candidate before any write happens.
func (s *Ingestion) Record(ctx context.Context, c Candidate) (core.Transaction, error) {
	vendor := strings.TrimSpace(c.Vendor)
	if vendor == "" {
		return core.Transaction{}, core.ErrEmptyVendor
	}

	amount, err := core.ParseAmount(c.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	category := strings.TrimSpace(c.Category)
	if !s.taxonomy.Contains(category) {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}

	date, err := core.ParseDate(c.Date)
	if err != nil {
		date = core.DateOf(s.now())
		slog.WarnContext(ctx, "Unparseable transaction date, substituting today",
			"raw_date", c.Date,
			"substituted", date.String(),
			"vendor", vendor)
	}

	source := c.Source
	if source == "" {
		source = core.SourceReceiptScan
	}
	if !source.IsValid() {
		return core.Transaction{}, core.ErrInvalidSource
	}

	t := core.Transaction{
		Vendor:      vendor,
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: strings.TrimSpace(c.Description),
		Source:      source,
		RawData:     c.RawData,
	}

	id, err := s.ledger.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}
	t.ID = id

	s.publishRecorded(ctx, t)

	return t, nil
}

// Recent returns transactions in reverse chronological order, capped at
// limit. A limit of zero means no cap.
func (s *Ingestion) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.ledger.ListTransactions(ctx, limit)
}

// SeedSampleData inserts a handful of demo transactions through the
// normal validation path, tagged with sample_data provenance.
func (s *Ingestion) SeedSampleData(ctx context.Context) ([]int64, error) {
	today := core.DateOf(s.now()).String()
	samples := []Candidate{
		{Vendor: "Starbucks", Amount: "12.50", Category: "Executive Lunch", Date: today, Description: "Coffee and pastry"},
		{Vendor: "Uber", Amount: "23.75", Category: "Transportation", Date: today, Description: "Ride to downtown"},
		{Vendor: "Amazon", Amount: "45.99", Category: "Shopping", Date: today, Description: "Books and supplies"},
		{Vendor: "Netflix", Amount: "15.99", Category: "IT & Software", Date: today, Description: "Monthly subscription"},
	}

	ids := make([]int64, 0, len(samples))
	for _, c := range samples {
		c.Source = core.SourceSampleData
		tx, err := s.Record(ctx, c)
		if err != nil {
			return ids, fmt.Errorf("seed sample data: %w", err)
		}
		ids = append(ids, tx.ID)
	}
	return ids, nil
}

func (s *Ingestion) publishRecorded(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	// Best-effort: the transaction is already durable, an alert that
	// never fires must not fail the request.
	if err := s.publisher.PublishTransactionRecorded(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction-recorded event",
			"id", t.ID,
			"category", t.Category,
			"error", err)
	}
}
