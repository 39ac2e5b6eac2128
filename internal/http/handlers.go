package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
	"finsight/internal/services"
)

const maxReceiptBytes = 10 << 20 // 10 MiB

type transactionRequest struct {
	Vendor      string `json:"vendor"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Vendor      string `json:"vendor"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	CreatedAt   string `json:"created_at,omitempty"`

	// Standing of the affected category after the insert, absent when
	// no budget is configured for it.
	Budget *budgetStatusResponse `json:"budget,omitempty"`
}

type budgetRequest struct {
	Category     string `json:"category"`
	MonthlyLimit string `json:"monthly_limit"`
}

type budgetStatusResponse struct {
	Category     string `json:"category"`
	MonthlyLimit string `json:"monthly_limit"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
	Percentage   string `json:"percentage"`
	Status       string `json:"status"`
}

type receiptResponse struct {
	Extracted struct {
		Vendor   string `json:"vendor"`
		Date     string `json:"date"`
		Amount   string `json:"amount"`
		Category string `json:"category"`
	} `json:"extracted"`
	Transaction transactionResponse `json:"transaction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Input
// violations are the caller's fault; everything else is ours.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toStatusResponse(st core.BudgetStatus) budgetStatusResponse {
	return budgetStatusResponse{
		Category:     st.Category,
		MonthlyLimit: st.MonthlyLimit.StringFixed(2),
		Spent:        st.Spent.StringFixed(2),
		Remaining:    st.Remaining.StringFixed(2),
		Percentage:   st.Percentage.StringFixed(1),
		Status:       string(st.Status),
	}
}

func (s *Server) toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Vendor:      t.Vendor,
		Amount:      t.Amount.StringFixed(2),
		Category:    t.Category,
		Date:        t.Date.String(),
		Description: t.Description,
		Source:      string(t.Source),
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := s.ingestion.Record(r.Context(), services.Candidate{
		Vendor:      sanitizeInput(req.Vendor),
		Amount:      strings.TrimSpace(req.Amount),
		Category:    sanitizeInput(req.Category),
		Date:        strings.TrimSpace(req.Date),
		Description: sanitizeInput(req.Description),
		Source:      core.SourceManualEntry,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction rejected", "error", err, "vendor", req.Vendor)
		writeDomainError(w, err)
		return
	}

	resp := s.toTransactionResponse(tx)
	s.attachBudgetStanding(r, &resp)

	writeJSON(w, http.StatusCreated, resp)
}

// attachBudgetStanding reports the category's post-insert standing so the
// caller gets immediate overspend feedback. Best-effort; a read failure
// never fails the already-committed insert.
func (s *Server) attachBudgetStanding(r *http.Request, resp *transactionResponse) {
	if s.evaluator == nil {
		return
	}
	st, found, err := s.evaluator.CheckSingle(r.Context(), resp.Category, decimal.Zero)
	if err != nil {
		slog.WarnContext(r.Context(), "Budget standing unavailable", "category", resp.Category, "error", err)
		return
	}
	if found {
		b := toStatusResponse(st)
		resp.Budget = &b
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	transactions, err := s.ingestion.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err, "limit", limit)
		writeDomainError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, s.toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", "PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category := sanitizeInput(req.Category)
	rawLimit := strings.TrimSpace(req.MonthlyLimit)
	if err := s.evaluator.SetBudget(r.Context(), category, rawLimit); err != nil {
		slog.ErrorContext(r.Context(), "Budget rejected", "error", err, "category", req.Category)
		writeDomainError(w, err)
		return
	}

	// Echo the stored value, not the caller's formatting.
	limit, err := core.ParseLimit(rawLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"category":      category,
		"monthly_limit": limit.StringFixed(2),
	})
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	statuses, err := s.evaluator.Summary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget summary failed", "error", err)
		writeDomainError(w, err)
		return
	}

	resp := make([]budgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		resp = append(resp, toStatusResponse(st))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "receipt extraction not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing receipt file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable receipt file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	data, raw, err := s.extractor.ExtractReceipt(r.Context(), image, mimeType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt extraction failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusBadGateway, "receipt extraction failed")
		return
	}

	// The model's category guess is untrusted; anything outside the
	// configured taxonomy lands in the fallback category.
	category := sanitizeInput(data.Category)
	if !s.ingestion.Taxonomy().Contains(category) {
		slog.InfoContext(r.Context(), "Extracted category outside taxonomy, using fallback",
			"extracted", data.Category,
			"fallback", s.fallback)
		category = s.fallback
	}

	tx, err := s.ingestion.Record(r.Context(), services.Candidate{
		Vendor:   sanitizeInput(data.Vendor),
		Amount:   data.TotalAmount.String(),
		Category: category,
		Date:     strings.TrimSpace(data.Date),
		Source:   core.SourceReceiptScan,
		RawData:  raw,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Extracted transaction rejected", "error", err, "vendor", data.Vendor)
		writeDomainError(w, err)
		return
	}

	var resp receiptResponse
	resp.Extracted.Vendor = data.Vendor
	resp.Extracted.Date = data.Date
	resp.Extracted.Amount = data.TotalAmount.String()
	resp.Extracted.Category = category
	resp.Transaction = s.toTransactionResponse(tx)
	s.attachBudgetStanding(r, &resp.Transaction)

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSampleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ids, err := s.ingestion.SeedSampleData(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Sample data seeding failed", "error", err, "inserted", len(ids))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"inserted": len(ids), "ids": ids})
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
