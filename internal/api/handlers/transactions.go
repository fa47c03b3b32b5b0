package handlers

import (
	"net/http"
	"strings"

	"github.com/finze-app/finze-backend/internal/api/dto"
	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// TransactionsHandler serves the reconciled transaction feed.
type TransactionsHandler struct {
	feed ReconciledFeed
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(feed ReconciledFeed) *TransactionsHandler {
	return &TransactionsHandler{feed: feed}
}

// List handles GET /api/transactions - the de-duplicated, date-descending
// feed merged from both capture paths.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 50)
	if limit < 0 {
		limit = 50
	}
	offset := ParseIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	search := strings.ToLower(r.URL.Query().Get("search"))
	source := r.URL.Query().Get("source")

	all := h.feed.Current()

	filtered := make([]transaction.Transaction, 0, len(all))
	for _, t := range all {
		if source != "" && string(t.Source) != source {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		filtered = append(filtered, t)
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := filtered[offset:end]

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(page)),
		TotalCount:   total,
		Limit:        limit,
		Offset:       offset,
		HasMore:      end < total,
	}
	for _, t := range page {
		response.Transactions = append(response.Transactions, dto.ToTransactionResponse(t))
	}

	WriteJSON(w, http.StatusOK, response)
}

// Stats handles GET /api/stats - aggregate numbers over the reconciled feed.
func (h *TransactionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	all := h.feed.Current()

	stats := dto.StatsResponse{
		TotalCount: len(all),
		BySource:   make(map[string]int),
	}
	for _, t := range all {
		stats.BySource[string(t.Source)]++
		if t.Type == transaction.TypeIncome {
			stats.TotalIncome += t.Amount
		} else {
			stats.TotalExpense += t.Amount
		}
	}

	WriteJSON(w, http.StatusOK, stats)
}

// Categories handles GET /api/categories - the fixed category vocabulary.
func (h *TransactionsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.CategoriesResponse{
		Categories: transaction.DefaultCategories,
	})
}
