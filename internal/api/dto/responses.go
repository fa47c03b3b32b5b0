package dto

import (
	"time"

	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse(services map[string]string) HealthResponse {
	status := "ok"
	for _, s := range services {
		if s != "healthy" {
			status = "degraded"
		}
	}
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}
}

// TransactionResponse represents a reconciled transaction in API responses.
type TransactionResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Type          string  `json:"type"`
	Source        string  `json:"source"`
	PaymentMethod string  `json:"payment_method"`
	Date          string  `json:"date"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// TransactionListResponse is the paginated reconciled feed.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	TotalCount   int                   `json:"total_count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	HasMore      bool                  `json:"has_more"`
}

// ToTransactionResponse maps a canonical transaction to its API shape.
func ToTransactionResponse(t transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		Title:         t.Title,
		Amount:        t.Amount,
		Category:      t.Category,
		Type:          string(t.Type),
		Source:        string(t.Source),
		PaymentMethod: t.PaymentMethod,
		Date:          t.Date.UTC().Format("2006-01-02"),
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// CategoriesResponse lists the category vocabulary.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// StatsResponse summarizes the reconciled feed.
type StatsResponse struct {
	TotalCount   int            `json:"total_count"`
	TotalExpense float64        `json:"total_expense"`
	TotalIncome  float64        `json:"total_income"`
	BySource     map[string]int `json:"by_source"`
}
