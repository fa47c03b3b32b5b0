package dto

// CreateExpenseRequest is the body for POST /api/expenses.
type CreateExpenseRequest struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category,omitempty"`
	Type          string  `json:"type,omitempty"` // "expense" (default) or "income"
	PaymentMethod string  `json:"payment_method,omitempty"`
	Date          string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// CreateReceiptRequest is the body for POST /api/receipts.
// TotalAmount is the raw OCR text; it is parsed downstream.
type CreateReceiptRequest struct {
	MerchantName  string `json:"merchant_name"`
	TotalAmount   string `json:"total_amount"`
	Category      string `json:"category,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	RawText       string `json:"raw_text,omitempty"`
}
