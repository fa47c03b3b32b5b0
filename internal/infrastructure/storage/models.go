package storage

import "time"

// Collection identifies one of the live record collections.
type Collection string

const (
	CollectionManualExpenses  Collection = "manual_expenses"
	CollectionScannedReceipts Collection = "scanned_receipts"
)

// ManualExpense is a typed-in expense as stored.
type ManualExpense struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	PaymentMethod string    `json:"payment_method"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScannedReceipt is an OCR-captured receipt as stored.
//
// TotalAmount is kept as the raw OCR text. Parsing happens downstream so a
// bad scan still produces a stored record. The displayed date for a receipt
// is the scan time (CreatedAt), not the purchase date printed on the paper.
type ScannedReceipt struct {
	ID            string    `json:"id"`
	MerchantName  string    `json:"merchant_name"`
	TotalAmount   string    `json:"total_amount"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	RawText       string    `json:"raw_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
