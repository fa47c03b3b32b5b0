// Package transaction defines the canonical transaction model shared by the
// capture paths and the reconciliation engine.
//
// Raw documents from the two capture paths (manual entry and OCR receipt
// scanning) have different shapes; they are carried as RawRecord until the
// normalizer maps them into Transaction, the only type that crosses the
// engine boundary.
package transaction

import (
	"fmt"
	"time"
)

// SourceTag identifies the capture path a transaction came from.
type SourceTag string

const (
	SourceManual SourceTag = "manual"
	SourceOCR    SourceTag = "ocr"

	// Reserved for future capture paths.
	SourceRecurring SourceTag = "recurring"
	SourceImport    SourceTag = "import"
)

// Type distinguishes money going out from money coming in.
type Type string

const (
	TypeExpense Type = "expense"
	TypeIncome  Type = "income"
)

// DefaultCategory is the sentinel used when a raw record carries no category.
const DefaultCategory = "Other"

// DefaultCategories is the fixed category vocabulary exposed by the API.
var DefaultCategories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Technology",
	"Health",
	"Bills & Utilities",
	"Travel",
	DefaultCategory,
}

// RawRecord is a source-specific document as read from storage, before
// normalization. Field meaning varies by source: for manual expenses Title
// is the user-entered title, for scanned receipts it is the merchant name
// and Amount is the OCR-extracted total. Amount is kept as text because OCR
// output is not guaranteed to be a clean number.
type RawRecord struct {
	ID            string
	Title         string
	Amount        string
	Category      string
	Type          string
	PaymentMethod string
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is the canonical, normalized transaction.
//
// Instances are values: the reconciler builds them fresh on every
// recomputation and subscribers must treat emitted lists as immutable.
// Identity for downstream consumers is ID, not object identity.
type Transaction struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Type          Type      `json:"type"`
	Source        SourceTag `json:"source"`
	PaymentMethod string    `json:"payment_method"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DateKey returns the calendar day used for duplicate detection.
// Time-of-day and timezone offsets are deliberately ignored.
func (t Transaction) DateKey() string {
	return t.Date.UTC().Format("2006-01-02")
}

// NamespacedID prefixes a raw document ID with its source tag so that
// otherwise-colliding IDs from different sources can never be confused.
func NamespacedID(source SourceTag, rawID string) string {
	return fmt.Sprintf("%s_%s", source, rawID)
}
