// Package normalizer maps source-specific raw records into canonical
// transactions.
//
// Normalization is a pure function: given the same record, source tag and
// reference time it always produces the same Transaction. The reference time
// is an explicit argument (not time.Now inside) so a full reconciliation pass
// can use one fixed clock reading and stay idempotent.
package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// Boilerplate substrings stripped from titles, matched case-insensitively.
// OCR output in particular tends to carry these artifacts.
var boilerplate = []string{
	"receipt from ",
	"extracted text:",
	"receipt:",
	"transaction:",
}

// Fallback labels used when a cleaned title is empty or too short.
const (
	fallbackTitleOCR    = "Receipt Transaction"
	fallbackTitleManual = "Transaction"

	defaultPaymentMethod = "Unknown"

	minTitleLength = 2
)

// Normalize converts a raw record into a canonical Transaction.
//
// Missing optional fields never cause an error: category falls back to the
// sentinel default, payment method to "Unknown", timestamps to the supplied
// reference time. Malformed amounts are coerced to 0 so the record still
// shows up in the feed.
func Normalize(rec transaction.RawRecord, source transaction.SourceTag, now time.Time) transaction.Transaction {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	date := rec.Date
	if date.IsZero() {
		date = createdAt
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = transaction.DefaultCategory
	}

	paymentMethod := strings.TrimSpace(rec.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	txType := transaction.TypeExpense
	if source != transaction.SourceOCR && strings.EqualFold(strings.TrimSpace(rec.Type), string(transaction.TypeIncome)) {
		// Scanned receipts are always expenses; only other sources can
		// record income.
		txType = transaction.TypeIncome
	}

	return transaction.Transaction{
		ID:            transaction.NamespacedID(source, rec.ID),
		Title:         CleanTitle(rec.Title, source),
		Amount:        ParseAmount(rec.Amount),
		Category:      category,
		Type:          txType,
		Source:        source,
		PaymentMethod: paymentMethod,
		Date:          date,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// CleanTitle strips known boilerplate substrings, collapses repeated
// whitespace and trims. Titles that end up shorter than two characters are
// replaced with a generic per-source label.
func CleanTitle(raw string, source transaction.SourceTag) string {
	title := stripBoilerplate(raw)
	title = strings.Join(strings.Fields(title), " ")

	if len([]rune(title)) < minTitleLength {
		if source == transaction.SourceOCR {
			return fallbackTitleOCR
		}
		return fallbackTitleManual
	}
	return title
}

// ParseAmount parses a raw amount string into a non-negative two-decimal
// float. Currency symbols and thousands separators are tolerated; anything
// unparseable becomes 0 rather than dropping the record.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€£₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.Abs().Round(2).InexactFloat64()
}

// stripBoilerplate removes every case-insensitive occurrence of the known
// boilerplate substrings.
func stripBoilerplate(s string) string {
	for _, b := range boilerplate {
		for {
			start, end := indexFold(s, b)
			if start < 0 {
				break
			}
			s = s[:start] + s[end:]
		}
	}
	return s
}

// indexFold returns the byte bounds of the first case-insensitive occurrence
// of substr in s, or (-1, -1). Folding is done rune by rune so titles whose
// lowercase form changes byte length keep correct offsets.
func indexFold(s, substr string) (start, end int) {
	runes := []rune(s)
	n := len([]rune(substr))
	for i := 0; i+n <= len(runes); i++ {
		if strings.EqualFold(string(runes[i:i+n]), substr) {
			start = len(string(runes[:i]))
			return start, start + len(string(runes[i:i+n]))
		}
	}
	return -1, -1
}
