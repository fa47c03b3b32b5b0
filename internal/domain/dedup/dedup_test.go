package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// Helper to create a test transaction
func makeTx(id, title string, amount float64, date time.Time) transaction.Transaction {
	return transaction.Transaction{
		ID:     id,
		Title:  title,
		Amount: amount,
		Date:   date,
	}
}

var day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestDetector_MatchingPair(t *testing.T) {
	// Manual entry and its scanned receipt: same amount, same day,
	// title contained in the other.
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Swiggy order", 250, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Swiggy", 250.00, day.Add(9*time.Hour)), accepted)

	assert.True(t, dup)
}

func TestDetector_AmountMismatch(t *testing.T) {
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Lunch", 250, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Lunch", 500, day), accepted)

	assert.False(t, dup)
}

func TestDetector_AmountAtTolerance(t *testing.T) {
	// The epsilon is strict: exactly one cent apart is not a duplicate.
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Coffee", 100.00, day),
	}

	assert.False(t, d.IsDuplicate(makeTx("ocr_1", "Coffee", 100.01, day), accepted))
	assert.True(t, d.IsDuplicate(makeTx("ocr_2", "Coffee", 100.005, day), accepted))
}

func TestDetector_DateMismatch(t *testing.T) {
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Coffee", 100, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Coffee", 100, day.AddDate(0, 0, 1)), accepted)

	assert.False(t, dup)
}

func TestDetector_TimeOfDayIgnored(t *testing.T) {
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Coffee", 100, day.Add(8*time.Hour)),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Coffee", 100, day.Add(22*time.Hour)), accepted)

	assert.True(t, dup)
}

func TestDetector_SubstringTitles(t *testing.T) {
	// "Coffee" is a substring of "Coffee Shop Receipt" after lowering.
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Coffee", 100, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Coffee Shop Receipt", 100, day), accepted)

	assert.True(t, dup)
}

func TestDetector_DissimilarTitles(t *testing.T) {
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Gym membership", 250, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Swiggy order", 250, day), accepted)

	assert.False(t, dup)
}

func TestDetector_FallbackTitlesAreDuplicates(t *testing.T) {
	// Two records whose titles were empty before normalization end up
	// with the generic labels; same amount and day must collapse.
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Transaction", 80, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "Receipt Transaction", 80, day), accepted)

	assert.True(t, dup)
}

func TestDetector_EmptyTitles(t *testing.T) {
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "", 80, day),
	}

	dup := d.IsDuplicate(makeTx("ocr_1", "", 80, day), accepted)

	assert.True(t, dup)
}

func TestDetector_OneEmptyTitle(t *testing.T) {
	// An empty title must not swallow a real one: "" is a substring of
	// everything, but that is not a match.
	d := NewDetector(DefaultConfig())
	accepted := []transaction.Transaction{
		makeTx("manual_1", "Swiggy order", 80, day),
	}

	assert.False(t, d.IsDuplicate(makeTx("ocr_1", "", 80, day), accepted))
	assert.False(t, d.IsDuplicate(makeTx("ocr_2", "   ", 80, day), accepted))
}

func TestFilter_FirstSeenWins(t *testing.T) {
	// Arrange
	d := NewDetector(DefaultConfig())
	candidates := []transaction.Transaction{
		makeTx("manual_1", "Swiggy order", 250, day),
		makeTx("ocr_1", "Receipt from Swiggy", 250, day),
		makeTx("manual_2", "Lunch", 250, day),
	}

	// Act
	accepted := d.Filter(candidates)

	// Assert - the earlier duplicate survives, the unrelated entry stays
	assert.Len(t, accepted, 2)
	assert.Equal(t, "manual_1", accepted[0].ID)
	assert.Equal(t, "manual_2", accepted[1].ID)
}

func TestFilter_KeepsDistinctSameAmountSameDay(t *testing.T) {
	// Legitimately distinct purchases sharing amount and date must both
	// survive when titles differ enough.
	d := NewDetector(DefaultConfig())
	candidates := []transaction.Transaction{
		makeTx("manual_1", "Morning coffee", 120, day),
		makeTx("manual_2", "Parking ticket", 120, day),
	}

	accepted := d.Filter(candidates)

	assert.Len(t, accepted, 2)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical", a: "coffee", b: "coffee", expected: 1.0},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "completely different", a: "abc", b: "xyz", expected: 0.0},
		{name: "one edit", a: "swiggy", b: "swigy", expected: 5.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 0.0001)
		})
	}
}

func TestSimilarity_AboveThresholdPair(t *testing.T) {
	// "swiggy order" vs "swiggy orders": 12 vs 13 runes, distance 1.
	sim := Similarity("swiggy order", "swiggy orders")
	assert.Greater(t, sim, 0.7)
}
