package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleExpense(id string, createdAt time.Time) *ManualExpense {
	return &ManualExpense{
		ID:            id,
		Title:         "Lunch",
		Amount:        250,
		Category:      "Food & Dining",
		Type:          "expense",
		PaymentMethod: "UPI",
		Date:          createdAt,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestStorage_Ping(t *testing.T) {
	s := newTestStorage(t)
	assert.NoError(t, s.Ping())
}

func TestManualExpense_SaveAndGet(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	e := sampleExpense("m1", now)

	// Act
	require.NoError(t, s.SaveManualExpense(e))
	got, err := s.GetManualExpense("m1")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lunch", got.Title)
	assert.Equal(t, 250.0, got.Amount)
	assert.Equal(t, "expense", got.Type)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestManualExpense_GetMissing(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetManualExpense("nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManualExpense_SaveReplaces(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	e := sampleExpense("m1", now)
	require.NoError(t, s.SaveManualExpense(e))

	e.Title = "Team lunch"
	e.Amount = 800
	require.NoError(t, s.SaveManualExpense(e))

	got, err := s.GetManualExpense("m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Team lunch", got.Title)
	assert.Equal(t, 800.0, got.Amount)

	all, err := s.ListManualExpenses()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestManualExpense_ListNewestFirst(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveManualExpense(sampleExpense("old", base)))
	require.NoError(t, s.SaveManualExpense(sampleExpense("new", base.Add(48*time.Hour))))
	require.NoError(t, s.SaveManualExpense(sampleExpense("mid", base.Add(24*time.Hour))))

	all, err := s.ListManualExpenses()

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)
}

func TestManualExpense_Delete(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveManualExpense(sampleExpense("m1", now)))

	require.NoError(t, s.DeleteManualExpense("m1"))

	got, err := s.GetManualExpense("m1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScannedReceipt_SaveAndGet(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC)
	r := &ScannedReceipt{
		ID:            "s1",
		MerchantName:  "Big Bazaar",
		TotalAmount:   "$1,234.50",
		Category:      "Shopping",
		PaymentMethod: "Card",
		RawText:       "BIG BAZAAR\nTOTAL $1,234.50",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	require.NoError(t, s.SaveScannedReceipt(r))
	got, err := s.GetScannedReceipt("s1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Big Bazaar", got.MerchantName)
	assert.Equal(t, "$1,234.50", got.TotalAmount, "raw OCR text survives storage untouched")
	assert.Equal(t, "BIG BAZAAR\nTOTAL $1,234.50", got.RawText)
}

func TestScannedReceipt_ListAndDelete(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC)

	for i, id := range []string{"s1", "s2"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.SaveScannedReceipt(&ScannedReceipt{
			ID: id, MerchantName: "Shop", TotalAmount: "10.00",
			CreatedAt: ts, UpdatedAt: ts,
		}))
	}

	all, err := s.ListScannedReceipts()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "s2", all[0].ID)

	require.NoError(t, s.DeleteScannedReceipt("s2"))
	all, err = s.ListScannedReceipts()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "s1", all[0].ID)
}

func TestWatch_FiresOnMutation(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	var manualFires, receiptFires int
	cancel := s.Watch(CollectionManualExpenses, func() { manualFires++ })
	defer cancel()
	cancelReceipts := s.Watch(CollectionScannedReceipts, func() { receiptFires++ })
	defer cancelReceipts()

	require.NoError(t, s.SaveManualExpense(sampleExpense("m1", now)))
	require.NoError(t, s.DeleteManualExpense("m1"))

	assert.Equal(t, 2, manualFires, "save and delete each notify")
	assert.Equal(t, 0, receiptFires, "watchers are per collection")
}

func TestWatch_CancelStopsNotifications(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	var fires int
	cancel := s.Watch(CollectionManualExpenses, func() { fires++ })

	require.NoError(t, s.SaveManualExpense(sampleExpense("m1", now)))
	require.Equal(t, 1, fires)

	cancel()
	cancel() // safe to call twice

	require.NoError(t, s.SaveManualExpense(sampleExpense("m2", now)))
	assert.Equal(t, 1, fires)
}

func TestMigrations_Idempotent(t *testing.T) {
	// Reopening the same database must not re-run applied migrations
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s1, err := NewStorage(path)
	require.NoError(t, err)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s1.SaveManualExpense(sampleExpense("m1", now)))
	require.NoError(t, s1.Close())

	s2, err := NewStorage(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	all, err := s2.ListManualExpenses()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
