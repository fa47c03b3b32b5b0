package importer

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// memRepo is an in-memory ManualExpenseRepository capturing saves in order.
type memRepo struct {
	saved   []*storage.ManualExpense
	saveErr error
}

func (m *memRepo) SaveManualExpense(e *storage.ManualExpense) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, e)
	return nil
}

func (m *memRepo) GetManualExpense(id string) (*storage.ManualExpense, error) { return nil, nil }

func (m *memRepo) ListManualExpenses() ([]*storage.ManualExpense, error) { return m.saved, nil }

func (m *memRepo) DeleteManualExpense(id string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeWorkbook builds an xlsx file with a header row and the given rows.
func writeWorkbook(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		addr, err := excelize.JoinCellName("A", i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &row))
	}

	path := filepath.Join(t.TempDir(), "expenses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportFile(t *testing.T) {
	// Arrange
	path := writeWorkbook(t,
		[]string{"Title", "Amount", "Category", "Type", "Payment Method", "Date"},
		[][]string{
			{"Swiggy order", "250.00", "Food & Dining", "Expense", "UPI", "2024-05-01"},
			{"Salary", "50000", "", "Income", "", "2024-05-02"},
		},
	)
	repo := &memRepo{}

	// Act
	result, err := New(repo, discardLogger()).ImportFile(path, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, repo.saved, 2)

	first := repo.saved[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Swiggy order", first.Title)
	assert.Equal(t, 250.0, first.Amount)
	assert.Equal(t, "Food & Dining", first.Category)
	assert.Equal(t, "expense", first.Type)
	assert.Equal(t, "UPI", first.PaymentMethod)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), first.Date)

	assert.Equal(t, "income", repo.saved[1].Type)
	assert.Equal(t, 50000.0, repo.saved[1].Amount)
}

func TestImportFile_SkipsBlankRows(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Title", "Amount"},
		[][]string{
			{"Lunch", "120"},
			{"", ""},
			{"Dinner", "340"},
		},
	)
	repo := &memRepo{}

	result, err := New(repo, discardLogger()).ImportFile(path, "")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportFile_HeaderAliasesAndCurrency(t *testing.T) {
	// Alternate header names and formatted amounts still import
	path := writeWorkbook(t,
		[]string{"Description", "Total", "Date"},
		[][]string{
			{"Big Bazaar", "$1,234.50", "03/05/2024"},
		},
	)
	repo := &memRepo{}

	result, err := New(repo, discardLogger()).ImportFile(path, "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Big Bazaar", repo.saved[0].Title)
	assert.Equal(t, 1234.50, repo.saved[0].Amount)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), repo.saved[0].Date)
}

func TestImportFile_UnparseableDateFallsBack(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Title", "Amount", "Date"},
		[][]string{
			{"Lunch", "120", "sometime last week"},
		},
	)
	repo := &memRepo{}

	before := time.Now().UTC()
	_, err := New(repo, discardLogger()).ImportFile(path, "")

	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.False(t, repo.saved[0].Date.Before(before))
}

func TestImportFile_MissingRequiredColumns(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Category", "Date"},
		[][]string{{"Food & Dining", "2024-05-01"}},
	)

	_, err := New(&memRepo{}, discardLogger()).ImportFile(path, "")

	assert.Error(t, err)
}

func TestImportFile_MissingFile(t *testing.T) {
	_, err := New(&memRepo{}, discardLogger()).ImportFile(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	assert.Error(t, err)
}
