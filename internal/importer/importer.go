// Package importer loads historical expenses from a spreadsheet into the
// manual collection.
//
// The sheet is expected to have a header row; columns are located by name
// (case-insensitive): title, amount, category, type, payment method, date.
// Imported rows flow through the same reconciliation path as expenses typed
// into the app.
package importer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/finze-app/finze-backend/internal/domain/normalizer"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// Date layouts accepted in the date column, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
	"2 Jan 2006",
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
}

// Importer reads spreadsheet rows into the manual expense collection.
type Importer struct {
	repo   storage.ManualExpenseRepository
	logger *slog.Logger
}

// New creates an importer writing to the given repository.
func New(repo storage.ManualExpenseRepository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{repo: repo, logger: logger}
}

// ImportFile imports all rows of the named sheet. An empty sheet name means
// the workbook's first sheet.
func (i *Importer) ImportFile(path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}

	cols := locateColumns(rows[0])
	if cols.title < 0 || cols.amount < 0 {
		return nil, fmt.Errorf("sheet %q is missing a title or amount column", sheet)
	}

	result := &Result{}
	now := time.Now().UTC()

	for n, row := range rows[1:] {
		title := cell(row, cols.title)
		amountText := cell(row, cols.amount)
		if title == "" && amountText == "" {
			result.Skipped++
			continue
		}

		expense := &storage.ManualExpense{
			ID:            uuid.NewString(),
			Title:         title,
			Amount:        normalizer.ParseAmount(amountText),
			Category:      cell(row, cols.category),
			Type:          strings.ToLower(cell(row, cols.txType)),
			PaymentMethod: cell(row, cols.payment),
			Date:          parseDate(cell(row, cols.date), now),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := i.repo.SaveManualExpense(expense); err != nil {
			return result, fmt.Errorf("failed to import row %d: %w", n+2, err)
		}
		result.Imported++
	}

	i.logger.Info("import complete",
		slog.String("sheet", sheet),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

type columns struct {
	title    int
	amount   int
	category int
	txType   int
	payment  int
	date     int
}

// locateColumns maps header names to column indexes. Missing columns are -1.
func locateColumns(header []string) columns {
	cols := columns{title: -1, amount: -1, category: -1, txType: -1, payment: -1, date: -1}
	for idx, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title", "description", "name":
			cols.title = idx
		case "amount", "total":
			cols.amount = idx
		case "category":
			cols.category = idx
		case "type":
			cols.txType = idx
		case "payment method", "payment_method":
			cols.payment = idx
		case "date":
			cols.date = idx
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
