// Package sources adapts the storage collections into push-based snapshot
// feeds for the reconciliation engine.
//
// An Adapter wraps a live query against one collection, ordered by creation
// time descending. On every underlying change it delivers the complete
// current record list (never a diff) to its consumer. Query failures are
// fail-open: the consumer gets an empty snapshot and an error log, so one
// broken source never blocks the other source's data.
package sources

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/finze-app/finze-backend/internal/domain/transaction"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// SnapshotFunc receives the complete current record list for one source.
// An alias so consumers can accept plain funcs of the same shape.
type SnapshotFunc = func(records []transaction.RawRecord)

// ManualStore is the slice of the storage layer the manual adapter needs.
// storage.Repository satisfies it.
type ManualStore interface {
	ListManualExpenses() ([]*storage.ManualExpense, error)
	Watch(c storage.Collection, fn func()) (cancel func())
}

// ReceiptStore is the slice of the storage layer the OCR adapter needs.
type ReceiptStore interface {
	ListScannedReceipts() ([]*storage.ScannedReceipt, error)
	Watch(c storage.Collection, fn func()) (cancel func())
}

// Adapter is a push-based subscription to a single collection.
type Adapter struct {
	source transaction.SourceTag
	logger *slog.Logger
	query  func() ([]transaction.RawRecord, error)
	watch  func(fn func()) (cancel func())

	mu          sync.Mutex
	started     bool
	stopped     bool
	cancelWatch func()
	deliver     SnapshotFunc
}

// NewManualAdapter creates the adapter for the manual-entry capture path.
func NewManualAdapter(repo ManualStore, logger *slog.Logger) *Adapter {
	return &Adapter{
		source: transaction.SourceManual,
		logger: logger,
		query: func() ([]transaction.RawRecord, error) {
			expenses, err := repo.ListManualExpenses()
			if err != nil {
				return nil, err
			}
			records := make([]transaction.RawRecord, 0, len(expenses))
			for _, e := range expenses {
				records = append(records, manualToRaw(e))
			}
			return records, nil
		},
		watch: func(fn func()) func() {
			return repo.Watch(storage.CollectionManualExpenses, fn)
		},
	}
}

// NewOCRAdapter creates the adapter for the receipt-scanning capture path.
func NewOCRAdapter(repo ReceiptStore, logger *slog.Logger) *Adapter {
	return &Adapter{
		source: transaction.SourceOCR,
		logger: logger,
		query: func() ([]transaction.RawRecord, error) {
			receipts, err := repo.ListScannedReceipts()
			if err != nil {
				return nil, err
			}
			records := make([]transaction.RawRecord, 0, len(receipts))
			for _, r := range receipts {
				records = append(records, receiptToRaw(r))
			}
			return records, nil
		},
		watch: func(fn func()) func() {
			return repo.Watch(storage.CollectionScannedReceipts, fn)
		},
	}
}

// Source returns the capture path this adapter feeds.
func (a *Adapter) Source() transaction.SourceTag {
	return a.source
}

// Start subscribes and delivers the initial snapshot, then redelivers the
// full list on every underlying change. Calling Start on a started or
// stopped adapter is a no-op.
func (a *Adapter) Start(deliver SnapshotFunc) {
	a.mu.Lock()
	if a.started || a.stopped {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.deliver = deliver
	a.cancelWatch = a.watch(a.onChange)
	a.mu.Unlock()

	// Initial snapshot
	a.onChange()
}

// Stop cancels the subscription. Idempotent; it blocks until any delivery
// in flight completes, so no deliveries happen after it returns.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	a.stopped = true
	if a.cancelWatch != nil {
		a.cancelWatch()
		a.cancelWatch = nil
	}
	a.deliver = nil
}

// onChange runs the full query and pushes the result to the consumer.
// The lock is held through the delivery so Stop cannot return while a
// delivery is in flight.
func (a *Adapter) onChange() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped || a.deliver == nil {
		return
	}

	records, err := a.query()
	if err != nil {
		// Fail open: an unreadable source contributes an empty snapshot
		// instead of taking the whole feed down.
		a.logger.Error("source query failed, delivering empty snapshot",
			slog.String("source", string(a.source)),
			slog.Any("error", err))
		records = []transaction.RawRecord{}
	}

	a.deliver(records)
}

func manualToRaw(e *storage.ManualExpense) transaction.RawRecord {
	return transaction.RawRecord{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        strconv.FormatFloat(e.Amount, 'f', 2, 64),
		Category:      e.Category,
		Type:          e.Type,
		PaymentMethod: e.PaymentMethod,
		Date:          e.Date,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// receiptToRaw maps a scanned receipt. The record date is the scan time,
// not the purchase date printed on the receipt.
func receiptToRaw(r *storage.ScannedReceipt) transaction.RawRecord {
	return transaction.RawRecord{
		ID:            r.ID,
		Title:         r.MerchantName,
		Amount:        r.TotalAmount,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Date:          r.CreatedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
