package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// in-memory databases straightforward.
type Repository interface {
	ManualExpenseRepository
	ScannedReceiptRepository
	Notifier
	Ping() error
	Close() error
}

// ManualExpenseRepository handles the manual capture path's collection.
type ManualExpenseRepository interface {
	// SaveManualExpense inserts or replaces a manual expense
	SaveManualExpense(e *ManualExpense) error

	// GetManualExpense retrieves an expense by ID, nil if absent
	GetManualExpense(id string) (*ManualExpense, error)

	// ListManualExpenses returns all manual expenses ordered by
	// creation time descending
	ListManualExpenses() ([]*ManualExpense, error)

	// DeleteManualExpense removes an expense by ID
	DeleteManualExpense(id string) error
}

// ScannedReceiptRepository handles the OCR capture path's collection.
type ScannedReceiptRepository interface {
	// SaveScannedReceipt inserts or replaces a scanned receipt
	SaveScannedReceipt(r *ScannedReceipt) error

	// GetScannedReceipt retrieves a receipt by ID, nil if absent
	GetScannedReceipt(id string) (*ScannedReceipt, error)

	// ListScannedReceipts returns all scanned receipts ordered by
	// creation time descending
	ListScannedReceipts() ([]*ScannedReceipt, error)

	// DeleteScannedReceipt removes a receipt by ID
	DeleteScannedReceipt(id string) error
}

// Notifier exposes the live-query side of a collection: a registered
// watcher is invoked after every successful mutation of that collection.
type Notifier interface {
	// Watch registers fn to run after each change to the collection.
	// The returned cancel func unregisters it and is safe to call more
	// than once.
	Watch(c Collection, fn func()) (cancel func())
}
