package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for the two capture-path
// collections. It implements the Repository interface.
type Storage struct {
	db *sql.DB

	mu       sync.Mutex
	watchers map[Collection]map[int]func()
	nextID   int
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{
		db:       db,
		watchers: make(map[Collection]map[int]func()),
	}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Watch registers fn to run after each successful change to the collection.
// Watchers are invoked synchronously, in registration order, outside the
// watcher lock.
func (s *Storage) Watch(c Collection, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchers[c] == nil {
		s.watchers[c] = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.watchers[c][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers[c], id)
		})
	}
}

// notify invokes all watchers registered for the collection.
func (s *Storage) notify(c Collection) {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.watchers[c]))
	for _, fn := range s.watchers[c] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SaveManualExpense inserts or replaces a manual expense
func (s *Storage) SaveManualExpense(e *ManualExpense) error {
	query := `
	INSERT OR REPLACE INTO manual_expenses
	(id, title, amount, category, type, payment_method, date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		e.ID,
		e.Title,
		e.Amount,
		e.Category,
		e.Type,
		e.PaymentMethod,
		e.Date.UTC(),
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save manual expense: %w", err)
	}

	s.notify(CollectionManualExpenses)
	return nil
}

// GetManualExpense retrieves an expense by ID. Returns nil if not found.
func (s *Storage) GetManualExpense(id string) (*ManualExpense, error) {
	query := `
	SELECT id, title, amount, category, type, payment_method, date, created_at, updated_at
	FROM manual_expenses WHERE id = ?
	`

	e := &ManualExpense{}
	err := s.db.QueryRow(query, id).Scan(
		&e.ID, &e.Title, &e.Amount, &e.Category, &e.Type, &e.PaymentMethod,
		&e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return e, nil
}

// ListManualExpenses returns all manual expenses, newest first.
func (s *Storage) ListManualExpenses() ([]*ManualExpense, error) {
	query := `
	SELECT id, title, amount, category, type, payment_method, date, created_at, updated_at
	FROM manual_expenses
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []*ManualExpense
	for rows.Next() {
		e := &ManualExpense{}
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Amount, &e.Category, &e.Type, &e.PaymentMethod,
			&e.Date, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// DeleteManualExpense removes an expense by ID
func (s *Storage) DeleteManualExpense(id string) error {
	if _, err := s.db.Exec(`DELETE FROM manual_expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete manual expense: %w", err)
	}
	s.notify(CollectionManualExpenses)
	return nil
}

// SaveScannedReceipt inserts or replaces a scanned receipt
func (s *Storage) SaveScannedReceipt(r *ScannedReceipt) error {
	query := `
	INSERT OR REPLACE INTO scanned_receipts
	(id, merchant_name, total_amount, category, payment_method, raw_text, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		r.ID,
		r.MerchantName,
		r.TotalAmount,
		r.Category,
		r.PaymentMethod,
		r.RawText,
		r.CreatedAt.UTC(),
		r.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save scanned receipt: %w", err)
	}

	s.notify(CollectionScannedReceipts)
	return nil
}

// GetScannedReceipt retrieves a receipt by ID. Returns nil if not found.
func (s *Storage) GetScannedReceipt(id string) (*ScannedReceipt, error) {
	query := `
	SELECT id, merchant_name, total_amount, category, payment_method, raw_text, created_at, updated_at
	FROM scanned_receipts WHERE id = ?
	`

	r := &ScannedReceipt{}
	err := s.db.QueryRow(query, id).Scan(
		&r.ID, &r.MerchantName, &r.TotalAmount, &r.Category, &r.PaymentMethod,
		&r.RawText, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return r, nil
}

// ListScannedReceipts returns all scanned receipts, newest first.
func (s *Storage) ListScannedReceipts() ([]*ScannedReceipt, error) {
	query := `
	SELECT id, merchant_name, total_amount, category, payment_method, raw_text, created_at, updated_at
	FROM scanned_receipts
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receipts []*ScannedReceipt
	for rows.Next() {
		r := &ScannedReceipt{}
		if err := rows.Scan(
			&r.ID, &r.MerchantName, &r.TotalAmount, &r.Category, &r.PaymentMethod,
			&r.RawText, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}

	return receipts, rows.Err()
}

// DeleteScannedReceipt removes a receipt by ID
func (s *Storage) DeleteScannedReceipt(id string) error {
	if _, err := s.db.Exec(`DELETE FROM scanned_receipts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete scanned receipt: %w", err)
	}
	s.notify(CollectionScannedReceipts)
	return nil
}
