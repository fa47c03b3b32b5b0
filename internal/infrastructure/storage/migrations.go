package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_manual_expenses",
		Up:      migration001CreateManualExpenses,
	},
	{
		Version: 2,
		Name:    "create_scanned_receipts",
		Up:      migration002CreateScannedReceipts,
	},
	{
		Version: 3,
		Name:    "add_created_at_indexes",
		Up:      migration003AddCreatedAtIndexes,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func migration001CreateManualExpenses(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS manual_expenses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		amount REAL NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'expense',
		payment_method TEXT NOT NULL DEFAULT '',
		date TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`

	_, err := tx.Exec(query)
	return err
}

func migration002CreateScannedReceipts(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS scanned_receipts (
		id TEXT PRIMARY KEY,
		merchant_name TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`

	_, err := tx.Exec(query)
	return err
}

func migration003AddCreatedAtIndexes(tx *sql.Tx) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_manual_expenses_created_at ON manual_expenses(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scanned_receipts_created_at ON scanned_receipts(created_at DESC)`,
	}

	for _, q := range queries {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
