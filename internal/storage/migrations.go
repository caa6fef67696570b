package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					type TEXT NOT NULL,
					closed INTEGER NOT NULL DEFAULT 0,
					exclude_from_budget INTEGER NOT NULL DEFAULT 0,
					exclude_from_total INTEGER NOT NULL DEFAULT 0
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					parent_id INTEGER REFERENCES categories(id)
				)`,
				`CREATE UNIQUE INDEX idx_categories_top_name ON categories(name) WHERE parent_id IS NULL`,
				`CREATE UNIQUE INDEX idx_categories_sub_name ON categories(parent_id, name) WHERE parent_id IS NOT NULL`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date TEXT NOT NULL,
					amount INTEGER NOT NULL,
					info TEXT NOT NULL DEFAULT '',
					account_id INTEGER NOT NULL REFERENCES accounts(id),
					category_id INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id, date)`,

				`CREATE TABLE IF NOT EXISTS records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					amount INTEGER NOT NULL,
					category_id INTEGER NOT NULL,
					type TEXT NOT NULL,
					day INTEGER NOT NULL DEFAULT 0,
					month INTEGER NOT NULL,
					year INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_records_period ON records(year, month)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add import hash for de-duplication",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE transactions ADD COLUMN hash TEXT`,
				`CREATE UNIQUE INDEX idx_transactions_hash ON transactions(hash) WHERE hash IS NOT NULL`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add snapshot metadata table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS snapshot_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto INTEGER NOT NULL DEFAULT 0
				)
			`)
			return err
		},
	},
}

// SchemaVersion returns the version recorded in the database file.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
