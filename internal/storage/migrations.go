package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 5

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
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD',
					initial_balance REAL NOT NULL DEFAULT 0,
					current_balance REAL NOT NULL DEFAULT 0,
					notes TEXT,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					parent_id INTEGER REFERENCES categories(id),
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					color TEXT,
					icon TEXT,
					is_system BOOLEAN NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE UNIQUE INDEX idx_categories_parent_name ON categories(COALESCE(parent_id, 0), name COLLATE NOCASE)`,
				`CREATE INDEX idx_categories_parent ON categories(parent_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_id INTEGER NOT NULL REFERENCES accounts(id),
					type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
					amount REAL NOT NULL CHECK (amount >= 0),
					date TEXT NOT NULL,
					payee TEXT,
					description TEXT,
					category_id INTEGER REFERENCES categories(id),
					import_id TEXT,
					bank_id TEXT,
					is_reconciled BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
				`CREATE INDEX idx_transactions_import ON transactions(import_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add budgets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					amount REAL NOT NULL CHECK (amount > 0),
					period TEXT NOT NULL,
					start_date TEXT NOT NULL,
					end_date TEXT,
					allow_rollover BOOLEAN NOT NULL DEFAULT 0,
					rollover_amount REAL NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS budget_categories (
					budget_id INTEGER NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
					category_id INTEGER NOT NULL REFERENCES categories(id),
					PRIMARY KEY (budget_id, category_id)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add income schedules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS income_schedules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					description TEXT,
					amount REAL NOT NULL CHECK (amount > 0),
					frequency TEXT NOT NULL,
					start_date TEXT NOT NULL,
					end_date TEXT,
					next_expected_date TEXT NOT NULL,
					semimonthly_day1 INTEGER,
					semimonthly_day2 INTEGER,
					account_id INTEGER REFERENCES accounts(id),
					category_id INTEGER REFERENCES categories(id),
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_income_schedules_next ON income_schedules(next_expected_date)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Add category keyword rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS category_keywords (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					keyword TEXT NOT NULL UNIQUE,
					category_id INTEGER NOT NULL REFERENCES categories(id),
					match_mode TEXT NOT NULL DEFAULT 'contains',
					priority INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME
				)`,
				`CREATE INDEX idx_category_keywords_active ON category_keywords(is_active, priority DESC)`,
			})
		},
	},
	{
		Version:     5,
		Description: "Add savings goals",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS goals (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					description TEXT,
					target_amount REAL NOT NULL CHECK (target_amount > 0),
					current_amount REAL NOT NULL DEFAULT 0 CHECK (current_amount >= 0),
					account_id INTEGER REFERENCES accounts(id),
					start_date TEXT NOT NULL,
					target_date TEXT NOT NULL,
					completed_date TEXT,
					status TEXT NOT NULL DEFAULT 'in_progress'
						CHECK (status IN ('not_started', 'in_progress', 'completed', 'paused', 'cancelled')),
					priority INTEGER NOT NULL DEFAULT 1 CHECK (priority BETWEEN 1 AND 5),
					color TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME
				)`,
				`CREATE INDEX idx_goals_account ON goals(account_id)`,
				`CREATE INDEX idx_goals_target_date ON goals(target_date)`,
			})
		},
	},
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

	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
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

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
