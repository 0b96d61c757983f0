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

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS recipes (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					publisher TEXT NOT NULL DEFAULT '',
					featured_image TEXT NOT NULL DEFAULT '',
					rating INTEGER NOT NULL DEFAULT 0,
					source_url TEXT NOT NULL DEFAULT '',
					ingredients TEXT NOT NULL DEFAULT '[]',
					date_added TEXT NOT NULL DEFAULT '',
					date_updated TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_recipes_title ON recipes(title)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add description, instructions and epoch timestamps",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE recipes ADD COLUMN description TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE recipes ADD COLUMN cooking_instructions TEXT`,
				`ALTER TABLE recipes ADD COLUMN long_date_added INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE recipes ADD COLUMN long_date_updated INTEGER NOT NULL DEFAULT 0`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Track when each recipe was last cached",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE recipes ADD COLUMN cached_at DATETIME`,
				`UPDATE recipes SET cached_at = CURRENT_TIMESTAMP WHERE cached_at IS NULL`,
				`CREATE INDEX idx_recipes_cached_at ON recipes(cached_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= version {
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

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
