package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/recipebook/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the local recipe database to the latest schema.

Every other command migrates automatically; this one is useful for checking
the schema version or preparing a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", cfg.DatabasePath,
		"status_only", status)

	// Create storage instance
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if status {
		_, err := fmt.Fprintf(out, "Database: %s\nCurrent version: %d\nLatest version: %d\n",
			cfg.DatabasePath, current, storage.ExpectedSchemaVersion)
		return err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	after, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	slog.Info("Database migrations completed", "from", current, "to", after)
	_, err = fmt.Fprintf(out, "Database %s is at schema version %d\n", cfg.DatabasePath, after)
	return err
}
