package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/seed"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	status, _ := cmd.Flags().GetBool("status")

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		writeln(out, cli.FormatTitle("Database Migration Status"))
		writef(out, "  Database: %s\n", cfg.Database.Path)
		writef(out, "  Current version: %d\n", current)
		writef(out, "  Latest version:  %d\n", storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			writeln(out, cli.FormatWarning("Migrations pending. Run 'spice migrate'."))
		}
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.Database.Path, "from_version", current)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	writeln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the database and install the default categories",
		Long: `Migrate the database and install the preset two-level category tree.

Running setup again only adds categories that are missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := seed.Apply(ctx, store, seed.PresetCategories)
			if err != nil {
				return fmt.Errorf("failed to install categories: %w", err)
			}

			if created == 0 {
				writeln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Default categories already installed."))
				return nil
			}
			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Installed %d categories", created)))
			return nil
		},
	}
}
