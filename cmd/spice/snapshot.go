package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Manage database snapshots",
		Long: `Create, list, restore, and delete database snapshots.

Snapshots save the whole database before risky changes. Imports and
recategorize runs take one automatically; the five newest automatic
snapshots are kept.`,
		Example: `  # Save the database before cleaning up categories
  spice snapshot create before-cleanup -d "pre category cleanup"

  # List all snapshots
  spice snapshot list

  # Roll back
  spice snapshot restore before-cleanup`,
	}

	cmd.AddCommand(createSnapshotCmd())
	cmd.AddCommand(listSnapshotsCmd())
	cmd.AddCommand(restoreSnapshotCmd())
	cmd.AddCommand(deleteSnapshotCmd())

	return cmd
}

func openSnapshots(ctx context.Context) (*storage.SQLiteStorage, *storage.SnapshotManager, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	manager, err := store.NewSnapshotManager()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create snapshot manager: %w", err)
	}
	return store, manager, nil
}

func createSnapshotCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, manager, err := openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id := "manual-" + time.Now().Format("20060102-150405")
			if len(args) == 1 {
				id = args[0]
			}

			info, err := manager.Create(ctx, id, description)
			if err != nil {
				return fmt.Errorf("failed to create snapshot: %w", err)
			}

			writef(cmd.OutOrStdout(), "%s Created snapshot %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.BoldStyle.Render(info.ID),
				formatFileSize(info.FileSize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the snapshot")

	return cmd
}

func listSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, manager, err := openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshots, err := manager.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list snapshots: %w", err)
			}
			if len(snapshots) == 0 {
				writeln(out, cli.SubtleStyle.Render("No snapshots found."))
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			writeln(w, strings.Join([]string{
				cli.BoldStyle.Render("NAME"),
				cli.BoldStyle.Render("CREATED"),
				cli.BoldStyle.Render("SIZE"),
				cli.BoldStyle.Render("TRANSACTIONS"),
				cli.BoldStyle.Render("TYPE"),
				cli.BoldStyle.Render("DESCRIPTION"),
			}, "\t"))
			for _, s := range snapshots {
				typeLabel := "manual"
				if s.IsAuto {
					typeLabel = "auto"
				}
				writef(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					s.ID,
					formatRelativeTime(s.CreatedAt, now),
					formatFileSize(s.FileSize),
					s.RowCounts["transactions"],
					cli.SubtleStyle.Render(typeLabel),
					s.Description)
			}
			return w.Flush()
		},
	}
}

func restoreSnapshotCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, manager, err := openSnapshots(ctx)
			if err != nil {
				return err
			}
			// Restore closes the database itself; this covers the early returns.
			defer func() { _ = store.Close() }()

			if !force {
				writef(out, "%s This will replace your current database with snapshot %s.\n",
					cli.WarningStyle.Render(cli.WarningIcon), cli.BoldStyle.Render(args[0]))
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					writeln(out, cli.SubtleStyle.Render("Restore cancelled."))
					return nil
				}
			}

			if err := manager.Restore(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to restore snapshot: %w", err)
			}

			writef(out, "%s Restored from snapshot %s\n", cli.SuccessStyle.Render(cli.SuccessIcon), cli.BoldStyle.Render(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func deleteSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, manager, err := openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := manager.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete snapshot: %w", err)
			}

			writef(cmd.OutOrStdout(), "%s Deleted snapshot %s\n", cli.SuccessStyle.Render(cli.SuccessIcon), cli.BoldStyle.Render(args[0]))
			return nil
		},
	}
}
