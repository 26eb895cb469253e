package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/keyword"
)

func recategorizeCmd() *cobra.Command {
	var (
		dryRun        bool
		uncategorized bool
		noSnapshot    bool
		yes           bool
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "recategorize",
		Short: "Re-apply keyword rules to stored transactions",
		Long: `Run every income and expense transaction through the current keyword rules
and move those whose category would change.

A dry run lists exactly the changes a real run would make.`,
		Example: `  # See what would change
  spice recategorize --dry-run

  # Only fill in transactions without a category
  spice recategorize --uncategorized --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			matcher := keyword.NewMatcher(store, keyword.BuiltIn())
			plan, err := keyword.Recategorize(ctx, store, matcher, keyword.RecategorizeOptions{
				OnlyUncategorized: uncategorized,
				DryRun:            true,
				Progress:          cli.ProgressFunc(cmd.ErrOrStderr(), "Checking transactions"),
			})
			if err != nil {
				return err
			}

			if len(plan.Changes) == 0 {
				writeln(out, cli.FormatSuccess(fmt.Sprintf("All %d transactions already match the rules", plan.Processed)))
				return nil
			}
			printChanges(out, plan, limit)

			if dryRun {
				writeln(out, cli.SubtleStyle.Render("Dry run: nothing was changed."))
				return nil
			}

			if !yes {
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out,
					fmt.Sprintf("Apply %d changes?", len(plan.Changes)))
				if err != nil {
					return err
				}
				if !ok {
					writeln(out, cli.SubtleStyle.Render("Recategorize cancelled."))
					return nil
				}
			}

			if !noSnapshot {
				manager, err := store.NewSnapshotManager()
				if err != nil {
					return err
				}
				snap, err := manager.Auto(ctx, "recategorize")
				if err != nil {
					return fmt.Errorf("failed to snapshot before recategorize: %w", err)
				}
				writeln(out, cli.SubtleStyle.Render("Snapshot "+snap.ID))
			}

			report, err := keyword.Recategorize(ctx, store, matcher, keyword.RecategorizeOptions{
				OnlyUncategorized: uncategorized,
				Progress:          cli.ProgressFunc(cmd.ErrOrStderr(), "Recategorizing"),
			})
			if err != nil {
				writeln(out, cli.FormatWarning("No changes were applied"))
				return err
			}

			writeln(out, cli.FormatSuccess(fmt.Sprintf("Recategorized %d of %d transactions", report.Applied, report.Processed)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show changes without applying them")
	cmd.Flags().BoolVarP(&uncategorized, "uncategorized", "u", false, "only consider transactions without a category")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "skip the automatic snapshot")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply without confirmation")
	cmd.Flags().IntVar(&limit, "limit", 50, "changes to list (0 for all)")

	return cmd
}

func printChanges(out io.Writer, report *keyword.RecategorizeReport, limit int) {
	writeln(out, cli.FormatTitle(fmt.Sprintf("%d of %d transactions would change", len(report.Changes), report.Processed)))

	changes := report.Changes
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range changes {
		from := c.OldCategory
		if from == "" {
			from = cli.SubtleStyle.Render("uncategorized")
		}
		writef(w, "%s\t%s\t%s\t%s → %s\t%s\n",
			c.Date.Format(time.DateOnly), c.Payee, cli.Money(c.Amount), from, c.NewCategory,
			cli.SubtleStyle.Render(fmt.Sprintf("%s:%s", c.Source, c.Keyword)))
	}
	_ = w.Flush()

	if hidden := len(report.Changes) - len(changes); hidden > 0 {
		writeln(out, cli.SubtleStyle.Render(fmt.Sprintf("... and %d more", hidden)))
	}
}
