package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/budget"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets and rollovers",
	}

	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(budgetProgressCmd())
	cmd.AddCommand(processBudgetsCmd())

	return cmd
}

func addBudgetCmd() *cobra.Command {
	var (
		period     string
		start      string
		end        string
		categories []string
		rollover   bool
	)

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a budget",
		Example: `  spice budgets add Dining 400 --category "Food > Dining Out" --category "Food > Coffee Shops" --rollover
  spice budgets add Travel 3000 --period annual --start 2024-01-01`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			b := &model.Budget{
				Name:          args[0],
				Amount:        amount,
				Period:        model.PeriodKind(period),
				AllowRollover: rollover,
				IsActive:      true,
			}

			if start == "" {
				b.StartDate = time.Now()
			} else {
				t, err := parseDay("start", start)
				if err != nil {
					return err
				}
				b.StartDate = t
			}
			b.EndDate, err = parseOptionalDay("end", end)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			for _, ref := range categories {
				c, err := resolveCategory(ctx, store, ref)
				if err != nil {
					return fmt.Errorf("failed to find category: %w", err)
				}
				b.CategoryIDs = append(b.CategoryIDs, c.ID)
			}

			if err := store.CreateBudget(ctx, b); err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s budget %q of %s (ID: %d)",
				b.Period, b.Name, cli.Money(b.Amount), b.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(model.PeriodMonthly), "period (weekly, monthly, quarterly, annual)")
	cmd.Flags().StringVar(&start, "start", "", "first day of the first period, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&end, "end", "", "last day the budget applies, YYYY-MM-DD")
	cmd.Flags().StringArrayVarP(&categories, "category", "c", nil, "category the budget covers (repeatable)")
	cmd.Flags().BoolVar(&rollover, "rollover", false, "carry unspent amounts into later periods")

	return cmd
}

func budgetProgressCmd() *cobra.Command {
	var (
		asOf string
		all  bool
	)

	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"list"},
		Short:   "Show spending against each budget for the current period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ref := time.Now()
			if asOf != "" {
				t, err := parseDay("as-of", asOf)
				if err != nil {
					return err
				}
				ref = t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx, !all)
			if err != nil {
				return fmt.Errorf("failed to get budgets: %w", err)
			}
			if len(budgets) == 0 {
				writeln(out, cli.SubtleStyle.Render("No budgets found. Use 'spice budgets add' to create one."))
				return nil
			}

			acc := budget.NewAccumulator(store, cfg.Budget.MaxPeriods)
			progress := make([]*budget.Progress, 0, len(budgets))
			for _, b := range budgets {
				p, err := acc.Progress(ctx, b, ref)
				if err != nil {
					return err
				}
				progress = append(progress, p)
			}

			printBudgetProgress(out, progress)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive budgets")

	return cmd
}

func printBudgetProgress(out io.Writer, progress []*budget.Progress) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeln(w, strings.Join([]string{
		cli.BoldStyle.Render("BUDGET"),
		cli.BoldStyle.Render("PERIOD"),
		cli.BoldStyle.Render("SPENT"),
		cli.BoldStyle.Render("OF"),
		cli.BoldStyle.Render("LEFT"),
		cli.BoldStyle.Render("USED"),
	}, "\t"))

	for _, p := range progress {
		used := fmt.Sprintf("%.0f%%", p.Percentage)
		switch {
		case p.Percentage > 100:
			used = cli.ErrorStyle.Render(used)
		case p.Percentage >= 80:
			used = cli.WarningStyle.Render(used)
		default:
			used = cli.SuccessStyle.Render(used)
		}

		writef(w, "%s\t%s – %s\t%s\t%s\t%s\t%s\n",
			p.Budget.Name,
			p.PeriodStart.Format(time.DateOnly), p.PeriodEnd.Format(time.DateOnly),
			cli.Money(p.Spent), cli.Money(p.Total), cli.Money(p.Remaining), used)
	}
	_ = w.Flush()
}

func processBudgetsCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Recompute rollover amounts for every rollover budget",
		Long: `Recompute each rollover-enabled budget's carried amount from its full
spending history. Running it twice gives the same result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ref := time.Now()
			if asOf != "" {
				t, err := parseDay("as-of", asOf)
				if err != nil {
					return err
				}
				ref = t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx, true)
			if err != nil {
				return fmt.Errorf("failed to get budgets: %w", err)
			}

			acc := budget.NewAccumulator(store, cfg.Budget.MaxPeriods)
			report, err := acc.ProcessAll(ctx, store, budgets, ref, cli.ProgressFunc(cmd.ErrOrStderr(), "Processing budgets"))
			if err != nil {
				return err
			}

			for _, r := range report.Processed {
				writef(out, "%s %s: %s → %s\n", cli.SuccessIcon, r.Name, cli.Money(r.Previous), cli.Money(r.Rollover))
			}
			for _, f := range report.Failed {
				writeln(out, cli.FormatError(fmt.Sprintf("%s: %v", f.Name, f.Err)))
			}
			writeln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d processed, %d failed, %d skipped",
				len(report.Processed), len(report.Failed), report.Skipped)))

			if len(report.Failed) > 0 {
				return fmt.Errorf("%d budgets failed to process", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, YYYY-MM-DD (default today)")

	return cmd
}
