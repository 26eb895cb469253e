package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/goal"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Track savings goals",
	}

	cmd.AddCommand(addGoalCmd())
	cmd.AddCommand(goalProgressCmd())
	cmd.AddCommand(goalSummaryCmd())
	cmd.AddCommand(contributeGoalCmd())
	cmd.AddCommand(goalStatusCmd())
	cmd.AddCommand(deleteGoalCmd())

	return cmd
}

func parseGoalID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid goal id %q", arg)
	}
	return id, nil
}

func addGoalCmd() *cobra.Command {
	var (
		targetDate  string
		start       string
		account     string
		description string
		color       string
		current     float64
		priority    int
	)

	cmd := &cobra.Command{
		Use:   "add <name> <target-amount>",
		Short: "Add a savings goal",
		Example: `  spice goals add "Emergency fund" 10000 --target-date 2025-06-30 --account Savings --priority 5
  spice goals add Vacation 3000 --target-date 2024-08-01 --current 500`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			g := &model.Goal{
				Name:          args[0],
				Description:   description,
				Color:         color,
				TargetAmount:  amount,
				CurrentAmount: current,
				Priority:      priority,
				StartDate:     time.Now(),
			}
			if g.TargetDate, err = parseDay("target-date", targetDate); err != nil {
				return err
			}
			if start != "" {
				if g.StartDate, err = parseDay("start", start); err != nil {
					return err
				}
			}
			if err := goal.Prepare(g, time.Now()); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if account != "" {
				a, err := resolveAccount(ctx, store, account)
				if err != nil {
					return fmt.Errorf("failed to find account: %w", err)
				}
				g.AccountID = &a.ID
			}

			if err := store.CreateGoal(ctx, g); err != nil {
				return fmt.Errorf("failed to create goal: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added goal %q of %s by %s (ID: %d)",
				g.Name, cli.Money(g.TargetAmount), g.TargetDate.Format(time.DateOnly), g.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetDate, "target-date", "", "date to reach the target, YYYY-MM-DD")
	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "account the savings are kept in")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVar(&color, "color", "", "display color, e.g. #52c41a")
	cmd.Flags().Float64Var(&current, "current", 0, "amount already saved")
	cmd.Flags().IntVarP(&priority, "priority", "p", goal.MinPriority,
		fmt.Sprintf("priority from %d to %d", goal.MinPriority, goal.MaxPriority))
	_ = cmd.MarkFlagRequired("target-date")

	return cmd
}

func goalProgressCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"list"},
		Short:   "Show progress toward each goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s := model.GoalStatus(status)
			if s != "" && !s.Valid() {
				return fmt.Errorf("%w: unknown status %q", goal.ErrInvalidGoal, status)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goals, err := store.GetGoals(ctx, s)
			if err != nil {
				return fmt.Errorf("failed to get goals: %w", err)
			}
			if len(goals) == 0 {
				writeln(out, cli.SubtleStyle.Render("No goals found. Use 'spice goals add' to create one."))
				return nil
			}

			today := time.Now()
			progress := make([]goal.Progress, 0, len(goals))
			for _, g := range goals {
				progress = append(progress, goal.Measure(g, today))
			}
			printGoalProgress(out, progress)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "",
		"only goals with this status (not_started, in_progress, completed, paused, cancelled)")

	return cmd
}

func printGoalProgress(out io.Writer, progress []goal.Progress) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeln(w, strings.Join([]string{
		cli.BoldStyle.Render("ID"),
		cli.BoldStyle.Render("GOAL"),
		cli.BoldStyle.Render("STATUS"),
		cli.BoldStyle.Render("SAVED"),
		cli.BoldStyle.Render("OF"),
		cli.BoldStyle.Render("DONE"),
		cli.BoldStyle.Render("DUE"),
	}, "\t"))

	for _, p := range progress {
		done := fmt.Sprintf("%.0f%%", p.Percentage)
		if p.Goal.Status == model.GoalCompleted {
			done = cli.SuccessStyle.Render(done)
		}

		due := p.Goal.TargetDate.Format(time.DateOnly)
		if p.Goal.Status.Active() {
			if p.DaysRemaining == 0 {
				due = cli.WarningStyle.Render(due + " (due)")
			} else {
				due = fmt.Sprintf("%s (%d days)", due, p.DaysRemaining)
			}
		}

		writef(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", p.Goal.ID, p.Goal.Name, p.Goal.Status,
			cli.Money(p.Goal.CurrentAmount), cli.Money(p.Goal.TargetAmount), done, due)
	}
	_ = w.Flush()
}

func goalSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Totals across all goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goals, err := store.GetGoals(ctx, "")
			if err != nil {
				return fmt.Errorf("failed to get goals: %w", err)
			}

			s := goal.Summarize(goals, time.Now())
			content := fmt.Sprintf("Goals:     %d (%d active, %d completed)\nTarget:    %s\nSaved:     %s\nRemaining: %s\nAverage:   %.2f%%",
				s.TotalGoals, s.ActiveGoals, s.CompletedGoals,
				cli.Money(s.TotalTarget), cli.Money(s.TotalSaved), cli.Money(s.TotalRemaining), s.AverageProgress)
			writeln(out, cli.RenderBox("Savings Goals", content))
			return nil
		},
	}
}

func contributeGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Add money to a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			g, err := store.GetGoal(ctx, id)
			if err != nil {
				return err
			}
			wasCompleted := g.Status == model.GoalCompleted
			if err := goal.Contribute(g, amount, time.Now()); err != nil {
				return err
			}
			if err := store.UpdateGoal(ctx, g); err != nil {
				return fmt.Errorf("failed to update goal: %w", err)
			}

			out := cmd.OutOrStdout()
			p := goal.Measure(*g, time.Now())
			writeln(out, cli.FormatSuccess(fmt.Sprintf("%s: %s of %s saved (%.0f%%)",
				g.Name, cli.Money(g.CurrentAmount), cli.Money(g.TargetAmount), p.Percentage)))
			if !wasCompleted && g.Status == model.GoalCompleted {
				writeln(out, cli.FormatSuccess("Goal reached!"))
			}
			return nil
		},
	}
}

func goalStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a goal's status (not_started, in_progress, completed, paused, cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			g, err := store.GetGoal(ctx, id)
			if err != nil {
				return err
			}
			if err := goal.SetStatus(g, model.GoalStatus(args[1]), time.Now()); err != nil {
				return err
			}
			if err := store.UpdateGoal(ctx, g); err != nil {
				return fmt.Errorf("failed to update goal: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now %s", g.Name, g.Status)))
			return nil
		},
	}
}

func deleteGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteGoal(ctx, id); err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted goal %d", id)))
			return nil
		},
	}
}
