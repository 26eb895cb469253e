package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/income"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Track expected recurring income",
	}

	cmd.AddCommand(addIncomeCmd())
	cmd.AddCommand(upcomingIncomeCmd())
	cmd.AddCommand(incomeSummaryCmd())
	cmd.AddCommand(advanceIncomeCmd())

	return cmd
}

func addIncomeCmd() *cobra.Command {
	var (
		frequency   string
		start       string
		end         string
		account     string
		category    string
		description string
		days        []int
	)

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add an income schedule",
		Example: `  spice income add Paycheck 2500 --frequency semimonthly --days 1,15 --start 2024-01-01
  spice income add Rent 1200 --frequency monthly --start 2024-01-31 --account Checking`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			s := &model.IncomeSchedule{
				Name:        args[0],
				Amount:      amount,
				Frequency:   model.Frequency(frequency),
				Description: description,
				StartDate:   time.Now(),
			}
			if start != "" {
				if s.StartDate, err = parseDay("start", start); err != nil {
					return err
				}
			}
			if s.EndDate, err = parseOptionalDay("end", end); err != nil {
				return err
			}
			if len(days) > 0 {
				if len(days) != 2 {
					return fmt.Errorf("--days takes exactly two days, got %d", len(days))
				}
				s.SemimonthlyDay1, s.SemimonthlyDay2 = &days[0], &days[1]
			}

			if err := income.Prepare(s); err != nil {
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
				s.AccountID = &a.ID
			}
			if category != "" {
				c, err := resolveCategory(ctx, store, category)
				if err != nil {
					return fmt.Errorf("failed to find category: %w", err)
				}
				s.CategoryID = &c.ID
			}

			if err := store.CreateIncomeSchedule(ctx, s); err != nil {
				return fmt.Errorf("failed to create income schedule: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s income %q of %s, first expected %s (ID: %d)",
				s.Frequency, s.Name, cli.Money(s.Amount), s.NextExpectedDate.Format(time.DateOnly), s.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&frequency, "frequency", "f", string(model.FrequencyMonthly),
		"frequency (weekly, biweekly, semimonthly, monthly, quarterly, annual)")
	cmd.Flags().StringVar(&start, "start", "", "first payment date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&end, "end", "", "last possible payment date, YYYY-MM-DD")
	cmd.Flags().IntSliceVar(&days, "days", nil, "the two days of the month for semimonthly income")
	cmd.Flags().StringVarP(&account, "account", "a", "", "account the income is paid into")
	cmd.Flags().StringVarP(&category, "category", "c", "", "income category")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")

	return cmd
}

func upcomingIncomeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:     "upcoming",
		Aliases: []string{"list"},
		Short:   "List expected payments in the next days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			schedules, err := store.GetIncomeSchedules(ctx, true)
			if err != nil {
				return fmt.Errorf("failed to get income schedules: %w", err)
			}

			upcoming := income.UpcomingWithin(schedules, time.Now(), days)
			if len(upcoming) == 0 {
				writeln(out, cli.SubtleStyle.Render(fmt.Sprintf("No income expected in the next %d days.", days)))
				return nil
			}
			printUpcoming(out, upcoming)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "look-ahead window in days")

	return cmd
}

func printUpcoming(out io.Writer, upcoming []income.Upcoming) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, u := range upcoming {
		when := fmt.Sprintf("in %d days", u.DaysUntil)
		switch {
		case u.DaysUntil < 0:
			when = cli.WarningStyle.Render(fmt.Sprintf("%d days overdue", -u.DaysUntil))
		case u.DaysUntil == 0:
			when = "today"
		case u.DaysUntil == 1:
			when = "tomorrow"
		}
		writef(w, "%d\t%s\t%s\t%s\t%s\n", u.Schedule.ID, u.ExpectedDate.Format(time.DateOnly), u.Schedule.Name,
			cli.IncomeStyle.Render(cli.Money(u.Schedule.Amount)), when)
	}
	_ = w.Flush()
}

func incomeSummaryCmd() *cobra.Command {
	var horizon string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total expected income over a horizon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			schedules, err := store.GetIncomeSchedules(ctx, true)
			if err != nil {
				return fmt.Errorf("failed to get income schedules: %w", err)
			}

			sum, err := income.Summarize(schedules, time.Now(), income.Horizon(horizon))
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.RenderBox(fmt.Sprintf("Expected income this %s", sum.Horizon), fmt.Sprintf(
				"%s – %s\nTotal:     %s\nPayments:  %d\nSchedules: %d",
				sum.Start.Format(time.DateOnly), sum.End.Format(time.DateOnly),
				cli.IncomeStyle.Render(cli.Money(sum.TotalExpected)), sum.PaymentCount, sum.ActiveSchedules)))
			return nil
		},
	}

	cmd.Flags().StringVar(&horizon, "horizon", string(income.HorizonMonth), "week, month, quarter or year")

	return cmd
}

func advanceIncomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <id>",
		Short: "Mark the next payment received and move to the one after",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid schedule id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			s, err := store.GetIncomeSchedule(ctx, id)
			if err != nil {
				return err
			}
			received := s.NextExpectedDate
			next := income.Advance(s)
			if err := store.UpdateNextExpectedDate(ctx, s.ID, next); err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: received %s, next expected %s",
				s.Name, received.Format(time.DateOnly), next.Format(time.DateOnly))))
			return nil
		},
	}
}
