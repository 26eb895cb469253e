package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/report"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

type reportFlags struct {
	from    string
	to      string
	account string
}

// period resolves the flags against the store. Without --from and --to the
// period is the current calendar month.
func (f *reportFlags) period(ctx context.Context, store *storage.SQLiteStorage) (report.Period, error) {
	now := time.Now()
	p := report.Period{
		Start: calendar.Date(now.Year(), now.Month(), 1),
		End:   calendar.Date(now.Year(), now.Month(), calendar.DaysIn(now.Year(), now.Month())),
	}

	var err error
	if f.from != "" {
		if p.Start, err = parseDay("from", f.from); err != nil {
			return p, err
		}
	}
	if f.to != "" {
		if p.End, err = parseDay("to", f.to); err != nil {
			return p, err
		}
	}
	if f.account != "" {
		a, err := resolveAccount(ctx, store, f.account)
		if err != nil {
			return p, fmt.Errorf("failed to find account: %w", err)
		}
		p.AccountID = a.ID
	}
	return p, nil
}

func reportsCmd() *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Summarize spending, cash flow and balances",
	}

	cmd.PersistentFlags().StringVar(&flags.from, "from", "", "first day, YYYY-MM-DD (default start of this month)")
	cmd.PersistentFlags().StringVar(&flags.to, "to", "", "last day, YYYY-MM-DD (default end of this month)")
	cmd.PersistentFlags().StringVarP(&flags.account, "account", "a", "", "limit to one account")

	cmd.AddCommand(spendingReportCmd(flags))
	cmd.AddCommand(cashflowReportCmd(flags))
	cmd.AddCommand(balancesReportCmd())
	cmd.AddCommand(trendReportCmd(flags))
	cmd.AddCommand(flowReportCmd(flags))

	return cmd
}

// runReport opens the store, resolves the period and hands both to fn.
func runReport(cmd *cobra.Command, flags *reportFlags, fn func(context.Context, *storage.SQLiteStorage, report.Period) error) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	p, err := flags.period(ctx, store)
	if err != nil {
		return err
	}
	return fn(ctx, store, p)
}

func periodTitle(title string, p report.Period) string {
	return fmt.Sprintf("%s %s – %s", title, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

func spendingReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "spending",
		Short: "Spending by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, flags, func(ctx context.Context, store *storage.SQLiteStorage, p report.Period) error {
				s, err := report.SpendingByCategory(ctx, store, p)
				if err != nil {
					return err
				}
				printSpending(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

func printSpending(out io.Writer, s *report.Spending) {
	writeln(out, cli.FormatTitle(periodTitle("Spending", s.Period)))
	if len(s.Categories) == 0 {
		writeln(out, cli.SubtleStyle.Render("No categorized spending in this period."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeln(w, strings.Join([]string{
		cli.BoldStyle.Render("CATEGORY"),
		cli.BoldStyle.Render("AMOUNT"),
		cli.BoldStyle.Render("SHARE"),
	}, "\t"))
	for _, c := range s.Categories {
		writef(w, "%s\t%s\t%.2f%%\n", c.Name, cli.Money(c.Amount), c.Percentage)
	}
	writef(w, "%s\t%s\t\n", cli.BoldStyle.Render("Total"), cli.Money(s.Total))
	_ = w.Flush()
}

func cashflowReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cashflow",
		Short: "Income against expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, flags, func(ctx context.Context, store *storage.SQLiteStorage, p report.Period) error {
				c, err := report.IncomeVsExpenses(ctx, store, p)
				if err != nil {
					return err
				}

				net := cli.IncomeStyle.Render(cli.Money(c.Net))
				if c.Net < 0 {
					net = cli.ExpenseStyle.Render(cli.Money(c.Net))
				}
				content := fmt.Sprintf("Income:       %s\nExpenses:     %s\nNet:          %s\nSavings rate: %.2f%%",
					cli.IncomeStyle.Render(cli.Money(c.Income)), cli.ExpenseStyle.Render(cli.Money(c.Expenses)), net, c.SavingsRate)
				writeln(cmd.OutOrStdout(), cli.RenderBox(periodTitle("Cash Flow", p), content))
				return nil
			})
		},
	}
}

func balancesReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Account balances and net worth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			b, err := report.AccountBalances(ctx, store)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			writeln(w, strings.Join([]string{
				cli.BoldStyle.Render("ACCOUNT"),
				cli.BoldStyle.Render("TYPE"),
				cli.BoldStyle.Render("BALANCE"),
			}, "\t"))
			for _, a := range b.Accounts {
				writef(w, "%s\t%s\t%s %s\n", a.Name, a.Type, cli.Money(a.CurrentBalance), a.Currency)
			}
			_ = w.Flush()

			writeln(out)
			writef(out, "Assets:      %s\n", cli.IncomeStyle.Render(cli.Money(b.TotalAssets)))
			writef(out, "Liabilities: %s\n", cli.ExpenseStyle.Render(cli.Money(b.TotalLiabilities)))
			writef(out, "Net worth:   %s\n", cli.BoldStyle.Render(cli.Money(b.NetWorth)))
			return nil
		},
	}
}

func trendReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Running balance of one account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.account == "" {
				return fmt.Errorf("--account is required for a balance trend")
			}
			return runReport(cmd, flags, func(ctx context.Context, store *storage.SQLiteStorage, p report.Period) error {
				tr, err := report.BalanceTrend(ctx, store, p.AccountID, p.Start, p.End)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				writeln(out, cli.FormatTitle(periodTitle(tr.Account.Name, p)))
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				writef(w, "%s\t%s\n", cli.SubtleStyle.Render("opening"), cli.Money(tr.Opening))
				for _, pt := range tr.Points {
					writef(w, "%s\t%s\n", pt.Date.Format(time.DateOnly), cli.Money(pt.Balance))
				}
				_ = w.Flush()
				return nil
			})
		},
	}
}

func flowReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Where income went: income categories to expenses and savings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, flags, func(ctx context.Context, store *storage.SQLiteStorage, p report.Period) error {
				f, err := report.MoneyFlow(ctx, store, p)
				if err != nil {
					return err
				}
				printFlow(cmd.OutOrStdout(), f)
				return nil
			})
		},
	}
}

func printFlow(out io.Writer, f *report.Flow) {
	writeln(out, cli.FormatTitle(periodTitle("Money Flow", f.Period)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, l := range f.Links {
		from, to := f.Nodes[l.Source], f.Nodes[l.Target]
		amount := cli.Money(l.Value)
		switch to.Kind {
		case report.NodeExpense:
			amount = cli.SignedMoney(l.Value, model.TransactionTypeExpense)
		case report.NodeSavings, report.NodeBudget:
			amount = cli.SignedMoney(l.Value, model.TransactionTypeIncome)
		}
		writef(w, "%s\t→\t%s\t%s\n", from.Name, to.Name, amount)
	}
	_ = w.Flush()

	writef(out, "\nIncome %s, expenses %s, saved %s\n",
		cli.Money(f.TotalIncome), cli.Money(f.TotalExpenses), cli.Money(f.Savings))
}
