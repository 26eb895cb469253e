package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}
			if len(accounts) == 0 {
				writeln(out, cli.SubtleStyle.Render("No accounts found. Use 'spice accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			writeln(w, strings.Join([]string{
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("NAME"),
				cli.BoldStyle.Render("TYPE"),
				cli.BoldStyle.Render("BALANCE"),
			}, "\t"))
			for _, a := range accounts {
				writef(w, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, cli.Money(a.CurrentBalance))
			}
			return w.Flush()
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		balance     float64
		currency    string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			typ := model.AccountType(accountType)
			if !typ.Valid() {
				return common.NewUserError(fmt.Sprintf("unknown account type %q", accountType), storage.ErrInvalidAccount)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.Account{
				Name:           args[0],
				Type:           typ,
				Currency:       currency,
				Notes:          notes,
				InitialBalance: balance,
			}
			if err := store.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created account %q (ID: %d)", account.Name, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", string(model.AccountTypeChecking),
		"account type (checking, savings, credit_card, cash, investment, loan, other)")
	cmd.Flags().Float64Var(&balance, "balance", 0, "opening balance")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")

	return cmd
}
