package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/keyword"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"kw"},
		Short:   "Manage keyword categorization rules",
		Long: `Keyword rules map text found in a transaction's payee or description to a
category. Your rules are tried first, by priority; the built-in table is
consulted only when none of them match.`,
	}

	cmd.AddCommand(listKeywordsCmd())
	cmd.AddCommand(addKeywordCmd())
	cmd.AddCommand(toggleKeywordCmd(true))
	cmd.AddCommand(toggleKeywordCmd(false))
	cmd.AddCommand(deleteKeywordCmd())
	cmd.AddCommand(testKeywordCmd())
	cmd.AddCommand(suggestKeywordsCmd())
	cmd.AddCommand(exportKeywordsCmd())
	cmd.AddCommand(importKeywordsCmd())
	cmd.AddCommand(builtinKeywordsCmd())

	return cmd
}

func listKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your keyword rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetKeywords(ctx)
			if err != nil {
				return fmt.Errorf("failed to get keyword rules: %w", err)
			}
			if len(rules) == 0 {
				writeln(out, cli.SubtleStyle.Render("No keyword rules yet. Use 'spice keywords add' or 'spice keywords suggest'."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			writeln(w, strings.Join([]string{
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("KEYWORD"),
				cli.BoldStyle.Render("MODE"),
				cli.BoldStyle.Render("PRIORITY"),
				cli.BoldStyle.Render("CATEGORY"),
				cli.BoldStyle.Render("STATUS"),
			}, "\t"))
			for _, r := range rules {
				label := fmt.Sprintf("#%d", r.CategoryID)
				if c, err := store.GetCategoryByID(ctx, r.CategoryID); err == nil {
					label = categoryLabel(ctx, store, c)
				}
				status := cli.SuccessStyle.Render("active")
				if !r.IsActive {
					status = cli.SubtleStyle.Render("inactive")
				}
				writef(w, "%d\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Keyword, r.MatchMode, r.Priority, label, status)
			}
			return w.Flush()
		},
	}
}

func addKeywordCmd() *cobra.Command {
	var (
		mode     string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Add a keyword rule",
		Long: `Add a rule that files transactions containing <keyword> under <category>.
Categories are given by id, name, or "Parent > Child".`,
		Example: `  spice keywords add "whole foods" "Food > Groceries"
  spice keywords add netflix "Entertainment > Streaming Services" --priority 5
  spice keywords add "ACME PAYROLL" "Income > Salary" --mode starts_with`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := resolveCategory(ctx, store, args[1])
			if err != nil {
				return fmt.Errorf("failed to find category: %w", err)
			}

			rule := &model.CategoryKeyword{
				Keyword:    args[0],
				CategoryID: category.ID,
				MatchMode:  model.MatchMode(mode),
				Priority:   priority,
				IsActive:   true,
			}
			if err := store.CreateKeyword(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added rule %q → %s (ID: %d)",
				rule.Keyword, categoryLabel(ctx, store, category), rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.MatchContains), "match mode (contains, starts_with, exact)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "higher priorities are tried first")

	return cmd
}

func toggleKeywordCmd(active bool) *cobra.Command {
	use, short, verb := "disable <id>", "Deactivate a keyword rule", "Deactivated"
	if active {
		use, short, verb = "enable <id>", "Reactivate a keyword rule", "Activated"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetKeywordActive(ctx, id, active); err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s rule %d", verb, id)))
			return nil
		},
	}
}

func deleteKeywordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a keyword rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteKeyword(ctx, id); err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id)))
			return nil
		},
	}
}

func testKeywordCmd() *cobra.Command {
	var polarity string

	cmd := &cobra.Command{
		Use:   "test <text>",
		Short: "Show how a description would be categorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			matcher := keyword.NewMatcher(store, keyword.BuiltIn())

			var match *keyword.Match
			if polarity == "" {
				match, err = matcher.Explain(ctx, args[0])
			} else {
				match, err = matcher.Classify(ctx, args[0], model.TransactionType(polarity))
			}
			if err != nil {
				return err
			}

			if match == nil {
				writeln(out, cli.FormatWarning(fmt.Sprintf("No rule matches %q", args[0])))
				return nil
			}

			writeln(out, cli.FormatSuccess(match.DisplayName))
			writef(out, "  Keyword: %s\n", match.Keyword)
			source := string(match.Source)
			if match.RuleID != 0 {
				source = fmt.Sprintf("%s rule %d", source, match.RuleID)
			}
			writef(out, "  Source:  %s\n", cli.SubtleStyle.Render(source))
			return nil
		},
	}

	cmd.Flags().StringVar(&polarity, "as", "", "classify as income or expense (default: first match of any type)")

	return cmd
}

func suggestKeywordsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest rules from recurring uncategorized payees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, service.TransactionFilter{
				OnlyUncategorized: true,
				Limit:             keyword.MaxSuggestSample,
			})
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			suggestions := keyword.Suggest(txns, limit)
			if len(suggestions) == 0 {
				writeln(out, cli.SubtleStyle.Render("No recurring uncategorized payees found."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			writef(w, "%s\t%s\n", cli.BoldStyle.Render("PAYEE"), cli.BoldStyle.Render("SEEN"))
			for _, s := range suggestions {
				writef(w, "%s\t%d\n", s.Keyword, s.Occurrences)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum suggestions")

	return cmd
}

func exportKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export keyword rules as YAML",
		Long:  `Write every rule, active or not, as YAML. Writes to stdout without a file.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 0 {
				_, err := keyword.ExportRules(ctx, store, cmd.OutOrStdout())
				return err
			}

			f, err := os.Create(args[0]) //nolint:gosec // user-supplied output path
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			n, err := keyword.ExportRules(ctx, store, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d rules to %s", n, args[0])))
			return nil
		},
	}
}

func importKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import keyword rules from YAML",
		Long:  `Create rules from a YAML file written by 'spice keywords export'. Use - for stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			report, err := keyword.ImportRules(ctx, store, r)
			if err != nil {
				return err
			}

			writeln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d rules", report.Imported)))
			for _, s := range report.Skipped {
				writeln(out, cli.SubtleStyle.Render("  skipped "+s))
			}
			return nil
		},
	}
}

func builtinKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builtin",
		Short: "Show the built-in keyword table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			writef(w, "%s\t%s\n", cli.BoldStyle.Render("KEYWORD"), cli.BoldStyle.Render("CATEGORY"))
			for _, b := range keyword.BuiltIn() {
				writef(w, "%s\t%s\n", b.Keyword, model.DisplayName(b.Parent, b.Subcategory))
			}
			return w.Flush()
		},
	}
}
