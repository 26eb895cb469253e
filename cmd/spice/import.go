package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/importer"
	"github.com/Veraticus/spice-ledger/internal/keyword"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/tui"
)

type importOptions struct {
	account         string
	dateFormat      string
	defaultCategory string
	csvOut          string
	limit           int
	flip            bool
	noFlip          bool
	keepDuplicates  bool
	noCategorize    bool
	previewOnly     bool
	review          bool
	yes             bool
}

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV, OFX or QFX bank statement",
		Long: `Import transactions from a bank statement file into an account.

The file is parsed, categorized with your keyword rules and the built-in
table, and checked for duplicates of transactions already on the account.
A preview is shown before anything is written.`,
		Example: `  # Preview and import a checking account export
  spice import jan.csv --account Checking

  # Review row by row before committing
  spice import card.qfx --account Visa --review

  # Preview only, saving the parsed rows as CSV
  spice import jan.csv --account Checking --preview --csv parsed.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.account, "account", "a", "", "account name or id (required)")
	cmd.Flags().StringVar(&opts.dateFormat, "date-format", "", "CSV date format, strftime style (default from config)")
	cmd.Flags().StringVar(&opts.defaultCategory, "default-category", "", "category for rows no rule matches")
	cmd.Flags().StringVar(&opts.csvOut, "csv", "", "write the parsed preview as CSV to this path (- for stdout)")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "rows to show in the preview (0 for all)")
	cmd.Flags().BoolVar(&opts.flip, "flip", false, "invert income and expense for every row")
	cmd.Flags().BoolVar(&opts.noFlip, "no-flip", false, "never invert, even for credit card accounts")
	cmd.Flags().BoolVar(&opts.keepDuplicates, "keep-duplicates", false, "import rows that look like duplicates")
	cmd.Flags().BoolVar(&opts.noCategorize, "no-categorize", false, "skip keyword categorization")
	cmd.Flags().BoolVar(&opts.previewOnly, "preview", false, "show the preview without importing")
	cmd.Flags().BoolVar(&opts.review, "review", false, "review and exclude rows interactively before importing")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "import without confirmation")

	_ = cmd.MarkFlagRequired("account")
	cmd.MarkFlagsMutuallyExclusive("flip", "no-flip")
	cmd.MarkFlagsMutuallyExclusive("preview", "review")

	cmd.AddCommand(importFormatsCmd())

	return cmd
}

func importFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported statement formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, f := range importer.SupportedFormats() {
				writef(out, "%s  %s\n", cli.BoldStyle.Render("."+f.Extension), f.Name)
				writef(out, "     %s\n", cli.SubtleStyle.Render(f.Description))
			}
			return nil
		},
	}
}

func buildImportRequest(ctx context.Context, store *storage.SQLiteStorage, path string, opts importOptions) (importer.Request, *model.Account, error) {
	content, err := os.ReadFile(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return importer.Request{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	account, err := resolveAccount(ctx, store, opts.account)
	if err != nil {
		return importer.Request{}, nil, fmt.Errorf("failed to find account: %w", err)
	}

	req := importer.NewRequest(filepath.Base(path), content, account.ID)
	req.DateFormat = cfg.Import.DateFormat
	if opts.dateFormat != "" {
		req.DateFormat = opts.dateFormat
	}
	req.SkipDuplicates = cfg.Import.SkipDuplicates && !opts.keepDuplicates
	req.AutoCategorize = cfg.Import.AutoCategorize && !opts.noCategorize

	switch {
	case opts.flip:
		req.Flip = &opts.flip
	case opts.noFlip:
		flip := false
		req.Flip = &flip
	}

	if opts.defaultCategory != "" {
		c, err := resolveCategory(ctx, store, opts.defaultCategory)
		if err != nil {
			return importer.Request{}, nil, fmt.Errorf("failed to find default category: %w", err)
		}
		req.DefaultCategoryID = &c.ID
	}

	return req, account, nil
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	req, account, err := buildImportRequest(ctx, store, path, opts)
	if err != nil {
		return err
	}

	var pipelineOpts []importer.Option
	if cfg.Import.Snapshot {
		manager, err := store.NewSnapshotManager()
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, importer.WithSnapshots(manager))
	}
	pipeline := importer.NewPipeline(store, keyword.NewMatcher(store, keyword.BuiltIn()), pipelineOpts...)

	preview, err := pipeline.Preview(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to preview %s: %w", path, err)
	}

	if opts.csvOut != "" {
		if err := exportPreview(out, opts.csvOut, preview); err != nil {
			return err
		}
	}

	if opts.review {
		decision, err := tui.Review(ctx, fmt.Sprintf("Import %s into %s", filepath.Base(path), account.Name), preview, req.SkipDuplicates)
		if err != nil {
			return err
		}
		if !decision.Commit {
			writeln(out, cli.SubtleStyle.Render("Import cancelled."))
			return nil
		}
		req.SkipDuplicates = false
		req.Exclude = decision.Excluded
	} else {
		if opts.csvOut != "-" {
			printPreview(out, account, preview, opts.limit)
		}
		if opts.previewOnly {
			return nil
		}
		if !opts.yes {
			ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out,
				fmt.Sprintf("Import into %s?", account.Name))
			if err != nil {
				return err
			}
			if !ok {
				writeln(out, cli.SubtleStyle.Render("Import cancelled."))
				return nil
			}
		}
	}

	result, err := pipeline.Commit(ctx, req)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printImportResult(out, result)
	return nil
}

func exportPreview(out io.Writer, path string, preview *importer.Preview) error {
	if path == "-" {
		return importer.WritePreviewCSV(out, preview)
	}

	f, err := os.Create(path) //nolint:gosec // user-supplied output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := importer.WritePreviewCSV(f, preview); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	writeln(out, cli.FormatSuccess("Wrote preview to "+path))
	return nil
}

func printPreview(out io.Writer, account *model.Account, preview *importer.Preview, limit int) {
	lines := []string{
		fmt.Sprintf("Account:      %s (%s)", account.Name, account.Type),
		fmt.Sprintf("Format:       %s", strings.ToUpper(string(preview.FileType))),
		fmt.Sprintf("Transactions: %d (%d income, %d expense)", preview.TotalCount, preview.IncomeCount, preview.ExpenseCount),
		fmt.Sprintf("Income:       %s", cli.IncomeStyle.Render(cli.Money(preview.TotalIncome))),
		fmt.Sprintf("Expenses:     %s", cli.ExpenseStyle.Render(cli.Money(preview.TotalExpenses))),
		fmt.Sprintf("Categorized:  %d of %d", preview.CategorizedCount, preview.TotalCount),
	}
	if preview.DuplicateCount > 0 {
		lines = append(lines, cli.WarningStyle.Render(fmt.Sprintf("Duplicates:   %d", preview.DuplicateCount)))
	}
	if preview.RepeatedCount > 0 {
		lines = append(lines, cli.WarningStyle.Render(fmt.Sprintf("Repeated ids: %d", preview.RepeatedCount)))
	}
	if preview.Flipped {
		lines = append(lines, cli.SubtleStyle.Render("Signs inverted for this account."))
	}
	writeln(out, cli.RenderBox("Import Preview", strings.Join(lines, "\n")))

	rows := preview.Candidates
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range rows {
		mark := " "
		if c.Redundant() {
			mark = cli.DupIcon
		}
		category := c.SuggestedCategoryName
		if category == "" {
			category = cli.SubtleStyle.Render("uncategorized")
		}
		writef(w, "%s\t%s\t%s\t%s\t%s\n", mark, c.Date.Format(time.DateOnly), c.Payee,
			cli.SignedMoney(c.Amount, c.Polarity), category)
	}
	_ = w.Flush()

	if hidden := len(preview.Candidates) - len(rows); hidden > 0 {
		writeln(out, cli.SubtleStyle.Render(fmt.Sprintf("... and %d more (use --limit 0 to show all)", hidden)))
	}
}

func printImportResult(out io.Writer, result *importer.Result) {
	if result.Imported == 0 {
		writeln(out, cli.FormatWarning(fmt.Sprintf("Nothing imported (%d skipped)", result.Skipped)))
		return
	}

	writeln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d skipped, %d auto-categorized)",
		result.Imported, result.Skipped, result.AutoCategorized)))
	writef(out, "  Income:   %s\n", cli.IncomeStyle.Render(cli.Money(result.TotalIncome)))
	writef(out, "  Expenses: %s\n", cli.ExpenseStyle.Render(cli.Money(result.TotalExpenses)))
	writef(out, "  Batch:    %s\n", cli.SubtleStyle.Render(result.BatchID))
	if result.SnapshotID != "" {
		writef(out, "  Snapshot: %s\n", cli.SubtleStyle.Render(result.SnapshotID))
	}
}
