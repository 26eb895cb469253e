package keyword

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// RecategorizeStore is the persistence a recategorization run needs.
type RecategorizeStore interface {
	// GetTransactionsForRecategorize returns income and expense transactions,
	// optionally only those without a category.
	GetTransactionsForRecategorize(ctx context.Context, onlyUncategorized bool) ([]model.Transaction, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	// BeginTx opens the transaction a live run writes every change on.
	BeginTx(ctx context.Context) (service.Transaction, error)
}

// Classifier resolves text to a category for a transaction type.
type Classifier interface {
	Classify(ctx context.Context, text string, polarity model.TransactionType) (*Match, error)
}

// RecategorizeOptions controls a recategorization run.
type RecategorizeOptions struct {
	Progress          func(done, total int)
	OnlyUncategorized bool
	DryRun            bool
}

// Change is one transaction whose category would change.
type Change struct {
	Date          time.Time
	OldCategoryID *int
	Payee         string
	Description   string
	OldCategory   string
	NewCategory   string
	Keyword       string
	Source        Source
	Amount        float64
	TransactionID int64
	NewCategoryID int
}

// RecategorizeReport summarizes a run.
type RecategorizeReport struct {
	Changes   []Change
	Processed int
	Applied   int
	DryRun    bool
}

// Recategorize re-evaluates stored transactions against the current rules.
// A dry run computes exactly the change set a live run would apply, and a
// second live run finds nothing left to change.
//
// A live run plans every change first and then applies them all in one
// storage transaction. If any update fails nothing is changed and Applied
// stays zero.
func Recategorize(ctx context.Context, store RecategorizeStore, classifier Classifier, opts RecategorizeOptions) (*RecategorizeReport, error) {
	txns, err := store.GetTransactionsForRecategorize(ctx, opts.OnlyUncategorized)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	report := &RecategorizeReport{Processed: len(txns), DryRun: opts.DryRun}
	names := make(map[int]string)

	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(txns))
		}

		text := txn.SearchText()
		if text == "" {
			continue
		}

		match, err := classifier.Classify(ctx, text, txn.Type)
		if err != nil {
			return report, fmt.Errorf("failed to classify transaction %d: %w", txn.ID, err)
		}
		if match == nil || (txn.CategoryID != nil && *txn.CategoryID == match.CategoryID) {
			continue
		}

		change := Change{
			TransactionID: txn.ID,
			Date:          txn.Date,
			Payee:         txn.Payee,
			Description:   txn.Description,
			Amount:        txn.Amount,
			OldCategoryID: txn.CategoryID,
			NewCategoryID: match.CategoryID,
			NewCategory:   match.DisplayName,
			Keyword:       match.Keyword,
			Source:        match.Source,
		}
		if txn.CategoryID != nil {
			change.OldCategory, err = categoryName(ctx, store, names, *txn.CategoryID)
			if err != nil {
				return report, err
			}
		}
		report.Changes = append(report.Changes, change)
	}

	if !opts.DryRun && len(report.Changes) > 0 {
		if err := apply(ctx, store, report.Changes); err != nil {
			return report, err
		}
		report.Applied = len(report.Changes)
	}

	slog.Info("Recategorized transactions",
		"processed", report.Processed,
		"changes", len(report.Changes),
		"applied", report.Applied,
		"dry_run", opts.DryRun)

	return report, nil
}

func apply(ctx context.Context, store RecategorizeStore, changes []Change) (err error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin recategorize: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
	}()

	for _, c := range changes {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = tx.UpdateTransactionCategory(ctx, c.TransactionID, c.NewCategoryID); err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", c.TransactionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recategorize: %w", err)
	}
	return nil
}

func categoryName(ctx context.Context, store RecategorizeStore, cache map[int]string, id int) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}

	cat, err := store.GetCategoryByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		cache[id] = ""
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load category %d: %w", id, err)
	}

	name := cat.Name
	if parentID, ok := cat.ParentID(); ok {
		if parent, perr := store.GetCategoryByID(ctx, parentID); perr == nil {
			name = model.DisplayName(parent.Name, cat.Name)
		}
	}
	cache[id] = name
	return name, nil
}
