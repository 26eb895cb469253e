package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/keyword"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// Classifier suggests a category for a candidate's text and polarity.
type Classifier interface {
	Classify(ctx context.Context, text string, polarity model.TransactionType) (*keyword.Match, error)
}

// Snapshotter takes an automatic database snapshot before a bulk change.
type Snapshotter interface {
	Auto(ctx context.Context, operation string) (*storage.SnapshotInfo, error)
}

// Request describes one statement file bound for an account. Exclude lists
// candidate positions, in file order, that Commit must not write.
type Request struct {
	Flip              *bool
	DefaultCategoryID *int
	Filename          string
	DateFormat        string
	Content           []byte
	Exclude           []int
	AccountID         int
	SkipDuplicates    bool
	AutoCategorize    bool
}

// NewRequest returns a request with duplicate skipping and auto-categorization
// enabled.
func NewRequest(filename string, content []byte, accountID int) Request {
	return Request{
		Filename:       filename,
		Content:        content,
		AccountID:      accountID,
		SkipDuplicates: true,
		AutoCategorize: true,
	}
}

// Preview is the parsed, categorized and deduplicated view of a file.
type Preview struct {
	FileType         FileType
	Candidates       []model.ImportCandidate
	TotalCount       int
	IncomeCount      int
	ExpenseCount     int
	DuplicateCount   int
	RepeatedCount    int
	CategorizedCount int
	TotalIncome      float64
	TotalExpenses    float64
	Flipped          bool
}

// Result summarizes a committed import.
type Result struct {
	BatchID         string
	SnapshotID      string
	Imported        int
	Skipped         int
	AutoCategorized int
	TotalIncome     float64
	TotalExpenses   float64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSnapshots takes an automatic snapshot before every commit that writes rows.
func WithSnapshots(s Snapshotter) Option {
	return func(p *Pipeline) {
		p.snapshots = s
	}
}

// Pipeline turns statement files into previews and committed transactions.
type Pipeline struct {
	store      service.Storage
	classifier Classifier
	snapshots  Snapshotter
}

// NewPipeline creates a pipeline. A nil classifier disables suggestions.
func NewPipeline(store service.Storage, classifier Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, classifier: classifier}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preview parses the file and reports what a commit would do. Nothing is written.
func (p *Pipeline) Preview(ctx context.Context, req Request) (*Preview, error) {
	account, err := p.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return p.prepare(ctx, req, account)
}

func (p *Pipeline) prepare(ctx context.Context, req Request, account *model.Account) (*Preview, error) {
	fileType, candidates, err := ParseFile(ctx, req.Filename, req.Content, req.DateFormat)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		FileType:   fileType,
		Candidates: candidates,
		TotalCount: len(candidates),
		Flipped:    AdjustPolarity(candidates, req.Flip, account.Type),
	}

	if req.AutoCategorize && p.classifier != nil {
		if err := p.categorize(ctx, candidates); err != nil {
			return nil, err
		}
	}

	if preview.DuplicateCount, preview.RepeatedCount, err = DetectDuplicates(ctx, p.store, account.ID, candidates); err != nil {
		return nil, err
	}

	income, expenses := decimal.Zero, decimal.Zero
	for _, c := range candidates {
		if c.SuggestedCategoryID != nil {
			preview.CategorizedCount++
		}
		amount := decimal.NewFromFloat(c.Amount)
		if c.Polarity == model.TransactionTypeIncome {
			preview.IncomeCount++
			income = income.Add(amount)
		} else {
			preview.ExpenseCount++
			expenses = expenses.Add(amount)
		}
	}
	preview.TotalIncome = income.InexactFloat64()
	preview.TotalExpenses = expenses.InexactFloat64()

	slog.Debug("Prepared import preview",
		"file_type", fileType,
		"count", preview.TotalCount,
		"duplicates", preview.DuplicateCount,
		"repeated_bank_ids", preview.RepeatedCount,
		"categorized", preview.CategorizedCount,
		"flipped", preview.Flipped)
	return preview, nil
}

func (p *Pipeline) categorize(ctx context.Context, candidates []model.ImportCandidate) error {
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := &candidates[i]
		match, err := p.classifier.Classify(ctx, c.SearchText(), c.Polarity)
		if err != nil {
			return fmt.Errorf("failed to categorize %q: %w", c.Payee, err)
		}
		if match == nil {
			continue
		}
		id := match.CategoryID
		c.SuggestedCategoryID = &id
		c.SuggestedCategoryName = match.DisplayName
	}
	return nil
}

// Commit writes the file's transactions to the account in a single storage
// transaction and moves the account balance by the net amount. Duplicates and
// repeated bank ids are skipped when req.SkipDuplicates is set, as are the
// positions in req.Exclude. Rows without a suggestion take req.DefaultCategoryID.
func (p *Pipeline) Commit(ctx context.Context, req Request) (*Result, error) {
	account, err := p.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if req.DefaultCategoryID != nil {
		if _, err := p.store.GetCategoryByID(ctx, *req.DefaultCategoryID); err != nil {
			return nil, fmt.Errorf("failed to load default category: %w", err)
		}
	}

	preview, err := p.prepare(ctx, req, account)
	if err != nil {
		return nil, err
	}

	excluded := make(map[int]bool, len(req.Exclude))
	for _, i := range req.Exclude {
		excluded[i] = true
	}

	result := &Result{BatchID: uuid.NewString()}
	rows := make([]model.Transaction, 0, len(preview.Candidates))
	income, expenses := decimal.Zero, decimal.Zero

	for i, c := range preview.Candidates {
		if excluded[i] || (req.SkipDuplicates && c.Redundant()) {
			result.Skipped++
			continue
		}

		categoryID := req.DefaultCategoryID
		if c.SuggestedCategoryID != nil {
			categoryID = c.SuggestedCategoryID
			result.AutoCategorized++
		}

		rows = append(rows, model.Transaction{
			AccountID:   account.ID,
			Type:        c.Polarity,
			Amount:      c.Amount,
			Date:        c.Date,
			Payee:       c.Payee,
			Description: c.Description,
			CategoryID:  categoryID,
			ImportID:    result.BatchID,
			BankID:      c.BankID,
		})

		amount := decimal.NewFromFloat(c.Amount)
		if c.Polarity == model.TransactionTypeIncome {
			income = income.Add(amount)
		} else {
			expenses = expenses.Add(amount)
		}
	}

	result.Imported = len(rows)
	result.TotalIncome = income.InexactFloat64()
	result.TotalExpenses = expenses.InexactFloat64()
	if len(rows) == 0 {
		slog.Info("Nothing to import", "skipped", result.Skipped)
		return result, nil
	}

	if p.snapshots != nil {
		snap, err := p.snapshots.Auto(ctx, "import")
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot before import: %w", err)
		}
		result.SnapshotID = snap.ID
	}

	if err := p.write(ctx, account.ID, rows, income.Sub(expenses)); err != nil {
		return nil, err
	}

	slog.Info("Imported transactions",
		"account", account.Name,
		"batch", result.BatchID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"auto_categorized", result.AutoCategorized)
	return result, nil
}

func (p *Pipeline) write(ctx context.Context, accountID int, rows []model.Transaction, delta decimal.Decimal) (err error) {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
	}()

	for i := range rows {
		if err = tx.InsertTransaction(ctx, &rows[i]); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err = tx.AdjustAccountBalance(ctx, accountID, delta.Round(2).InexactFloat64()); err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
