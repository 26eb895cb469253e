package importer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/keyword"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/seed"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

const januaryCSV = `Date,Description,Amount
01/15/2024,STARBUCKS #123,-5.75
01/16/2024,PAYROLL ACME CORP,2500.00
01/17/2024,MYSTERY VENDOR XYZ,-20.00
`

type pipelineFixture struct {
	store    *storage.SQLiteStorage
	pipeline *Pipeline
	account  *model.Account
}

func newPipelineFixture(t *testing.T, accountType model.AccountType, opts ...Option) *pipelineFixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	_, err = seed.Apply(ctx, store, seed.PresetCategories)
	require.NoError(t, err)

	account := &model.Account{Name: "Main", Type: accountType, InitialBalance: 1000}
	require.NoError(t, store.CreateAccount(ctx, account))

	matcher := keyword.NewMatcher(store, keyword.BuiltIn())
	return &pipelineFixture{
		store:    store,
		pipeline: NewPipeline(store, matcher, opts...),
		account:  account,
	}
}

func (f *pipelineFixture) balance(t *testing.T) float64 {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), f.account.ID)
	require.NoError(t, err)
	return a.CurrentBalance
}

func TestPipeline_Preview(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)
	ctx := context.Background()

	preview, err := f.pipeline.Preview(ctx, NewRequest("jan.csv", []byte(januaryCSV), f.account.ID))
	require.NoError(t, err)

	assert.Equal(t, FileTypeCSV, preview.FileType)
	assert.False(t, preview.Flipped)
	assert.Equal(t, 3, preview.TotalCount)
	assert.Equal(t, 1, preview.IncomeCount)
	assert.Equal(t, 2, preview.ExpenseCount)
	assert.Equal(t, 2, preview.CategorizedCount)
	assert.Zero(t, preview.DuplicateCount)
	assert.InDelta(t, 2500.0, preview.TotalIncome, 0.001)
	assert.InDelta(t, 25.75, preview.TotalExpenses, 0.001)

	assert.Equal(t, "Food > Coffee Shops", preview.Candidates[0].SuggestedCategoryName)
	assert.Equal(t, "Income > Salary", preview.Candidates[1].SuggestedCategoryName)
	assert.Nil(t, preview.Candidates[2].SuggestedCategoryID)

	txns, err := f.store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns, "preview writes nothing")
	assert.InDelta(t, 1000.0, f.balance(t), 0.001)
}

func TestPipeline_PreviewWithoutCategorization(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)

	req := NewRequest("jan.csv", []byte(januaryCSV), f.account.ID)
	req.AutoCategorize = false

	preview, err := f.pipeline.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, preview.CategorizedCount)
}

func TestPipeline_Commit(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)
	ctx := context.Background()

	fallback, err := f.store.CreateCategory(ctx, model.CategoryParams{Name: "To Review", Type: model.CategoryTypeExpense})
	require.NoError(t, err)

	req := NewRequest("jan.csv", []byte(januaryCSV), f.account.ID)
	req.DefaultCategoryID = &fallback.ID

	result, err := f.pipeline.Commit(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 3, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, 2, result.AutoCategorized)
	assert.InDelta(t, 2500.0, result.TotalIncome, 0.001)
	assert.InDelta(t, 25.75, result.TotalExpenses, 0.001)
	assert.Empty(t, result.SnapshotID)

	assert.InDelta(t, 3474.25, f.balance(t), 0.001)

	txns, err := f.store.GetTransactions(ctx, service.TransactionFilter{AccountID: f.account.ID})
	require.NoError(t, err)
	require.Len(t, txns, 3)
	for _, txn := range txns {
		assert.Equal(t, result.BatchID, txn.ImportID)
		require.NotNil(t, txn.CategoryID, txn.Payee)
	}
	// Newest first: the uncategorized row took the fallback.
	assert.Equal(t, "MYSTERY VENDOR XYZ", txns[0].Payee)
	assert.Equal(t, fallback.ID, *txns[0].CategoryID)

	t.Run("reimport skips duplicates", func(t *testing.T) {
		again, err := f.pipeline.Commit(ctx, req)
		require.NoError(t, err)
		assert.Zero(t, again.Imported)
		assert.Equal(t, 3, again.Skipped)
		assert.InDelta(t, 3474.25, f.balance(t), 0.001)

		preview, err := f.pipeline.Preview(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 3, preview.DuplicateCount)
	})

	t.Run("duplicates kept on request", func(t *testing.T) {
		keep := req
		keep.SkipDuplicates = false
		forced, err := f.pipeline.Commit(ctx, keep)
		require.NoError(t, err)
		assert.Equal(t, 3, forced.Imported)
		assert.NotEqual(t, result.BatchID, forced.BatchID)
		assert.InDelta(t, 5948.5, f.balance(t), 0.001)
	})
}

func TestPipeline_CommitExclude(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)
	ctx := context.Background()

	req := NewRequest("jan.csv", []byte(januaryCSV), f.account.ID)
	req.Exclude = []int{1, 7}

	result, err := f.pipeline.Commit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.TotalIncome)
	assert.InDelta(t, 974.25, f.balance(t), 0.001)

	txns, err := f.store.GetTransactions(ctx, service.TransactionFilter{AccountID: f.account.ID})
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotEqual(t, "PAYROLL ACME CORP", txn.Payee)
	}
}

func TestPipeline_CreditCardFlip(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeCreditCard)
	ctx := context.Background()
	content := []byte("Date,Description,Amount\n01/10/2024,NETFLIX.COM,15.00\n")

	preview, err := f.pipeline.Preview(ctx, NewRequest("card.csv", content, f.account.ID))
	require.NoError(t, err)
	assert.True(t, preview.Flipped)
	assert.Equal(t, 1, preview.ExpenseCount)
	assert.Equal(t, "Entertainment > Streaming Services", preview.Candidates[0].SuggestedCategoryName)

	req := NewRequest("card.csv", content, f.account.ID)
	req.Flip = boolPtr(false)
	preview, err = f.pipeline.Preview(ctx, req)
	require.NoError(t, err)
	assert.False(t, preview.Flipped)
	assert.Equal(t, 1, preview.IncomeCount)
	assert.Zero(t, preview.CategorizedCount, "expense-only rules do not match income")

	result, err := f.pipeline.Commit(ctx, NewRequest("card.csv", content, f.account.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.InDelta(t, 985.0, f.balance(t), 0.001)
}

func TestPipeline_Snapshots(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)
	manager, err := f.store.NewSnapshotManager()
	require.NoError(t, err)
	f.pipeline = NewPipeline(f.store, nil, WithSnapshots(manager))

	result, err := f.pipeline.Commit(context.Background(), NewRequest("jan.csv", []byte(januaryCSV), f.account.ID))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.SnapshotID, "auto-import-"), result.SnapshotID)
	assert.Zero(t, result.AutoCategorized, "nil classifier")

	snaps, err := manager.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Zero(t, snaps[0].RowCounts["transactions"], "snapshot predates the import")
}

func TestPipeline_Errors(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)
	ctx := context.Background()

	_, err := f.pipeline.Preview(ctx, NewRequest("jan.csv", []byte(januaryCSV), 999))
	assert.ErrorIs(t, err, common.ErrNotFound)

	missing := 999
	req := NewRequest("jan.csv", []byte(januaryCSV), f.account.ID)
	req.DefaultCategoryID = &missing
	_, err = f.pipeline.Commit(ctx, req)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.pipeline.Commit(ctx, NewRequest("jan.xls", []byte(januaryCSV), f.account.ID))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	txns, err := f.store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestWritePreviewCSV(t *testing.T) {
	f := newPipelineFixture(t, model.AccountTypeChecking)

	preview, err := f.pipeline.Preview(context.Background(), NewRequest("jan.csv", []byte(januaryCSV), f.account.ID))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePreviewCSV(&buf, preview))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,type,amount,payee,description,suggested_category,bank_id,duplicate,repeated_bank_id", lines[0])
	assert.Equal(t, "2024-01-15,expense,5.75,STARBUCKS #123,STARBUCKS #123,Food > Coffee Shops,,false,false", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "2024-01-16,income,2500.00,"), lines[2])
}
