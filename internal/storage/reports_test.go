package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func TestReportTotals(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	checking := createTestAccount(t, store, model.AccountTypeChecking)
	card := createTestAccount(t, store, model.AccountTypeCreditCard)
	food := createTestCategory(t, store, "Food", model.CategoryTypeExpense, nil)
	dining := createTestCategory(t, store, "Dining", model.CategoryTypeExpense, &food.ID)
	rent := createTestCategory(t, store, "Rent", model.CategoryTypeExpense, nil)
	salary := createTestCategory(t, store, "Salary", model.CategoryTypeIncome, nil)

	insert := func(accountID int, typ model.TransactionType, amount float64, d int, cat *model.Category) {
		txn := &model.Transaction{AccountID: accountID, Type: typ, Amount: amount, Date: day(2024, 5, d)}
		if cat != nil {
			txn.CategoryID = &cat.ID
		}
		require.NoError(t, store.InsertTransaction(ctx, txn))
	}
	insert(checking.ID, model.TransactionTypeIncome, 3000, 1, salary)
	insert(checking.ID, model.TransactionTypeExpense, 1200, 2, rent)
	insert(checking.ID, model.TransactionTypeExpense, 40, 3, dining)
	insert(card.ID, model.TransactionTypeExpense, 60, 4, dining)
	insert(card.ID, model.TransactionTypeExpense, 25, 5, nil)
	insert(checking.ID, model.TransactionTypeTransfer, 500, 6, nil)
	insert(checking.ID, model.TransactionTypeExpense, 999, 20, rent)

	start, end := day(2024, 5, 1), day(2024, 5, 10)
	window := service.TransactionFilter{StartDate: &start, EndDate: &end}

	t.Run("category totals", func(t *testing.T) {
		got, err := store.CategoryTotals(ctx, model.TransactionTypeExpense, window)
		require.NoError(t, err)
		require.Len(t, got, 2, "uncategorized spending is left out")
		assert.Equal(t, "Rent", got[0].Name)
		assert.InDelta(t, 1200, got[0].Amount, 0.001)
		assert.Equal(t, "Food > Dining", got[1].Name)
		assert.Equal(t, dining.ID, got[1].CategoryID)
		assert.InDelta(t, 100, got[1].Amount, 0.001)
	})

	t.Run("category totals for one account", func(t *testing.T) {
		f := window
		f.AccountID = card.ID
		got, err := store.CategoryTotals(ctx, model.TransactionTypeExpense, f)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 60, got[0].Amount, 0.001)
	})

	t.Run("income totals", func(t *testing.T) {
		got, err := store.CategoryTotals(ctx, model.TransactionTypeIncome, window)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Salary", got[0].Name)
	})

	t.Run("type totals", func(t *testing.T) {
		got, err := store.TypeTotals(ctx, window)
		require.NoError(t, err)
		assert.InDelta(t, 3000, got.Income, 0.001)
		assert.InDelta(t, 1325, got.Expense, 0.001, "transfers are not counted")
	})

	t.Run("type totals with no matches", func(t *testing.T) {
		before := day(2024, 4, 30)
		got, err := store.TypeTotals(ctx, service.TransactionFilter{EndDate: &before})
		require.NoError(t, err)
		assert.Zero(t, got.Income)
		assert.Zero(t, got.Expense)
	})
}
