package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func createTestAccount(t *testing.T, store *SQLiteStorage, typ model.AccountType) *model.Account {
	t.Helper()
	account := &model.Account{Name: "Test " + string(typ), Type: typ, InitialBalance: 1000}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func createTestCategory(t *testing.T, store *SQLiteStorage, name string, typ model.CategoryType, parentID *int) *model.Category {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), model.CategoryParams{
		Name:     name,
		Type:     typ,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return cat
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	for _, table := range []string{
		"accounts", "categories", "transactions", "budgets",
		"budget_categories", "income_schedules", "category_keywords", "goals",
	} {
		var n int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestMigrate_NewerSchemaRejected(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)

	assert.Error(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestBeginTx(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	account := createTestAccount(t, store, model.AccountTypeChecking)

	insert := func(t *testing.T, payee string) (*model.Transaction, func() error, func() error) {
		t.Helper()
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		txn := &model.Transaction{
			AccountID: account.ID,
			Type:      model.TransactionTypeExpense,
			Amount:    12.5,
			Date:      day(2024, 3, 1),
			Payee:     payee,
		}
		require.NoError(t, tx.InsertTransaction(ctx, txn))
		require.NoError(t, tx.AdjustAccountBalance(ctx, account.ID, -12.5))
		return txn, tx.Commit, tx.Rollback
	}

	t.Run("rollback discards writes", func(t *testing.T) {
		_, _, rollback := insert(t, "rolled back")
		require.NoError(t, rollback())

		txns, err := store.GetTransactionsForRecategorize(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, txns)

		got, err := store.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1000, got.CurrentBalance, 0.001)
	})

	t.Run("commit keeps writes", func(t *testing.T) {
		txn, commit, _ := insert(t, "committed")
		require.NoError(t, commit())

		txns, err := store.GetTransactionsForRecategorize(ctx, false)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, txn.ID, txns[0].ID)

		got, err := store.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.InDelta(t, 987.5, got.CurrentBalance, 0.001)
	})

	t.Run("nested transactions rejected", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.BeginTx(ctx)
		assert.ErrorIs(t, err, ErrNestedTransaction)
		assert.Error(t, tx.Migrate(ctx))
	})
}

func TestWithBusyRetry(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	store.retry.InitialDelay = time.Millisecond
	ctx := context.Background()

	t.Run("busy is retried until it clears", func(t *testing.T) {
		var calls int
		err := store.withBusyRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return sqlite3.Error{Code: sqlite3.ErrBusy}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("busy exhausts retries", func(t *testing.T) {
		err := store.withBusyRetry(ctx, func() error {
			return sqlite3.Error{Code: sqlite3.ErrLocked}
		})
		assert.ErrorIs(t, err, common.ErrMaxRetries)
		assert.ErrorIs(t, err, common.ErrDatabaseBusy)
	})

	t.Run("other errors are returned at once", func(t *testing.T) {
		fatal := errors.New("no such table")
		var calls int
		err := store.withBusyRetry(ctx, func() error {
			calls++
			return fatal
		})
		assert.Equal(t, fatal, err)
		assert.Equal(t, 1, calls)
	})
}

func TestAccounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createTestAccount(t, store, model.AccountTypeCreditCard)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "USD", account.Currency)

	got, err := store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeCreditCard, got.Type)
	assert.InDelta(t, 1000, got.CurrentBalance, 0.001)
	assert.True(t, got.IsActive)

	require.NoError(t, store.AdjustAccountBalance(ctx, account.ID, 250.25))
	got, err = store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1250.25, got.CurrentBalance, 0.001)

	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	_, err = store.GetAccount(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.AdjustAccountBalance(ctx, 999, 1), common.ErrNotFound)

	err = store.CreateAccount(ctx, &model.Account{Name: "Bad", Type: "piggy-bank"})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}
