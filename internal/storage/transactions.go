package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// amountTolerance is the widest difference at which two stored amounts are
// considered equal.
const amountTolerance = 0.005

const transactionColumns = `
	SELECT id, account_id, type, amount, date, COALESCE(payee, ''), COALESCE(description, ''),
		category_id, COALESCE(import_id, ''), COALESCE(bank_id, ''), is_reconciled, created_at
	FROM transactions`

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		t          model.Transaction
		date       string
		categoryID sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &date, &t.Payee, &t.Description,
		&categoryID, &t.ImportID, &t.BankID, &t.IsReconciled, &t.CreatedAt); err != nil {
		return nil, err
	}

	d, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = d
	t.CategoryID = intPtr(categoryID)
	return &t, nil
}

// InsertTransaction stores a transaction and sets its ID.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (
			account_id, type, amount, date, payee, description,
			category_id, import_id, bank_id, is_reconciled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.AccountID, txn.Type, txn.Amount, formatDate(txn.Date),
		nullString(txn.Payee), nullString(txn.Description), nullInt(txn.CategoryID),
		nullString(txn.ImportID), nullString(txn.BankID), txn.IsReconciled)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id
	return nil
}

// TransactionExists reports whether a transaction with the same account,
// calendar date, amount and type is already stored.
func (s *SQLiteStorage) TransactionExists(ctx context.Context, accountID int, date time.Time, amount float64, typ model.TransactionType) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE account_id = ? AND date = ? AND type = ? AND ABS(amount - ?) < ?
		)`, accountID, formatDate(date), typ, amount, amountTolerance).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing transaction: %w", err)
	}
	return exists, nil
}

// GetTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	conds, args := filterConditions(filter, "")

	query := transactionColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.queryTransactions(ctx, query, args...)
}

// filterConditions renders filter as SQL conditions on the transactions
// table, whose columns are qualified with prefix when it is not empty.
func filterConditions(filter service.TransactionFilter, prefix string) (conds []string, args []any) {
	if filter.AccountID > 0 {
		conds = append(conds, prefix+"account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.StartDate != nil {
		conds = append(conds, prefix+"date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conds = append(conds, prefix+"date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}
	if filter.OnlyUncategorized {
		conds = append(conds, prefix+"category_id IS NULL")
	}
	return conds, args
}

// GetTransactionsForRecategorize returns income and expense transactions in
// id order, optionally only those without a category.
func (s *SQLiteStorage) GetTransactionsForRecategorize(ctx context.Context, onlyUncategorized bool) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := transactionColumns + ` WHERE type IN ('income', 'expense')`
	if onlyUncategorized {
		query += ` AND category_id IS NULL`
	}
	query += ` ORDER BY id`

	return s.queryTransactions(ctx, query)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(txns))
	return txns, nil
}

// UpdateTransactionCategory sets a transaction's category.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, transactionID int64, categoryID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}
	return requireAffected(result, "transaction", transactionID)
}

// SumExpenses totals expense amounts filed under any of categoryIDs between
// start and end inclusive.
func (s *SQLiteStorage) SumExpenses(ctx context.Context, categoryIDs []int, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidDateRange, formatDate(end), formatDate(start))
	}
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categoryIDs)), ",")
	args := make([]any, 0, len(categoryIDs)+2)
	for _, id := range categoryIDs {
		args = append(args, id)
	}
	args = append(args, formatDate(start), formatDate(end))

	// #nosec G202 - placeholders contains only '?' markers
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE type = 'expense' AND category_id IN (` + placeholders + `)
			AND date >= ? AND date <= ?`

	var total float64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}
