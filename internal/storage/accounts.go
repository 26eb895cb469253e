package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const accountColumns = `
	SELECT id, name, type, currency, initial_balance, current_balance,
		COALESCE(notes, ''), is_active, created_at
	FROM accounts`

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Currency, &a.InitialBalance,
		&a.CurrentBalance, &a.Notes, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts an account. The current balance starts at the
// initial balance.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (name, type, currency, initial_balance, current_balance, notes, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		account.Name, account.Type, account.Currency, account.InitialBalance,
		account.InitialBalance, nullString(account.Notes))
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	account.ID = int(id)
	account.CurrentBalance = account.InitialBalance
	account.IsActive = true
	return nil
}

// GetAccount returns an account by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	a, err := scanAccount(s.q.QueryRowContext(ctx, accountColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

// GetAccounts returns active accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, accountColumns+` WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// AdjustAccountBalance adds delta to an account's current balance.
func (s *SQLiteStorage) AdjustAccountBalance(ctx context.Context, id int, delta float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE accounts SET current_balance = ROUND(current_balance + ?, 2) WHERE id = ?`,
		math.Round(delta*100)/100, id)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}
	return requireAffected(result, "account", id)
}

func requireAffected(result sql.Result, what string, id any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, common.ErrNotFound)
	}
	return nil
}
