package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const budgetColumns = `
	SELECT id, name, amount, period, start_date, end_date, allow_rollover,
		rollover_amount, is_active, created_at
	FROM budgets`

func scanBudget(row rowScanner) (*model.Budget, error) {
	var (
		b     model.Budget
		start string
		end   sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Amount, &b.Period, &start, &end,
		&b.AllowRollover, &b.RolloverAmount, &b.IsActive, &b.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("budget %d: %w", b.ID, err)
	}
	if b.EndDate, err = parseNullDate(end); err != nil {
		return nil, fmt.Errorf("budget %d: %w", b.ID, err)
	}
	return &b, nil
}

// CreateBudget stores a budget and its category set.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, b *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(b); err != nil {
		return err
	}

	b.StartDate = calendar.Day(b.StartDate)
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO budgets (name, amount, period, start_date, end_date, allow_rollover, rollover_amount, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 0, 1)`,
		b.Name, b.Amount, b.Period, formatDate(b.StartDate), nullDate(b.EndDate), b.AllowRollover)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get budget ID: %w", err)
	}

	for _, categoryID := range b.CategoryIDs {
		if _, err := s.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO budget_categories (budget_id, category_id) VALUES (?, ?)`,
			id, categoryID); err != nil {
			return fmt.Errorf("failed to link budget category %d: %w", categoryID, err)
		}
	}

	b.ID = int(id)
	b.RolloverAmount = 0
	b.IsActive = true
	return nil
}

// GetBudget returns a budget with its categories, or common.ErrNotFound.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id int) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	b, err := scanBudget(s.q.QueryRowContext(ctx, budgetColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	if b.CategoryIDs, err = s.budgetCategoryIDs(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBudgets returns budgets ordered by id.
func (s *SQLiteStorage) GetBudgets(ctx context.Context, activeOnly bool) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := budgetColumns
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}

	var budgets []model.Budget
	for rows.Next() {
		b, scanErr := scanBudget(rows)
		if scanErr != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan budget: %w", scanErr)
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	// Close before the per-budget queries; the pool has a single connection.
	_ = rows.Close()

	for i := range budgets {
		if budgets[i].CategoryIDs, err = s.budgetCategoryIDs(ctx, budgets[i].ID); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

func (s *SQLiteStorage) budgetCategoryIDs(ctx context.Context, budgetID int) ([]int, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT category_id FROM budget_categories WHERE budget_id = ? ORDER BY category_id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget category: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetRolloverAmount stores a recomputed rollover for a budget.
func (s *SQLiteStorage) SetRolloverAmount(ctx context.Context, budgetID int, amount float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE budgets SET rollover_amount = ? WHERE id = ?`, amount, budgetID)
	if err != nil {
		return fmt.Errorf("failed to update rollover amount: %w", err)
	}
	return requireAffected(result, "budget", budgetID)
}
