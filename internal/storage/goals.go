package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const goalColumns = `
	SELECT id, name, COALESCE(description, ''), target_amount, current_amount, account_id,
		start_date, target_date, completed_date, status, priority, COALESCE(color, ''), created_at
	FROM goals`

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g             model.Goal
		start, target string
		completed     sql.NullString
		accountID     sql.NullInt64
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &accountID,
		&start, &target, &completed, &g.Status, &g.Priority, &g.Color, &g.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if g.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("goal %d: %w", g.ID, err)
	}
	if g.TargetDate, err = parseDate(target); err != nil {
		return nil, fmt.Errorf("goal %d: %w", g.ID, err)
	}
	if g.CompletedDate, err = parseNullDate(completed); err != nil {
		return nil, fmt.Errorf("goal %d: %w", g.ID, err)
	}
	g.AccountID = intPtr(accountID)
	return &g, nil
}

// CreateGoal stores a goal that the goal package has already prepared.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, g *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(g); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO goals (
			name, description, target_amount, current_amount, account_id, start_date,
			target_date, completed_date, status, priority, color
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, nullString(g.Description), g.TargetAmount, g.CurrentAmount, nullInt(g.AccountID),
		formatDate(g.StartDate), formatDate(g.TargetDate), nullDate(g.CompletedDate),
		g.Status, g.Priority, nullString(g.Color))
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get goal ID: %w", err)
	}
	g.ID = int(id)
	return nil
}

// GetGoal returns a goal by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetGoal(ctx context.Context, id int) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	g, err := scanGoal(s.q.QueryRowContext(ctx, goalColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return g, nil
}

// GetGoals returns goals, highest priority first and then by target date.
// An empty status returns every goal.
func (s *SQLiteStorage) GetGoals(ctx context.Context, status model.GoalStatus) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := goalColumns
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY priority DESC, target_date, id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// UpdateGoal writes every mutable field of g.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, g *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(g); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE goals SET
			name = ?, description = ?, target_amount = ?, current_amount = ?, account_id = ?,
			target_date = ?, completed_date = ?, status = ?, priority = ?, color = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		g.Name, nullString(g.Description), g.TargetAmount, g.CurrentAmount, nullInt(g.AccountID),
		formatDate(g.TargetDate), nullDate(g.CompletedDate), g.Status, g.Priority,
		nullString(g.Color), g.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireAffected(result, "goal", g.ID)
}

// DeleteGoal removes a goal.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireAffected(result, "goal", id)
}
