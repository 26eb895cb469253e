package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const incomeColumns = `
	SELECT id, name, COALESCE(description, ''), amount, frequency, start_date, end_date,
		next_expected_date, semimonthly_day1, semimonthly_day2, account_id, category_id,
		is_active, created_at
	FROM income_schedules`

func scanIncomeSchedule(row rowScanner) (*model.IncomeSchedule, error) {
	var (
		s                     model.IncomeSchedule
		start, next           string
		end                   sql.NullString
		day1, day2            sql.NullInt64
		accountID, categoryID sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Amount, &s.Frequency, &start, &end,
		&next, &day1, &day2, &accountID, &categoryID, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if s.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("income schedule %d: %w", s.ID, err)
	}
	if s.NextExpectedDate, err = parseDate(next); err != nil {
		return nil, fmt.Errorf("income schedule %d: %w", s.ID, err)
	}
	if s.EndDate, err = parseNullDate(end); err != nil {
		return nil, fmt.Errorf("income schedule %d: %w", s.ID, err)
	}
	s.SemimonthlyDay1 = intPtr(day1)
	s.SemimonthlyDay2 = intPtr(day2)
	s.AccountID = intPtr(accountID)
	s.CategoryID = intPtr(categoryID)
	return &s, nil
}

// CreateIncomeSchedule stores a schedule that has already been validated and
// prepared by the income package.
func (s *SQLiteStorage) CreateIncomeSchedule(ctx context.Context, sched *model.IncomeSchedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if sched == nil {
		return fmt.Errorf("%w: income schedule", ErrNilParameter)
	}
	if err := validateString(sched.Name, "name"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO income_schedules (
			name, description, amount, frequency, start_date, end_date, next_expected_date,
			semimonthly_day1, semimonthly_day2, account_id, category_id, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sched.Name, nullString(sched.Description), sched.Amount, sched.Frequency,
		formatDate(sched.StartDate), nullDate(sched.EndDate), formatDate(sched.NextExpectedDate),
		nullInt(sched.SemimonthlyDay1), nullInt(sched.SemimonthlyDay2),
		nullInt(sched.AccountID), nullInt(sched.CategoryID), sched.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create income schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get income schedule ID: %w", err)
	}
	sched.ID = int(id)
	return nil
}

// GetIncomeSchedule returns a schedule by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetIncomeSchedule(ctx context.Context, id int) (*model.IncomeSchedule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	sched, err := scanIncomeSchedule(s.q.QueryRowContext(ctx, incomeColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("income schedule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query income schedule: %w", err)
	}
	return sched, nil
}

// GetIncomeSchedules returns schedules ordered by next expected date.
func (s *SQLiteStorage) GetIncomeSchedules(ctx context.Context, activeOnly bool) ([]model.IncomeSchedule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := incomeColumns
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY next_expected_date, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query income schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.IncomeSchedule
	for rows.Next() {
		sched, err := scanIncomeSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income schedule: %w", err)
		}
		out = append(out, *sched)
	}
	return out, rows.Err()
}

// UpdateNextExpectedDate moves a schedule's cursor.
func (s *SQLiteStorage) UpdateNextExpectedDate(ctx context.Context, id int, next time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE income_schedules SET next_expected_date = ? WHERE id = ?`, formatDate(next), id)
	if err != nil {
		return fmt.Errorf("failed to update income schedule: %w", err)
	}
	return requireAffected(result, "income schedule", id)
}
