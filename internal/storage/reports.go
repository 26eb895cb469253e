package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// CategoryTotals sums transactions of type typ matching filter per category,
// largest first. Uncategorized transactions are left out.
func (s *SQLiteStorage) CategoryTotals(ctx context.Context, typ model.TransactionType, filter service.TransactionFilter) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	conds, args := filterConditions(filter, "t.")
	conds = append([]string{"t.type = ?"}, conds...)
	args = append([]any{typ}, args...)

	// #nosec G202 - conditions contain only fixed column names and ? markers
	query := `
		SELECT c.id, c.name, COALESCE(p.name, ''), COALESCE(c.color, ''), SUM(t.amount) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		LEFT JOIN categories p ON p.id = c.parent_id
		WHERE ` + strings.Join(conds, " AND ") + `
		GROUP BY c.id
		ORDER BY total DESC, c.id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CategoryTotal
	for rows.Next() {
		var (
			ct     model.CategoryTotal
			name   string
			parent string
		)
		if err := rows.Scan(&ct.CategoryID, &name, &parent, &ct.Color, &ct.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Name = model.DisplayName(parent, name)
		out = append(out, ct)
	}
	return out, rows.Err()
}

// TypeTotals sums income and expense amounts of transactions matching filter.
func (s *SQLiteStorage) TypeTotals(ctx context.Context, filter service.TransactionFilter) (model.TypeTotals, error) {
	if err := validateContext(ctx); err != nil {
		return model.TypeTotals{}, err
	}

	conds, args := filterConditions(filter, "")
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0)
		FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var totals model.TypeTotals
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&totals.Income, &totals.Expense); err != nil {
		return model.TypeTotals{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return totals, nil
}
