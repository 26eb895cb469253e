package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const keywordColumns = `
	SELECT id, keyword, category_id, match_mode, priority, is_active, created_at, updated_at
	FROM category_keywords`

func scanKeyword(row rowScanner) (*model.CategoryKeyword, error) {
	var k model.CategoryKeyword
	if err := row.Scan(&k.ID, &k.Keyword, &k.CategoryID, &k.MatchMode, &k.Priority,
		&k.IsActive, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

// CreateKeyword stores a keyword rule. The keyword is lowercased and must be
// unique; a repeat returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateKeyword(ctx context.Context, kw *model.CategoryKeyword) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKeyword(kw); err != nil {
		return err
	}

	if _, err := s.GetCategoryByID(ctx, kw.CategoryID); err != nil {
		return fmt.Errorf("keyword %q: %w", kw.Keyword, err)
	}

	kw.Keyword = strings.ToLower(strings.TrimSpace(kw.Keyword))
	if kw.MatchMode == "" {
		kw.MatchMode = model.MatchContains
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO category_keywords (keyword, category_id, match_mode, priority, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		kw.Keyword, kw.CategoryID, kw.MatchMode, kw.Priority, kw.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("keyword %q: %w", kw.Keyword, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create keyword: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get keyword ID: %w", err)
	}
	kw.ID = int(id)
	return nil
}

// GetKeywords returns every rule in evaluation order.
func (s *SQLiteStorage) GetKeywords(ctx context.Context) ([]model.CategoryKeyword, error) {
	return s.queryKeywords(ctx, keywordColumns+` ORDER BY priority DESC, id ASC`)
}

// GetActiveKeywords returns active rules by descending priority, ties by
// ascending id.
func (s *SQLiteStorage) GetActiveKeywords(ctx context.Context) ([]model.CategoryKeyword, error) {
	return s.queryKeywords(ctx, keywordColumns+` WHERE is_active = 1 ORDER BY priority DESC, id ASC`)
}

func (s *SQLiteStorage) queryKeywords(ctx context.Context, query string) ([]model.CategoryKeyword, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keywords []model.CategoryKeyword
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, *k)
	}
	return keywords, rows.Err()
}

// SetKeywordActive enables or disables a rule.
func (s *SQLiteStorage) SetKeywordActive(ctx context.Context, id int, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE category_keywords SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id)
	if err != nil {
		return fmt.Errorf("failed to update keyword: %w", err)
	}
	return requireAffected(result, "keyword", id)
}

// DeleteKeyword removes a rule.
func (s *SQLiteStorage) DeleteKeyword(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM category_keywords WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return requireAffected(result, "keyword", id)
}
