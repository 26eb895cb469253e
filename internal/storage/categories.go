package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// categoryColumns joins each category to its parent so a category whose
// parent is itself a subcategory can be rejected on read.
const categoryColumns = `
	SELECT c.id, c.parent_id, p.parent_id, c.name, c.type,
		COALESCE(c.color, ''), COALESCE(c.icon, ''), c.is_system, c.is_active, c.created_at
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		createdAt            time.Time
		parentID, grandparID sql.NullInt64
		name, typ            string
		color, icon          string
		id                   int
		isSystem, isActive   bool
	)

	if err := row.Scan(&id, &parentID, &grandparID, &name, &typ, &color, &icon, &isSystem, &isActive, &createdAt); err != nil {
		return nil, err
	}
	if grandparID.Valid {
		return nil, fmt.Errorf("%w: category %d", ErrCategoryDepth, id)
	}

	var cat model.Category
	if parentID.Valid {
		cat = model.NewSubcategory(id, name, model.CategoryType(typ), int(parentID.Int64))
	} else {
		cat = model.NewTopLevelCategory(id, name, model.CategoryType(typ))
	}
	cat.CreatedAt = createdAt
	cat.Color = color
	cat.Icon = icon
	cat.IsSystem = isSystem
	cat.IsActive = isActive
	return &cat, nil
}

// GetCategories returns all active categories, parents before their children.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, categoryColumns+`
		WHERE c.is_active = 1
		ORDER BY COALESCE(p.name, c.name) COLLATE NOCASE, c.parent_id IS NOT NULL, c.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByID returns a category by its id, or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.q.QueryRowContext(ctx, categoryColumns+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetTopLevelCategoryByName returns the active top-level category with the
// given name, compared case-insensitively. It returns nil when none exists.
func (s *SQLiteStorage) GetTopLevelCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.q.QueryRowContext(ctx, categoryColumns+`
		WHERE c.parent_id IS NULL AND c.name = ? COLLATE NOCASE AND c.is_active = 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetSubcategoryByName returns the active subcategory of parentID with the
// given name. It returns nil when none exists.
func (s *SQLiteStorage) GetSubcategoryByName(ctx context.Context, parentID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.q.QueryRowContext(ctx, categoryColumns+`
		WHERE c.parent_id = ? AND c.name = ? COLLATE NOCASE AND c.is_active = 1`, parentID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// CreateCategory creates a category. A subcategory must hang off a top-level
// category of the same type.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, params model.CategoryParams) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryParams(params); err != nil {
		return nil, err
	}

	var parentArg any
	if params.ParentID != nil {
		parent, err := s.GetCategoryByID(ctx, *params.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent category: %w", err)
		}
		if !parent.IsTopLevel() {
			return nil, fmt.Errorf("%w: %q is a subcategory", ErrCategoryDepth, parent.Name)
		}
		if parent.Type != params.Type {
			return nil, fmt.Errorf("%w: %s subcategory under %s parent %q",
				ErrInvalidCategory, params.Type, parent.Type, parent.Name)
		}
		parentArg = *params.ParentID
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (parent_id, name, type, color, icon, is_system, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		parentArg, strings.TrimSpace(params.Name), params.Type,
		nullString(params.Color), nullString(params.Icon), params.IsSystem)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category %q: %w", params.Name, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Debug("created category", "id", id, "name", params.Name, "parent_id", parentArg)
	return s.GetCategoryByID(ctx, int(id))
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
