package model

import (
	"fmt"
	"time"
)

// CategoryType indicates whether a category holds income or expense transactions.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is a node in the two-level category tree. A category is either
// top-level or a subcategory whose parent is top-level. The parent reference is
// unexported so the only ways to build one are the two constructors below.
type Category struct {
	CreatedAt time.Time
	parentID  *int
	Name      string
	Type      CategoryType
	Color     string
	Icon      string
	ID        int
	IsSystem  bool
	IsActive  bool
}

// NewTopLevelCategory builds a category without a parent.
func NewTopLevelCategory(id int, name string, typ CategoryType) Category {
	return Category{ID: id, Name: name, Type: typ, IsActive: true}
}

// NewSubcategory builds a category that hangs off the top-level category parentID.
func NewSubcategory(id int, name string, typ CategoryType, parentID int) Category {
	p := parentID
	return Category{ID: id, Name: name, Type: typ, parentID: &p, IsActive: true}
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.parentID == nil
}

// ParentID returns the parent id for subcategories.
func (c Category) ParentID() (int, bool) {
	if c.parentID == nil {
		return 0, false
	}
	return *c.parentID, true
}

// Accepts reports whether a transaction of type t may be filed under this category.
func (c Category) Accepts(t TransactionType) bool {
	switch t {
	case TransactionTypeIncome:
		return c.Type == CategoryTypeIncome
	case TransactionTypeExpense:
		return c.Type == CategoryTypeExpense
	default:
		return false
	}
}

// DisplayName renders "Parent > Child" for subcategories and the bare name otherwise.
func DisplayName(parentName, name string) string {
	if parentName == "" {
		return name
	}
	return fmt.Sprintf("%s > %s", parentName, name)
}

// CategoryParams describes a category to create. A nil ParentID creates a
// top-level category.
type CategoryParams struct {
	ParentID *int
	Name     string
	Type     CategoryType
	Color    string
	Icon     string
	IsSystem bool
}
