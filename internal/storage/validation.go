// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidKeyword     = errors.New("invalid keyword rule")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidGoal        = errors.New("invalid goal")
	ErrCategoryDepth      = errors.New("subcategories cannot have children")
	ErrNestedTransaction  = errors.New("nested transactions are not supported")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateAccount(a *model.Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, a.Type)
	}
	return nil
}

func validateCategoryParams(p model.CategoryParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, p.Type)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID <= 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Amount < 0 {
		return fmt.Errorf("%w: amount must be a positive magnitude", ErrInvalidTransaction)
	}
	switch txn.Type {
	case model.TransactionTypeIncome, model.TransactionTypeExpense, model.TransactionTypeTransfer:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	return nil
}

func validateKeyword(kw *model.CategoryKeyword) error {
	if kw == nil {
		return fmt.Errorf("%w: keyword", ErrNilParameter)
	}
	if strings.TrimSpace(kw.Keyword) == "" {
		return fmt.Errorf("%w: missing keyword", ErrInvalidKeyword)
	}
	if kw.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidKeyword)
	}
	if kw.MatchMode != "" && !kw.MatchMode.Valid() {
		return fmt.Errorf("%w: unknown match mode %q", ErrInvalidKeyword, kw.MatchMode)
	}
	return nil
}

func validateBudget(b *model.Budget) error {
	if b == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBudget)
	}
	if b.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidBudget)
	}
	if !b.Period.Valid() {
		return fmt.Errorf("%w: unknown period %q", ErrInvalidBudget, b.Period)
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidBudget)
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, ErrInvalidDateRange)
	}
	return nil
}

func validateGoal(g *model.Goal) error {
	if g == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidGoal)
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target amount must be positive", ErrInvalidGoal)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidGoal, g.Status)
	}
	if g.TargetDate.Before(g.StartDate) {
		return fmt.Errorf("%w: %w", ErrInvalidGoal, ErrInvalidDateRange)
	}
	return nil
}
