// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate         *time.Time
	EndDate           *time.Time
	AccountID         int
	Limit             int
	OnlyUncategorized bool
}

// AccountStore persists accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id int) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	AdjustAccountBalance(ctx context.Context, id int, delta float64) error
}

// CategoryStore persists the two-level category tree.
type CategoryStore interface {
	CreateCategory(ctx context.Context, params model.CategoryParams) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetTopLevelCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetSubcategoryByName(ctx context.Context, parentID int, name string) (*model.Category, error)
}

// TransactionStore persists transactions.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, txn *model.Transaction) error
	TransactionExists(ctx context.Context, accountID int, date time.Time, amount float64, typ model.TransactionType) (bool, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionsForRecategorize(ctx context.Context, onlyUncategorized bool) ([]model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, transactionID int64, categoryID int) error
	SumExpenses(ctx context.Context, categoryIDs []int, start, end time.Time) (float64, error)
}

// KeywordStore persists user keyword rules.
type KeywordStore interface {
	CreateKeyword(ctx context.Context, kw *model.CategoryKeyword) error
	GetKeywords(ctx context.Context) ([]model.CategoryKeyword, error)
	GetActiveKeywords(ctx context.Context) ([]model.CategoryKeyword, error)
	SetKeywordActive(ctx context.Context, id int, active bool) error
	DeleteKeyword(ctx context.Context, id int) error
}

// BudgetStore persists budgets.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b *model.Budget) error
	GetBudget(ctx context.Context, id int) (*model.Budget, error)
	GetBudgets(ctx context.Context, activeOnly bool) ([]model.Budget, error)
	SetRolloverAmount(ctx context.Context, budgetID int, amount float64) error
}

// IncomeStore persists income schedules.
type IncomeStore interface {
	CreateIncomeSchedule(ctx context.Context, s *model.IncomeSchedule) error
	GetIncomeSchedule(ctx context.Context, id int) (*model.IncomeSchedule, error)
	GetIncomeSchedules(ctx context.Context, activeOnly bool) ([]model.IncomeSchedule, error)
	UpdateNextExpectedDate(ctx context.Context, id int, next time.Time) error
}

// GoalStore persists savings goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *model.Goal) error
	GetGoal(ctx context.Context, id int) (*model.Goal, error)
	GetGoals(ctx context.Context, status model.GoalStatus) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, g *model.Goal) error
	DeleteGoal(ctx context.Context, id int) error
}

// ReportStore aggregates transactions for reports.
type ReportStore interface {
	CategoryTotals(ctx context.Context, typ model.TransactionType, filter TransactionFilter) ([]model.CategoryTotal, error)
	TypeTotals(ctx context.Context, filter TransactionFilter) (model.TypeTotals, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	AccountStore
	CategoryStore
	TransactionStore
	KeywordStore
	BudgetStore
	IncomeStore
	GoalStore
	ReportStore

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
