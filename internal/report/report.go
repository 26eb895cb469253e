// Package report aggregates stored transactions and accounts into spending,
// cash flow, balance and money flow summaries.
package report

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// ErrInvalidPeriod is returned when a period ends before it starts.
var ErrInvalidPeriod = errors.New("invalid report period")

// Node colors used when a category has none.
const (
	incomeColor  = "#52c41a"
	expenseColor = "#ff4d4f"
	budgetColor  = "#1890ff"
	savingsColor = "#52c41a"
)

// Store is the storage a report reads from.
type Store interface {
	GetAccount(ctx context.Context, id int) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
	service.ReportStore
}

// Period is an inclusive range of days, optionally limited to one account.
type Period struct {
	Start     time.Time
	End       time.Time
	AccountID int
}

func (p Period) validate() error {
	if calendar.Day(p.End).Before(calendar.Day(p.Start)) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidPeriod,
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return nil
}

func (p Period) filter() service.TransactionFilter {
	start, end := calendar.Day(p.Start), calendar.Day(p.End)
	return service.TransactionFilter{StartDate: &start, EndDate: &end, AccountID: p.AccountID}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// CategoryShare is one category's part of a total.
type CategoryShare struct {
	Name       string
	Color      string
	Amount     float64
	Percentage float64
}

// Spending breaks down expenses by category.
type Spending struct {
	Period     Period
	Categories []CategoryShare
	Total      float64
}

// SpendingByCategory sums categorized expenses in the period, largest first,
// with each category's percentage of the total.
func SpendingByCategory(ctx context.Context, store Store, p Period) (*Spending, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	totals, err := store.CategoryTotals(ctx, model.TransactionTypeExpense, p.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to total spending: %w", err)
	}

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(decimal.NewFromFloat(t.Amount))
	}

	out := &Spending{Period: p, Total: round2(sum)}
	for _, t := range totals {
		share := CategoryShare{Name: t.Name, Color: t.Color, Amount: round2(decimal.NewFromFloat(t.Amount))}
		if sum.IsPositive() {
			share.Percentage = round2(decimal.NewFromFloat(t.Amount).Div(sum).Mul(decimal.NewFromInt(100)))
		}
		out.Categories = append(out.Categories, share)
	}
	return out, nil
}

// CashFlow compares income with expenses.
type CashFlow struct {
	Period      Period
	Income      float64
	Expenses    float64
	Net         float64
	SavingsRate float64 // percent of income kept; 0 without income
}

// IncomeVsExpenses totals income and expenses in the period. Transfers are
// not counted.
func IncomeVsExpenses(ctx context.Context, store Store, p Period) (*CashFlow, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	totals, err := store.TypeTotals(ctx, p.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to total cash flow: %w", err)
	}

	income := decimal.NewFromFloat(totals.Income)
	expenses := decimal.NewFromFloat(totals.Expense)
	net := income.Sub(expenses)

	out := &CashFlow{
		Period:   p,
		Income:   round2(income),
		Expenses: round2(expenses),
		Net:      round2(net),
	}
	if income.IsPositive() {
		out.SavingsRate = round2(net.Div(income).Mul(decimal.NewFromInt(100)))
	}
	return out, nil
}

// Balances lists active accounts with asset and liability totals.
type Balances struct {
	Accounts         []model.Account
	TotalAssets      float64
	TotalLiabilities float64
	NetWorth         float64
}

// IsLiability reports whether balances of the account type are owed.
func IsLiability(t model.AccountType) bool {
	return t == model.AccountTypeCreditCard || t == model.AccountTypeLoan
}

// AccountBalances totals the current balances of active accounts. Credit
// cards and loans count as liabilities by the magnitude of their balance.
func AccountBalances(ctx context.Context, store Store) (*Balances, error) {
	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	assets, liabilities := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		bal := decimal.NewFromFloat(a.CurrentBalance)
		if IsLiability(a.Type) {
			liabilities = liabilities.Add(bal.Abs())
		} else {
			assets = assets.Add(bal)
		}
	}
	return &Balances{
		Accounts:         accounts,
		TotalAssets:      round2(assets),
		TotalLiabilities: round2(liabilities),
		NetWorth:         round2(assets.Sub(liabilities)),
	}, nil
}

// BalancePoint is an account's balance after one transaction.
type BalancePoint struct {
	Date    time.Time
	Balance float64
}

// Trend is an account's running balance across a period.
type Trend struct {
	Account model.Account
	Period  Period
	Points  []BalancePoint
	Opening float64
}

// BalanceTrend walks the account's transactions in the period oldest first.
// The walk opens at the initial balance plus the net of everything dated
// before the period. Transfers do not move the balance.
func BalanceTrend(ctx context.Context, store Store, accountID int, start, end time.Time) (*Trend, error) {
	p := Period{Start: start, End: end, AccountID: accountID}
	if err := p.validate(); err != nil {
		return nil, err
	}
	account, err := store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", accountID, err)
	}

	before := calendar.Day(start).AddDate(0, 0, -1)
	prior, err := store.TypeTotals(ctx, service.TransactionFilter{AccountID: accountID, EndDate: &before})
	if err != nil {
		return nil, fmt.Errorf("failed to total prior transactions: %w", err)
	}
	balance := decimal.NewFromFloat(account.InitialBalance).
		Add(decimal.NewFromFloat(prior.Income)).
		Sub(decimal.NewFromFloat(prior.Expense))

	txns, err := store.GetTransactions(ctx, p.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	// GetTransactions returns newest first.
	slices.Reverse(txns)

	out := &Trend{Account: *account, Period: p, Opening: round2(balance)}
	for _, t := range txns {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case model.TransactionTypeIncome:
			balance = balance.Add(amount)
		case model.TransactionTypeExpense:
			balance = balance.Sub(amount)
		}
		out.Points = append(out.Points, BalancePoint{Date: t.Date, Balance: round2(balance)})
	}
	return out, nil
}

// NodeKind says which side of a money flow a node sits on.
type NodeKind string

// Flow node kinds.
const (
	NodeIncome  NodeKind = "income"
	NodeBudget  NodeKind = "budget"
	NodeExpense NodeKind = "expense"
	NodeSavings NodeKind = "savings"
)

// FlowNode is one box of a money flow diagram.
type FlowNode struct {
	Name  string
	Color string
	Kind  NodeKind
}

// FlowLink moves Value from node Source to node Target, both indexes into
// Flow.Nodes.
type FlowLink struct {
	Source int
	Target int
	Value  float64
}

// Flow is a money flow from income categories through a single budget node
// to expense categories and savings.
type Flow struct {
	Period        Period
	Nodes         []FlowNode
	Links         []FlowLink
	TotalIncome   float64
	TotalExpenses float64
	Savings       float64
}

// MoneyFlow builds the flow for the period. Income nodes come first, then
// the budget node, then expense nodes largest first. A Savings node is added
// only when income exceeds expenses.
func MoneyFlow(ctx context.Context, store Store, p Period) (*Flow, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	income, err := store.CategoryTotals(ctx, model.TransactionTypeIncome, p.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to total income: %w", err)
	}
	expenses, err := store.CategoryTotals(ctx, model.TransactionTypeExpense, p.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to total expenses: %w", err)
	}

	out := &Flow{Period: p}
	totalIncome, totalExpenses := decimal.Zero, decimal.Zero

	for _, t := range income {
		totalIncome = totalIncome.Add(decimal.NewFromFloat(t.Amount))
		out.Nodes = append(out.Nodes, FlowNode{Name: t.Name, Color: colorOr(t.Color, incomeColor), Kind: NodeIncome})
	}
	budget := len(out.Nodes)
	out.Nodes = append(out.Nodes, FlowNode{Name: "Total Budget", Color: budgetColor, Kind: NodeBudget})
	for i, t := range income {
		out.Links = append(out.Links, FlowLink{Source: i, Target: budget, Value: round2(decimal.NewFromFloat(t.Amount))})
	}

	for _, t := range expenses {
		totalExpenses = totalExpenses.Add(decimal.NewFromFloat(t.Amount))
		out.Links = append(out.Links, FlowLink{Source: budget, Target: len(out.Nodes), Value: round2(decimal.NewFromFloat(t.Amount))})
		out.Nodes = append(out.Nodes, FlowNode{Name: t.Name, Color: colorOr(t.Color, expenseColor), Kind: NodeExpense})
	}

	savings := totalIncome.Sub(totalExpenses)
	if savings.IsPositive() {
		out.Links = append(out.Links, FlowLink{Source: budget, Target: len(out.Nodes), Value: round2(savings)})
		out.Nodes = append(out.Nodes, FlowNode{Name: "Savings", Color: savingsColor, Kind: NodeSavings})
	}

	out.TotalIncome = round2(totalIncome)
	out.TotalExpenses = round2(totalExpenses)
	out.Savings = round2(savings)
	return out, nil
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
