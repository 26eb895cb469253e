// Package model defines the core data structures for the spice application.
package model

import (
	"time"
)

// TransactionType is the direction of money for a transaction. For import
// candidates only income and expense occur; that pair is the candidate's polarity.
type TransactionType string

const (
	// TransactionTypeIncome is money coming into an account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense is money leaving an account.
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeTransfer moves money between two accounts.
	TransactionTypeTransfer TransactionType = "transfer"
)

// Invert swaps income and expense. Transfers are returned unchanged.
func (t TransactionType) Invert() TransactionType {
	switch t {
	case TransactionTypeIncome:
		return TransactionTypeExpense
	case TransactionTypeExpense:
		return TransactionTypeIncome
	default:
		return t
	}
}

// Transaction is a persisted financial transaction.
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	CategoryID   *int
	Payee        string
	Description  string
	ImportID     string // batch id shared by every row of one committed import
	BankID       string // FITID when the source file supplied one
	Type         TransactionType
	Amount       float64 // always a positive magnitude
	ID           int64
	AccountID    int
	IsReconciled bool
}

// SearchText is the text keyword rules are matched against.
func (t Transaction) SearchText() string {
	return joinNonEmpty(t.Payee, t.Description)
}

// ImportCandidate is a parsed row from a bank file that has not been persisted.
type ImportCandidate struct {
	Date                  time.Time
	SuggestedCategoryID   *int
	Payee                 string
	Description           string
	OriginalDescription   string
	BankID                string
	SuggestedCategoryName string
	Polarity              TransactionType
	Amount                float64
	// Duplicate marks a row matching a transaction already in the account.
	Duplicate bool
	// RepeatedBankID marks a row whose bank id appeared earlier in the same file.
	RepeatedBankID bool
}

// Redundant reports whether the row is either kind of duplicate.
func (c ImportCandidate) Redundant() bool {
	return c.Duplicate || c.RepeatedBankID
}

// SearchText combines payee, description and the original description for matching.
func (c ImportCandidate) SearchText() string {
	return joinNonEmpty(c.Payee, c.Description, c.OriginalDescription)
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
