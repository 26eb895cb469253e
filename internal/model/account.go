package model

import "time"

// AccountType classifies an account.
type AccountType string

// Account type constants.
const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard,
		AccountTypeCash, AccountTypeInvestment, AccountTypeLoan, AccountTypeOther:
		return true
	}
	return false
}

// Account is a financial account transactions are posted to.
type Account struct {
	CreatedAt      time.Time
	Name           string
	Type           AccountType
	Currency       string
	Notes          string
	InitialBalance float64
	CurrentBalance float64
	ID             int
	IsActive       bool
}
