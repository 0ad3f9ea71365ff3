package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType describes the product an account belongs to.
type AccountType string

const (
	Savings  AccountType = "SAVINGS"
	Checking AccountType = "CHECKING"
)

// DefaultCurrency is used when an account is opened without an explicit currency.
const DefaultCurrency = "CNY"

// Account represents a customer's account within the core domain.
// Balance is only ever changed by the transaction processor and the reversal engine.
type Account struct {
	AccountID    string          `json:"accountId"`
	CustomerID   string          `json:"customerId"`
	AccountType  AccountType     `json:"accountType"`
	CurrencyCode string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance"`
	IsDeleted    bool            `json:"deleted"` // Soft delete flag
	AuditFields
}

// IsValidAccountType reports whether t is a known account type.
func IsValidAccountType(t AccountType) bool {
	return t == Savings || t == Checking
}
