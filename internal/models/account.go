package models

import (
	"github.com/shopspring/decimal"
)

// AccountType is the product kind of an account.
type AccountType string

const (
	Savings  AccountType = "SAVINGS"
	Checking AccountType = "CHECKING"
)

// Account represents a row of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	CustomerID   string          `db:"customer_id"`
	AccountType  AccountType     `db:"account_type"`
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"`
	IsDeleted    bool            `db:"is_deleted"`
	AuditFields
}
