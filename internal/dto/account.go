package dto

import (
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	CustomerID   string             `json:"customerId" binding:"required"`
	AccountType  domain.AccountType `json:"accountType" binding:"required,oneof=SAVINGS CHECKING"`
	CurrencyCode string             `json:"currency" binding:"omitempty,len=3,alpha"`
	Balance      decimal.Decimal    `json:"balance" binding:"gte=0"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// The balance is deliberately absent: it only moves through transactions.
type UpdateAccountRequest struct {
	CustomerID   *string             `json:"customerId"`
	AccountType  *domain.AccountType `json:"accountType" binding:"omitempty,oneof=SAVINGS CHECKING"`
	CurrencyCode *string             `json:"currency" binding:"omitempty,len=3,alpha"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountId"`
	CustomerID    string             `json:"customerId"`
	AccountType   domain.AccountType `json:"accountType"`
	CurrencyCode  string             `json:"currency"`
	Balance       decimal.Decimal    `json:"balance"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		CustomerID:    acc.CustomerID,
		AccountType:   acc.AccountType,
		CurrencyCode:  acc.CurrencyCode,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
