package dto

import (
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionRequest is the body of create and modify calls.
// Token must be a fresh value obtained from the token endpoint.
type TransactionRequest struct {
	AccountID       string                 `json:"accountId" binding:"required"`
	CustomerID      string                 `json:"customerId"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Amount          decimal.Decimal        `json:"amount" binding:"required,gt=0"`
	TargetAccountID string                 `json:"targetAccountId"`
	Token           string                 `json:"token" binding:"required"`
}

// TokenResponse carries a freshly issued idempotency token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LedgerLegResponse defines the data returned for one ledger leg.
type LedgerLegResponse struct {
	TransactionID   string          `json:"transactionId"`
	Direction       string          `json:"direction"`
	AccountID       string          `json:"accountId"`
	ToAccountID     *string         `json:"toAccountId,omitempty"`
	FromAccountID   *string         `json:"fromAccountId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// TransactionResponse defines the data returned after a create or modify.
type TransactionResponse struct {
	TransactionID string             `json:"transactionId"`
	Outgoing      LedgerLegResponse  `json:"outgoing"`
	Incoming      *LedgerLegResponse `json:"incoming,omitempty"`
}

// ListTransactionsParams defines query parameters for the paginated listing.
type ListTransactionsParams struct {
	AccountID string `form:"accountId" binding:"required"`
	Page      int    `form:"page,default=0" binding:"min=0"`
	Size      int    `form:"size,default=20" binding:"min=1,max=100"`
}

// AccountQueryParams identifies the account of an unpaginated listing.
type AccountQueryParams struct {
	AccountID string `form:"accountId" binding:"required"`
}

// ListLegsResponse wraps a list of ledger legs.
type ListLegsResponse struct {
	Transactions []LedgerLegResponse `json:"transactions"`
	Page         *int                `json:"page,omitempty"`
	Size         *int                `json:"size,omitempty"`
}

// AuditEntryResponse defines the data returned for one audit record.
type AuditEntryResponse struct {
	LogID         int64     `json:"logId"`
	TransactionID *string   `json:"transactionId"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	LoggedAt      time.Time `json:"loggedAt"`
}

// ToLedgerLegResponse converts a domain.LedgerLeg to its DTO.
func ToLedgerLegResponse(leg *domain.LedgerLeg) LedgerLegResponse {
	resp := LedgerLegResponse{
		TransactionID:   leg.TransactionID,
		Direction:       string(leg.Direction),
		AccountID:       leg.AccountID,
		Amount:          leg.Amount,
		TransactionType: string(leg.TransactionType),
		CreatedAt:       leg.CreatedAt,
		LastUpdatedAt:   leg.LastUpdatedAt,
	}
	switch leg.Direction {
	case domain.Outgoing:
		resp.ToAccountID = leg.CounterpartyAccountID
	case domain.Incoming:
		resp.FromAccountID = leg.CounterpartyAccountID
	}
	return resp
}

// ToLedgerLegResponses converts a slice of legs.
func ToLedgerLegResponses(legs []domain.LedgerLeg) []LedgerLegResponse {
	responses := make([]LedgerLegResponse, len(legs))
	for i := range legs {
		responses[i] = ToLedgerLegResponse(&legs[i])
	}
	return responses
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: txn.ID(),
		Outgoing:      ToLedgerLegResponse(&txn.Outgoing),
	}
	if txn.Incoming != nil {
		in := ToLedgerLegResponse(txn.Incoming)
		resp.Incoming = &in
	}
	return resp
}

// ToAuditEntryResponses converts audit entries to DTOs.
func ToAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	responses := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = AuditEntryResponse{
			LogID:         e.LogID,
			TransactionID: e.TransactionID,
			Status:        string(e.Status),
			Message:       e.Message,
			LoggedAt:      e.LoggedAt,
		}
	}
	return responses
}
