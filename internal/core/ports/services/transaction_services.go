package services

import (
	"context"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/dto"
)

// TransactionWriterSvc defines the balance-changing operations.
type TransactionWriterSvc interface {
	// CreateTransaction applies a deposit, withdrawal or transfer and records its legs.
	CreateTransaction(ctx context.Context, req dto.TransactionRequest) (*domain.Transaction, error)

	// ModifyTransaction reverses an existing transaction and re-applies it with the requested changes.
	ModifyTransaction(ctx context.Context, transactionID string, req dto.TransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction reverses an existing transaction and soft-deletes its legs.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionWriterSvc
}

// QuerySvc lists ledger legs through the listing caches.
type QuerySvc interface {
	ListOutgoing(ctx context.Context, accountID string) ([]domain.LedgerLeg, error)
	ListIncoming(ctx context.Context, accountID string) ([]domain.LedgerLeg, error)
	ListAll(ctx context.Context, accountID string) ([]domain.LedgerLeg, error)
	ListTransactions(ctx context.Context, accountID string, page, size int) ([]domain.LedgerLeg, error)

	// InvalidateAll drops every cached listing.
	InvalidateAll(ctx context.Context)
}

// AuditSvc records operation outcomes independently of their unit of work.
type AuditSvc interface {
	Record(ctx context.Context, transactionID *string, status domain.TransactionStatus, message string)
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.AuditEntry, error)
}
