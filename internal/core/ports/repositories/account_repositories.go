package repositories

import (
	"context"
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a non-deleted account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByCustomer retrieves the non-deleted accounts owned by a customer.
	ListAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's descriptive fields. The balance is never written here.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deletes an account.
	DeactivateAccount(ctx context.Context, accountID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
