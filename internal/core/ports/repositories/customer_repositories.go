package repositories

import (
	"context"
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
)

// CustomerReader defines read operations for customer data.
// Every finder ignores soft-deleted customers.
type CustomerReader interface {
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error)
}

// CustomerWriter defines write operations for customer data
type CustomerWriter interface {
	SaveCustomer(ctx context.Context, customer domain.Customer) error
	UpdateCustomer(ctx context.Context, customer domain.Customer) error
	DeactivateCustomer(ctx context.Context, customerID string, now time.Time) error
}

// CustomerRepositoryFacade combines all customer-related repository interfaces
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}
