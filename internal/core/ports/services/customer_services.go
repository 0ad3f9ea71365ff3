package services

import (
	"context"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/dto"
)

// CustomerSvcFacade defines customer management operations.
type CustomerSvcFacade interface {
	CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, req dto.CustomerRequest) (*domain.Customer, error)
	DeactivateCustomer(ctx context.Context, customerID string) error
}
