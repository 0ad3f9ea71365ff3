package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/dto"
)

type customerService struct {
	BaseService
	repo portsrepo.CustomerRepositoryFacade
	now  func() time.Time
}

// NewCustomerService creates a new customer service.
func NewCustomerService(repo portsrepo.CustomerRepositoryFacade) portssvc.CustomerSvcFacade {
	return &customerService{repo: repo, now: time.Now}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

// ensureUnique rejects an email or phone number already held by another customer.
func (s *customerService) ensureUnique(ctx context.Context, customerID string, req dto.CustomerRequest) error {
	lookups := []struct {
		field string
		find  func(context.Context, string) (*domain.Customer, error)
		value string
	}{
		{"email", s.repo.FindCustomerByEmail, req.Email},
		{"phone number", s.repo.FindCustomerByPhone, req.PhoneNumber},
	}
	for _, l := range lookups {
		existing, err := l.find(ctx, l.value)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			continue
		case err != nil:
			return err
		case existing.CustomerID != customerID:
			return fmt.Errorf("%w: %s already registered", apperrors.ErrDuplicate, l.field)
		}
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*domain.Customer, error) {
	if err := s.ensureUnique(ctx, "", req); err != nil {
		s.LogWarn(ctx, err, "Customer rejected")
		return nil, err
	}

	now := s.now().UTC()
	customer := domain.Customer{
		CustomerID:  uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.repo.SaveCustomer(ctx, customer); err != nil {
		s.LogError(ctx, err, "Failed to save customer")
		return nil, err
	}
	s.LogInfo(ctx, "Customer created", slog.String("customer_id", customer.CustomerID))
	return &customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.repo.FindCustomerByID(ctx, customerID)
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID string, req dto.CustomerRequest) (*domain.Customer, error) {
	customer, err := s.repo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, customerID, req); err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.PhoneNumber = req.PhoneNumber
	customer.Address = req.Address
	customer.LastUpdatedAt = s.now().UTC()

	if err := s.repo.UpdateCustomer(ctx, *customer); err != nil {
		s.LogError(ctx, err, "Failed to update customer", slog.String("customer_id", customerID))
		return nil, err
	}
	s.LogInfo(ctx, "Customer updated", slog.String("customer_id", customerID))
	return customer, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID string) error {
	if err := s.repo.DeactivateCustomer(ctx, customerID, s.now().UTC()); err != nil {
		return err
	}
	s.LogInfo(ctx, "Customer deactivated", slog.String("customer_id", customerID))
	return nil
}
