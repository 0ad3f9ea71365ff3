package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/dto"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	customerRepo portsrepo.CustomerReader
	now          func() time.Time
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, customerRepo portsrepo.CustomerReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		now:          time.Now,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) requireCustomer(ctx context.Context, customerID string) error {
	if _, err := s.customerRepo.FindCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
		}
		return err
	}
	return nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	if !domain.IsValidAccountType(req.AccountType) {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if req.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}
	if !domain.FitsStorage(req.Balance) {
		return nil, fmt.Errorf("%w: opening balance %s exceeds the stored precision", apperrors.ErrValidation, req.Balance)
	}
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		s.LogWarn(ctx, err, "Cannot open account for customer", slog.String("customer_id", req.CustomerID))
		return nil, err
	}

	currency := strings.ToUpper(req.CurrencyCode)
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	now := s.now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		CustomerID:   req.CustomerID,
		AccountType:  req.AccountType,
		CurrencyCode: currency,
		Balance:      req.Balance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("customer_id", account.CustomerID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccountsByCustomer(ctx, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("customer_id", customerID))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil && *req.CustomerID != account.CustomerID {
		if err := s.requireCustomer(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
		account.CustomerID = *req.CustomerID
	}
	if req.AccountType != nil {
		if !domain.IsValidAccountType(*req.AccountType) {
			return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, *req.AccountType)
		}
		account.AccountType = *req.AccountType
	}
	if req.CurrencyCode != nil {
		account.CurrencyCode = strings.ToUpper(*req.CurrencyCode)
	}
	account.LastUpdatedAt = s.now().UTC()

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string) error {
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, s.now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
