package services_test

import (
	"context"
	"testing"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/core/services"
	"github.com/sagabat/transaction-manage/internal/dto"
	"github.com/sagabat/transaction-manage/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	accounts  portssvc.AccountSvcFacade
	customers portssvc.CustomerSvcFacade
	customer  *domain.Customer
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.accounts = services.NewAccountService(s.store, s.store)
	s.customers = services.NewCustomerService(s.store)

	customer, err := s.customers.CreateCustomer(s.ctx, dto.CustomerRequest{
		Name: "Zhang San", Email: "zhang@example.com", PhoneNumber: "13900000001",
	})
	s.Require().NoError(err)
	s.customer = customer
}

func (s *AccountServiceTestSuite) TestCreateAccount_DefaultsCurrency() {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID:  s.customer.CustomerID,
		AccountType: domain.Savings,
		Balance:     decimal.NewFromInt(50),
	})
	s.Require().NoError(err)
	s.NotEmpty(acc.AccountID)
	s.Equal(domain.DefaultCurrency, acc.CurrencyCode)
	s.True(decimal.NewFromInt(50).Equal(acc.Balance))

	stored, err := s.accounts.GetAccountByID(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.Equal(acc.AccountID, stored.AccountID)
}

func (s *AccountServiceTestSuite) TestCreateAccount_NormalizesCurrency() {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID:   s.customer.CustomerID,
		AccountType:  domain.Checking,
		CurrencyCode: "usd",
	})
	s.Require().NoError(err)
	s.Equal("USD", acc.CurrencyCode)
}

func (s *AccountServiceTestSuite) TestCreateAccount_Rejects() {
	_, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: "cust_missing", AccountType: domain.Savings,
	})
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: "BROKERAGE",
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: domain.Savings, Balance: decimal.NewFromInt(-1),
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: domain.Savings, Balance: decimal.RequireFromString("10.12345"),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestListAccountsByCustomer() {
	for i := 0; i < 2; i++ {
		_, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
			CustomerID: s.customer.CustomerID, AccountType: domain.Savings,
		})
		s.Require().NoError(err)
	}

	accounts, err := s.accounts.ListAccountsByCustomer(s.ctx, s.customer.CustomerID)
	s.Require().NoError(err)
	s.Len(accounts, 2)

	_, err = s.accounts.ListAccountsByCustomer(s.ctx, "cust_missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_NeverTouchesBalance() {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: domain.Savings, Balance: decimal.NewFromInt(10),
	})
	s.Require().NoError(err)

	checking := domain.Checking
	eur := "eur"
	updated, err := s.accounts.UpdateAccount(s.ctx, acc.AccountID, dto.UpdateAccountRequest{
		AccountType: &checking, CurrencyCode: &eur,
	})
	s.Require().NoError(err)
	s.Equal(domain.Checking, updated.AccountType)
	s.Equal("EUR", updated.CurrencyCode)

	stored, err := s.accounts.GetAccountByID(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(stored.Balance))
	s.Equal("EUR", stored.CurrencyCode)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_UnknownCustomer() {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: domain.Savings,
	})
	s.Require().NoError(err)

	missing := "cust_missing"
	_, err = s.accounts.UpdateAccount(s.ctx, acc.AccountID, dto.UpdateAccountRequest{CustomerID: &missing})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount() {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		CustomerID: s.customer.CustomerID, AccountType: domain.Savings,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.accounts.DeactivateAccount(s.ctx, acc.AccountID))
	_, err = s.accounts.GetAccountByID(s.ctx, acc.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ErrorIs(s.accounts.DeactivateAccount(s.ctx, acc.AccountID), apperrors.ErrNotFound)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
