package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/services"
	"github.com/sagabat/transaction-manage/internal/dto"
	"github.com/sagabat/transaction-manage/internal/handlers"
	"github.com/sagabat/transaction-manage/internal/middleware"
	"github.com/sagabat/transaction-manage/internal/platform/config"
	"github.com/sagabat/transaction-manage/internal/repositories/database/memory"
	"github.com/sagabat/transaction-manage/internal/repositories/tokenstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repos := memory.NewRepositoryProvider(memory.NewStore(), tokenstore.NewMemoryStore(time.Minute))
	container := services.NewServiceContainer(cfg, repos, services.NewLRULegCaches(64, time.Hour))

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	handlers.RegisterRoutes(r, cfg, container, nil)
	return r
}

func (s *HandlerTestSuite) SetupTest() {
	s.router = newRouter(&config.Config{TokenTTL: 5 * time.Minute, CORSAllowedOrigins: []string{"*"}})
}

func (s *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *HandlerTestSuite) assertError(w *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, w.Code, w.Body.String())
	var body errorBody
	s.decode(w, &body)
	s.Equal(code, body.Code)
	s.NotEmpty(body.Error)
}

func (s *HandlerTestSuite) token() string {
	w := s.do(http.MethodGet, "/api/v1/transactions/token", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.TokenResponse
	s.decode(w, &resp)
	s.Equal("5m0s", resp.ExpiresIn)
	s.WithinDuration(time.Now().Add(5*time.Minute), resp.ExpiresAt, 5*time.Second)
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *HandlerTestSuite) createCustomer(email, phone string) string {
	w := s.do(http.MethodPost, "/api/v1/customers", map[string]string{
		"name": "Chen Jie", "email": email, "phoneNumber": phone,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CustomerResponse
	s.decode(w, &resp)
	return resp.CustomerID
}

func (s *HandlerTestSuite) createAccount(customerID, currency, balance string) string {
	w := s.do(http.MethodPost, "/api/v1/accounts", map[string]string{
		"customerId": customerID, "accountType": "SAVINGS", "currency": currency, "balance": balance,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	s.decode(w, &resp)
	return resp.AccountID
}

func (s *HandlerTestSuite) assertBalance(accountID, want string) {
	w := s.do(http.MethodGet, "/api/v1/accounts/"+accountID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	s.decode(w, &resp)
	s.True(decimal.RequireFromString(want).Equal(resp.Balance), "account %s: want %s, got %s", accountID, want, resp.Balance)
}

func transfer(from, to, amount, token string) map[string]string {
	return map[string]string{
		"accountId": from, "transactionType": "TRANSFER", "amount": amount, "targetAccountId": to, "token": token,
	}
}

func (s *HandlerTestSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())

	w = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "txn_http_requests_total")
}

func (s *HandlerTestSuite) TestTransactionLifecycle() {
	customerID := s.createCustomer("chen@example.com", "13600000000")
	a := s.createAccount(customerID, "CNY", "1000.00")
	b := s.createAccount(customerID, "CNY", "500.00")

	token := s.token()
	w := s.do(http.MethodPost, "/api/v1/transactions", transfer(a, b, "200.00", token))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.TransactionResponse
	s.decode(w, &created)
	s.Require().NotNil(created.Incoming)
	s.Equal(b, *created.Outgoing.ToAccountID)
	s.Equal(a, *created.Incoming.FromAccountID)
	s.assertBalance(a, "800")
	s.assertBalance(b, "700")

	// Replaying the request with a spent token changes nothing.
	w = s.do(http.MethodPost, "/api/v1/transactions", transfer(a, b, "200.00", token))
	s.assertError(w, http.StatusBadRequest, apperrors.KindInvalidToken)
	s.assertBalance(a, "800")

	w = s.do(http.MethodPut, "/api/v1/transactions/"+created.TransactionID, transfer(a, b, "300.00", s.token()))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.assertBalance(a, "700")
	s.assertBalance(b, "800")

	w = s.do(http.MethodGet, "/api/v1/transactions/incoming?accountId="+b, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var incoming dto.ListLegsResponse
	s.decode(w, &incoming)
	s.Require().Len(incoming.Transactions, 1)
	s.True(decimal.NewFromInt(300).Equal(incoming.Transactions[0].Amount))
	s.Equal(a, *incoming.Transactions[0].FromAccountID)

	w = s.do(http.MethodGet, "/api/v1/transactions?accountId="+a+"&page=0&size=10", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var paged dto.ListLegsResponse
	s.decode(w, &paged)
	s.Len(paged.Transactions, 1)
	s.Equal(10, *paged.Size)

	w = s.do(http.MethodDelete, "/api/v1/transactions/"+created.TransactionID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.assertBalance(a, "1000")
	s.assertBalance(b, "500")

	w = s.do(http.MethodDelete, "/api/v1/transactions/"+created.TransactionID, nil)
	s.assertError(w, http.StatusNotFound, apperrors.KindNotFound)

	w = s.do(http.MethodGet, "/api/v1/transactions/"+created.TransactionID+"/audit", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var audit struct {
		Entries []dto.AuditEntryResponse `json:"entries"`
	}
	s.decode(w, &audit)
	statuses := make([]string, len(audit.Entries))
	for i, e := range audit.Entries {
		statuses[i] = e.Status
	}
	s.Equal([]string{"COMPLETED", "REVERSED", "COMPLETED", "REVERSED", "FAILED"}, statuses)
}

func (s *HandlerTestSuite) TestTransactionErrors() {
	customerID := s.createCustomer("chen@example.com", "13600000000")
	a := s.createAccount(customerID, "CNY", "10.00")
	usd := s.createAccount(customerID, "USD", "10.00")

	w := s.do(http.MethodPost, "/api/v1/transactions", map[string]string{
		"accountId": a, "transactionType": "WITHDRAWAL", "amount": "10.01", "token": s.token(),
	})
	s.assertError(w, http.StatusUnprocessableEntity, apperrors.KindInsufficientBalance)

	w = s.do(http.MethodPost, "/api/v1/transactions", transfer(a, usd, "1.00", s.token()))
	s.assertError(w, http.StatusUnprocessableEntity, apperrors.KindInvalidTransaction)

	w = s.do(http.MethodPost, "/api/v1/transactions", transfer(a, "acc_missing", "1.00", s.token()))
	s.assertError(w, http.StatusNotFound, apperrors.KindNotFound)

	w = s.do(http.MethodPost, "/api/v1/transactions", map[string]string{
		"accountId": a, "transactionType": "DEPOSIT", "amount": "1.00", "token": "not-issued",
	})
	s.assertError(w, http.StatusBadRequest, apperrors.KindInvalidToken)

	s.assertBalance(a, "10")
	s.assertBalance(usd, "10")
}

func (s *HandlerTestSuite) TestBindingErrors() {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"missing token", http.MethodPost, "/api/v1/transactions", map[string]string{
			"accountId": "acc_a", "transactionType": "DEPOSIT", "amount": "1.00",
		}},
		{"zero amount", http.MethodPost, "/api/v1/transactions", map[string]string{
			"accountId": "acc_a", "transactionType": "DEPOSIT", "amount": "0", "token": "t",
		}},
		{"unknown type", http.MethodPost, "/api/v1/transactions", map[string]string{
			"accountId": "acc_a", "transactionType": "REFUND", "amount": "1", "token": "t",
		}},
		{"listing without account", http.MethodGet, "/api/v1/transactions/all", nil},
		{"page too large", http.MethodGet, "/api/v1/transactions?accountId=acc_a&size=101", nil},
		{"bad phone", http.MethodPost, "/api/v1/customers", map[string]string{
			"name": "x", "email": "x@example.com", "phoneNumber": "123",
		}},
		{"bad account type", http.MethodPost, "/api/v1/accounts", map[string]string{
			"customerId": "c", "accountType": "BROKERAGE",
		}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(tt.method, tt.path, tt.body)
			s.assertError(w, http.StatusBadRequest, apperrors.KindValidation)
		})
	}
}

func (s *HandlerTestSuite) TestCustomerAndAccountCRUD() {
	customerID := s.createCustomer("chen@example.com", "13600000000")

	w := s.do(http.MethodPost, "/api/v1/customers", map[string]string{
		"name": "Other", "email": "chen@example.com", "phoneNumber": "13600000009",
	})
	s.assertError(w, http.StatusConflict, apperrors.KindDuplicate)

	w = s.do(http.MethodPut, "/api/v1/customers/"+customerID, map[string]string{
		"name": "Chen Jie", "email": "chen@example.com", "phoneNumber": "13600000000", "address": "Suzhou",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var customer dto.CustomerResponse
	s.decode(w, &customer)
	s.Equal("Suzhou", customer.Address)

	accountID := s.createAccount(customerID, "", "0")
	w = s.do(http.MethodGet, "/api/v1/accounts/customer/"+customerID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var accounts []dto.AccountResponse
	s.decode(w, &accounts)
	s.Require().Len(accounts, 1)
	s.Equal("CNY", accounts[0].CurrencyCode)

	w = s.do(http.MethodPut, "/api/v1/accounts/"+accountID, map[string]string{"accountType": "CHECKING"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/accounts/"+accountID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/v1/accounts/"+accountID, nil)
	s.assertError(w, http.StatusNotFound, apperrors.KindNotFound)

	w = s.do(http.MethodDelete, "/api/v1/customers/"+customerID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/v1/customers/"+customerID, nil)
	s.assertError(w, http.StatusNotFound, apperrors.KindNotFound)
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestRegisterRoutes_RequiresBearerWhenSecretSet(t *testing.T) {
	r := newRouter(&config.Config{TokenTTL: time.Minute, JWTSecret: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health should stay public, got %d", w.Code)
	}
}
