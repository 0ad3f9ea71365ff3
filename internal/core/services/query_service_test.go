package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedgerReader struct {
	mock.Mock
}

func (m *MockLedgerReader) FindLegByID(ctx context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	args := m.Called(ctx, transactionID, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerLeg), args.Error(1)
}

func (m *MockLedgerReader) ListLegsByAccount(ctx context.Context, accountID string, direction *domain.LegDirection) ([]domain.LedgerLeg, error) {
	args := m.Called(ctx, accountID, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLeg), args.Error(1)
}

func legs(n int) []domain.LedgerLeg {
	out := make([]domain.LedgerLeg, n)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = domain.LedgerLeg{
			TransactionID:   fmt.Sprintf("txn_%02d", i),
			Direction:       domain.Outgoing,
			AccountID:       "acc_a",
			Amount:          decimal.NewFromInt(int64(i + 1)),
			TransactionType: domain.Deposit,
			AuditFields:     domain.AuditFields{CreatedAt: base.Add(-time.Duration(i) * time.Hour)},
		}
	}
	return out
}

func TestQueryService_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewQueryService(ledger, services.NewLRULegCaches(16, time.Hour))

	ledger.On("ListLegsByAccount", ctx, "acc_a", (*domain.LegDirection)(nil)).Return(legs(2), nil).Twice()

	first, err := svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)
	second, err := svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	svc.InvalidateAll(ctx)
	_, err = svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestQueryService_DirectionsUseSeparateCaches(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewQueryService(ledger, services.NewLRULegCaches(16, time.Hour))

	ledger.On("ListLegsByAccount", ctx, "acc_a", mock.MatchedBy(func(d *domain.LegDirection) bool {
		return d != nil && *d == domain.Outgoing
	})).Return(legs(1), nil).Once()
	ledger.On("ListLegsByAccount", ctx, "acc_a", mock.MatchedBy(func(d *domain.LegDirection) bool {
		return d != nil && *d == domain.Incoming
	})).Return([]domain.LedgerLeg{}, nil).Once()

	out, err := svc.ListOutgoing(ctx, "acc_a")
	require.NoError(t, err)
	assert.Len(t, out, 1)
	in, err := svc.ListIncoming(ctx, "acc_a")
	require.NoError(t, err)
	assert.Empty(t, in)

	_, _ = svc.ListOutgoing(ctx, "acc_a")
	_, _ = svc.ListIncoming(ctx, "acc_a")
	ledger.AssertExpectations(t)
}

func TestQueryService_CallerCannotMutateCache(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewQueryService(ledger, services.NewLRULegCaches(16, time.Hour))
	ledger.On("ListLegsByAccount", ctx, "acc_a", (*domain.LegDirection)(nil)).Return(legs(1), nil).Once()

	first, err := svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)
	first[0].AccountID = "tampered"

	second, err := svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)
	assert.Equal(t, "acc_a", second[0].AccountID)
}

func TestQueryService_ListTransactionsPages(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewQueryService(ledger, services.NewLRULegCaches(16, time.Hour))
	ledger.On("ListLegsByAccount", ctx, "acc_a", (*domain.LegDirection)(nil)).Return(legs(5), nil)

	tests := []struct {
		page, size int
		wantIDs    []string
	}{
		{0, 2, []string{"txn_00", "txn_01"}},
		{1, 2, []string{"txn_02", "txn_03"}},
		{2, 2, []string{"txn_04"}},
		{3, 2, []string{}},
		{0, 100, []string{"txn_00", "txn_01", "txn_02", "txn_03", "txn_04"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d size %d", tt.page, tt.size), func(t *testing.T) {
			page, err := svc.ListTransactions(ctx, "acc_a", tt.page, tt.size)
			require.NoError(t, err)
			ids := make([]string, len(page))
			for i, leg := range page {
				ids[i] = leg.TransactionID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestQueryService_ListTransactionsRejectsBadPage(t *testing.T) {
	ctx := context.Background()
	svc := services.NewQueryService(new(MockLedgerReader), services.NewLRULegCaches(16, time.Hour))

	for _, tc := range []struct{ page, size int }{{-1, 10}, {0, 0}, {0, services.MaxPageSize + 1}} {
		_, err := svc.ListTransactions(ctx, "acc_a", tc.page, tc.size)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestQueryService_LoadErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerReader)
	svc := services.NewQueryService(ledger, services.NewLRULegCaches(16, time.Hour))
	boom := errors.New("db down")

	ledger.On("ListLegsByAccount", ctx, "acc_a", (*domain.LegDirection)(nil)).Return(nil, boom).Once()
	ledger.On("ListLegsByAccount", ctx, "acc_a", (*domain.LegDirection)(nil)).Return(legs(1), nil).Once()

	_, err := svc.ListAll(ctx, "acc_a")
	assert.ErrorIs(t, err, boom)
	got, err := svc.ListAll(ctx, "acc_a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	ledger.AssertExpectations(t)
}
