package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/core/services"
	"github.com/sagabat/transaction-manage/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) (*domain.AuditEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) ListAuditEntries(ctx context.Context, transactionID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func TestAuditService_RecordSurvivesCancelledContext(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAuditService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	id := "txn_1"
	svc.Record(ctx, &id, domain.StatusFailed, "client went away")
	svc.Record(context.Background(), nil, domain.StatusFailed, "no id yet")

	entries, err := svc.ListByTransaction(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusFailed, entries[0].Status)
	assert.Equal(t, "client went away", entries[0].Message)
	assert.False(t, entries[0].LoggedAt.IsZero())
	assert.Len(t, store.AuditEntries(), 2)
}

func TestAuditService_RecordSwallowsWriteErrors(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := services.NewAuditService(repo)
	repo.On("AppendAuditEntry", mock.Anything, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Status == domain.StatusCompleted && *e.TransactionID == "txn_1"
	})).Return(nil, errors.New("disk full")).Once()

	id := "txn_1"
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), &id, domain.StatusCompleted, "done")
	})
	repo.AssertExpectations(t)
}
