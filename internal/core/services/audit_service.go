package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
)

type auditService struct {
	BaseService
	repo portsrepo.AuditRepository
	now  func() time.Time
}

// NewAuditService creates the audit logger.
func NewAuditService(repo portsrepo.AuditRepository) portssvc.AuditSvc {
	return &auditService{repo: repo, now: time.Now}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// Record appends an entry outside of any unit of work. It detaches from the
// caller's cancellation so an aborted request still leaves its trail. Write
// failures are logged, never returned.
func (s *auditService) Record(ctx context.Context, transactionID *string, status domain.TransactionStatus, message string) {
	ctx = context.WithoutCancel(ctx)
	entry := domain.AuditEntry{
		TransactionID: transactionID,
		Status:        status,
		Message:       message,
		LoggedAt:      s.now().UTC(),
	}
	if _, err := s.repo.AppendAuditEntry(ctx, entry); err != nil {
		args := []any{slog.String("status", string(status))}
		if transactionID != nil {
			args = append(args, slog.String("transaction_id", *transactionID))
		}
		s.LogError(ctx, err, "Failed to append audit entry", args...)
	}
}

func (s *auditService) ListByTransaction(ctx context.Context, transactionID string) ([]domain.AuditEntry, error) {
	entries, err := s.repo.ListAuditEntries(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit entries", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return entries, nil
}
