package repositories

import (
	"context"

	"github.com/sagabat/transaction-manage/internal/core/domain"
)

// AuditRepository appends forensic records. Writes never join a unit of work.
type AuditRepository interface {
	// AppendAuditEntry stores an entry and returns it with LogID populated.
	AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) (*domain.AuditEntry, error)

	// ListAuditEntries returns the entries recorded for a transaction, oldest first.
	ListAuditEntries(ctx context.Context, transactionID string) ([]domain.AuditEntry, error)
}
