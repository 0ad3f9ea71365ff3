package mapping

import (
	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/models"
)

// ToDomainAuditEntry converts a transaction_logs row to a domain AuditEntry
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		LogID:         m.LogID,
		TransactionID: fromNullString(m.TransactionID),
		Status:        domain.TransactionStatus(m.Status),
		Message:       m.Message,
		LoggedAt:      m.LoggedAt,
	}
}

// ToModelAuditEntry converts a domain AuditEntry to a transaction_logs row
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		LogID:         d.LogID,
		TransactionID: toNullString(d.TransactionID),
		Status:        string(d.Status),
		Message:       d.Message,
		LoggedAt:      d.LoggedAt,
	}
}
