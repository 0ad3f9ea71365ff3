package mapping

import (
	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/sagabat/transaction-manage/internal/models"
)

func ToModelLedgerLeg(d domain.LedgerLeg) models.LedgerLeg {
	return models.LedgerLeg{
		TransactionID:         d.TransactionID,
		Direction:             string(d.Direction),
		AccountID:             d.AccountID,
		CounterpartyAccountID: toNullString(d.CounterpartyAccountID),
		Amount:                d.Amount,
		TransactionType:       string(d.TransactionType),
		IsDeleted:             d.IsDeleted,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainLedgerLeg(m models.LedgerLeg) domain.LedgerLeg {
	return domain.LedgerLeg{
		TransactionID:         m.TransactionID,
		Direction:             domain.LegDirection(m.Direction),
		AccountID:             m.AccountID,
		CounterpartyAccountID: fromNullString(m.CounterpartyAccountID),
		Amount:                m.Amount,
		TransactionType:       domain.TransactionType(m.TransactionType),
		IsDeleted:             m.IsDeleted,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

