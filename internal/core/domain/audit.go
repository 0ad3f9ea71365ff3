package domain

import "time"

// TransactionStatus is the outcome recorded in the audit log.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusReversed  TransactionStatus = "REVERSED"
)

// AuditEntry is an append-only forensic record. It is never authoritative for balances.
type AuditEntry struct {
	LogID         int64             `json:"logId"`
	TransactionID *string           `json:"transactionId"` // nil when the failure preceded row creation
	Status        TransactionStatus `json:"status"`
	Message       string            `json:"message"`
	LoggedAt      time.Time         `json:"loggedAt"`
}
