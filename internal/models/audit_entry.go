package models

import (
	"database/sql"
	"time"
)

// AuditEntry represents a row of the transaction_logs table.
type AuditEntry struct {
	LogID         int64          `db:"log_id"`
	TransactionID sql.NullString `db:"transaction_id"`
	Status        string         `db:"status"`
	Message       string         `db:"message"`
	LoggedAt      time.Time      `db:"logged_at"`
}
