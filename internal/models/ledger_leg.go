package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// LedgerLeg represents a row of the ledger_legs table, keyed by (transaction_id, direction).
type LedgerLeg struct {
	TransactionID         string          `db:"transaction_id"`
	Direction             string          `db:"direction"`
	AccountID             string          `db:"account_id"`
	CounterpartyAccountID sql.NullString  `db:"counterparty_account_id"`
	Amount                decimal.Decimal `db:"amount"`
	TransactionType       string          `db:"transaction_type"`
	IsDeleted             bool            `db:"is_deleted"`
	AuditFields
}
