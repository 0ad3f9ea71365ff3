package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionType is the economic kind of a transaction.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Transfer   TransactionType = "TRANSFER"
)

// IsValidTransactionType reports whether t is a known transaction type.
func IsValidTransactionType(t TransactionType) bool {
	switch t {
	case Deposit, Withdrawal, Transfer:
		return true
	}
	return false
}

// AmountScale is the number of fractional digits stored for amounts and balances.
const AmountScale = 4

// MaxAmount is the exclusive upper bound of a stored amount or balance,
// matching the NUMERIC(19, 4) columns.
var MaxAmount = decimal.New(1, 19-AmountScale)

// FitsStorage reports whether d can be stored without rounding or overflow.
func FitsStorage(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale)) && d.Abs().LessThan(MaxAmount)
}

// LegDirection tags which side of a transaction a ledger leg records.
type LegDirection string

const (
	Outgoing LegDirection = "OUTGOING"
	Incoming LegDirection = "INCOMING"
)

// LedgerLeg is one row of the double-entry ledger. Every transaction has an
// outgoing leg; a TRANSFER additionally has an incoming leg with the same
// TransactionID.
//
// CounterpartyAccountID is the target account on an outgoing TRANSFER leg and
// the source account on an incoming leg. It is nil on DEPOSIT and WITHDRAWAL.
type LedgerLeg struct {
	TransactionID         string          `json:"transactionId"`
	Direction             LegDirection    `json:"direction"`
	AccountID             string          `json:"accountId"`
	CounterpartyAccountID *string         `json:"counterpartyAccountId,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	TransactionType       TransactionType `json:"transactionType"`
	IsDeleted             bool            `json:"deleted"`
	AuditFields
}

// TargetAccountID returns the transfer target of an outgoing leg.
func (l LedgerLeg) TargetAccountID() string {
	if l.Direction != Outgoing || l.CounterpartyAccountID == nil {
		return ""
	}
	return *l.CounterpartyAccountID
}

// SourceAccountID returns the account that funded an incoming leg.
func (l LedgerLeg) SourceAccountID() string {
	if l.Direction != Incoming || l.CounterpartyAccountID == nil {
		return ""
	}
	return *l.CounterpartyAccountID
}

// AccountIDs lists every account whose balance this leg's transaction touches.
func (l LedgerLeg) AccountIDs() []string {
	ids := []string{l.AccountID}
	if l.CounterpartyAccountID != nil && *l.CounterpartyAccountID != "" {
		ids = append(ids, *l.CounterpartyAccountID)
	}
	return ids
}

// IncomingLegFor builds the credit-side leg paired with an outgoing TRANSFER leg.
func IncomingLegFor(out LedgerLeg) LedgerLeg {
	source := out.AccountID
	return LedgerLeg{
		TransactionID:         out.TransactionID,
		Direction:             Incoming,
		AccountID:             out.TargetAccountID(),
		CounterpartyAccountID: &source,
		Amount:                out.Amount,
		TransactionType:       Transfer,
		IsDeleted:             out.IsDeleted,
		AuditFields:           out.AuditFields,
	}
}

// Transaction groups the legs that share one transaction identifier.
type Transaction struct {
	Outgoing LedgerLeg  `json:"outgoing"`
	Incoming *LedgerLeg `json:"incoming,omitempty"`
}

// ID returns the shared transaction identifier.
func (t Transaction) ID() string {
	return t.Outgoing.TransactionID
}

var (
	errLegAmount      = errors.New("leg amount must be positive")
	errLegPrecision   = errors.New("leg amount exceeds the stored precision")
	errLegPairing     = errors.New("transfer legs are not paired")
	errUnexpectedLeg  = errors.New("non-transfer transaction must not carry a target or incoming leg")
	errWrongDirection = errors.New("leg direction mismatch")
)

// Validate checks the double-entry invariants of the transaction.
func (t Transaction) Validate() error {
	out := t.Outgoing
	if out.Direction != Outgoing {
		return errWrongDirection
	}
	if !IsValidTransactionType(out.TransactionType) {
		return fmt.Errorf("unknown transaction type %q", out.TransactionType)
	}
	if !out.Amount.IsPositive() {
		return errLegAmount
	}
	if !FitsStorage(out.Amount) {
		return errLegPrecision
	}

	if out.TransactionType != Transfer {
		if out.TargetAccountID() != "" || t.Incoming != nil {
			return errUnexpectedLeg
		}
		return nil
	}

	in := t.Incoming
	if in == nil || out.TargetAccountID() == "" {
		return errLegPairing
	}
	if in.Direction != Incoming {
		return errWrongDirection
	}
	if in.TransactionID != out.TransactionID ||
		!in.Amount.Equal(out.Amount) ||
		in.AccountID != out.TargetAccountID() ||
		in.SourceAccountID() != out.AccountID {
		return errLegPairing
	}
	return nil
}
