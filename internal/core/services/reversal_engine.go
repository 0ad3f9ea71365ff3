package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
)

// auditedError marks an error whose FAILED entry has already been written.
type auditedError struct {
	err error
}

func (e *auditedError) Error() string { return e.err.Error() }
func (e *auditedError) Unwrap() error { return e.err }

// reversalEngine undoes the balance effect of a committed outgoing leg.
type reversalEngine struct {
	BaseService
	audit portssvc.AuditSvc
}

func newReversalEngine(audit portssvc.AuditSvc) *reversalEngine {
	return &reversalEngine{audit: audit}
}

// reverse applies the inverse of leg to the sheet and audits the outcome.
// On failure the sheet may be partially changed; callers must abort the unit of work.
func (r *reversalEngine) reverse(ctx context.Context, sheet *balanceSheet, leg domain.LedgerLeg) error {
	id := leg.TransactionID
	err := r.inverse(sheet, leg)
	if err != nil {
		r.LogWarn(ctx, err, "Reversal failed", slog.String("transaction_id", id))
		r.audit.Record(ctx, &id, domain.StatusFailed, "reversal failed: "+err.Error())
		return &auditedError{err: err}
	}
	r.audit.Record(ctx, &id, domain.StatusReversed,
		fmt.Sprintf("reversed %s of %s", leg.TransactionType, leg.Amount.StringFixed(domain.AmountScale)))
	r.LogInfo(ctx, "Transaction reversed", slog.String("transaction_id", id))
	return nil
}

func (r *reversalEngine) inverse(sheet *balanceSheet, leg domain.LedgerLeg) error {
	switch leg.TransactionType {
	case domain.Deposit:
		return sheet.debit(leg.AccountID, leg.Amount)
	case domain.Withdrawal:
		return sheet.credit(leg.AccountID, leg.Amount)
	case domain.Transfer:
		source, target := leg.AccountID, leg.TargetAccountID()
		// Both accounts must still exist before either balance moves.
		if _, err := sheet.account(source); err != nil {
			return err
		}
		if err := sheet.debit(target, leg.Amount); err != nil {
			return err
		}
		return sheet.credit(source, leg.Amount)
	}
	return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrInvalidTransaction, leg.TransactionType)
}
