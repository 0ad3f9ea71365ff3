package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/dto"
	"github.com/sagabat/transaction-manage/internal/platform/metrics"
)

const (
	opCreate = "create"
	opModify = "modify"
	opDelete = "delete"
)

// cacheInvalidator is the part of the query layer writers depend on.
type cacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

type transactionService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	tokens   portssvc.TokenSvc
	audit    portssvc.AuditSvc
	reversal *reversalEngine
	caches   cacheInvalidator
	now      func() time.Time
	newID    func() string
}

// TransactionOption configures the transaction service.
type TransactionOption func(*transactionService)

// WithTransactionClock overrides the time source used for leg timestamps.
func WithTransactionClock(now func() time.Time) TransactionOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// WithTransactionIDGenerator overrides how new transaction ids are minted.
func WithTransactionIDGenerator(newID func() string) TransactionOption {
	return func(s *transactionService) {
		s.newID = newID
	}
}

// NewTransactionService wires the transaction processor, the reversal engine
// and the audit logger around a unit of work.
func NewTransactionService(
	uow portsrepo.UnitOfWork,
	tokens portssvc.TokenSvc,
	audit portssvc.AuditSvc,
	caches cacheInvalidator,
	opts ...TransactionOption,
) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		uow:      uow,
		tokens:   tokens,
		audit:    audit,
		reversal: newReversalEngine(audit),
		caches:   caches,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateRequest checks the shape of a request before anything is locked.
func validateRequest(req dto.TransactionRequest) error {
	if req.AccountID == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrInvalidTransaction)
	}
	if !domain.IsValidTransactionType(req.TransactionType) {
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrInvalidTransaction, req.TransactionType)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidTransaction)
	}
	if !domain.FitsStorage(req.Amount) {
		return fmt.Errorf("%w: amount %s must have at most %d decimal places and be below %s",
			apperrors.ErrInvalidTransaction, req.Amount, domain.AmountScale, domain.MaxAmount)
	}
	if req.TransactionType == domain.Transfer {
		if req.TargetAccountID == "" {
			return fmt.Errorf("%w: transfer requires a target account", apperrors.ErrInvalidTransaction)
		}
		if req.TargetAccountID == req.AccountID {
			return fmt.Errorf("%w: cannot transfer to the source account", apperrors.ErrInvalidTransaction)
		}
	} else if req.TargetAccountID != "" {
		return fmt.Errorf("%w: %s must not carry a target account", apperrors.ErrInvalidTransaction, req.TransactionType)
	}
	return nil
}

func checkCustomer(ctx context.Context, tx portsrepo.TxRepositories, customerID string) error {
	if customerID == "" {
		return nil
	}
	exists, err := tx.CustomerExists(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
	}
	return nil
}

// applyRequest copies the requested fields onto a leg.
func applyRequest(leg domain.LedgerLeg, req dto.TransactionRequest) domain.LedgerLeg {
	leg.AccountID = req.AccountID
	leg.TransactionType = req.TransactionType
	leg.Amount = req.Amount
	leg.CounterpartyAccountID = nil
	if req.TransactionType == domain.Transfer {
		target := req.TargetAccountID
		leg.CounterpartyAccountID = &target
	}
	return leg
}

// checkLegs guards the double-entry shape of txn before it is written.
func checkLegs(txn domain.Transaction) error {
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidTransaction, err)
	}
	return nil
}

func findLeg(ctx context.Context, tx portsrepo.TxRepositories, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	leg, err := tx.FindLegForUpdate(ctx, transactionID, direction)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, err
	}
	return leg, nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.TransactionRequest) (*domain.Transaction, error) {
	s.LogInfo(ctx, "Creating transaction",
		slog.String("transaction_type", string(req.TransactionType)),
		slog.String("account_id", req.AccountID))

	if err := s.tokens.Consume(ctx, req.Token); err != nil {
		s.LogWarn(ctx, err, "Token rejected")
		s.observe(opCreate, req.TransactionType, err)
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, s.fail(ctx, opCreate, nil, req.TransactionType, err)
	}

	id := s.newID()
	now := s.now().UTC()
	out := applyRequest(domain.LedgerLeg{
		TransactionID: id,
		Direction:     domain.Outgoing,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}, req)
	txn := domain.Transaction{Outgoing: out}
	if out.TransactionType == domain.Transfer {
		in := domain.IncomingLegFor(out)
		txn.Incoming = &in
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := checkCustomer(ctx, tx, req.CustomerID); err != nil {
			return err
		}
		sheet, err := lockSheet(ctx, tx, out.AccountIDs())
		if err != nil {
			return err
		}
		if err := sheet.apply(out); err != nil {
			return err
		}
		if err := checkLegs(txn); err != nil {
			return err
		}
		if err := sheet.flush(ctx, tx); err != nil {
			return err
		}
		if err := tx.InsertLeg(ctx, txn.Outgoing); err != nil {
			return err
		}
		if txn.Incoming != nil {
			return tx.InsertLeg(ctx, *txn.Incoming)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, opCreate, &id, req.TransactionType, err)
	}

	s.succeed(ctx, opCreate, &txn, fmt.Sprintf("%s of %s completed", out.TransactionType, out.Amount.StringFixed(domain.AmountScale)))
	return &txn, nil
}

func (s *transactionService) ModifyTransaction(ctx context.Context, transactionID string, req dto.TransactionRequest) (*domain.Transaction, error) {
	s.LogInfo(ctx, "Modifying transaction", slog.String("transaction_id", transactionID))

	if err := s.tokens.Consume(ctx, req.Token); err != nil {
		s.LogWarn(ctx, err, "Token rejected", slog.String("transaction_id", transactionID))
		s.observe(opModify, req.TransactionType, err)
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, s.fail(ctx, opModify, &transactionID, req.TransactionType, err)
	}

	var txn domain.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		current, err := findLeg(ctx, tx, transactionID, domain.Outgoing)
		if err != nil {
			return err
		}
		if err := checkCustomer(ctx, tx, req.CustomerID); err != nil {
			return err
		}

		updated := applyRequest(*current, req)
		updated.LastUpdatedAt = s.now().UTC()

		ids := append(current.AccountIDs(), updated.AccountIDs()...)
		sheet, err := lockSheet(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := s.reversal.reverse(ctx, sheet, *current); err != nil {
			return err
		}
		if err := sheet.apply(updated); err != nil {
			return err
		}
		if err := sheet.flush(ctx, tx); err != nil {
			return err
		}
		if err := tx.UpdateLeg(ctx, updated); err != nil {
			return err
		}

		incoming, err := syncIncoming(ctx, tx, *current, updated)
		if err != nil {
			return err
		}
		txn = domain.Transaction{Outgoing: updated, Incoming: incoming}
		return checkLegs(txn)
	})
	if err != nil {
		return nil, s.fail(ctx, opModify, &transactionID, req.TransactionType, err)
	}

	s.succeed(ctx, opModify, &txn, fmt.Sprintf("modified to %s of %s", txn.Outgoing.TransactionType, txn.Outgoing.Amount.StringFixed(domain.AmountScale)))
	return &txn, nil
}

// syncIncoming brings the paired incoming leg in line with a modified outgoing leg.
func syncIncoming(ctx context.Context, tx portsrepo.TxRepositories, original, updated domain.LedgerLeg) (*domain.LedgerLeg, error) {
	var existing *domain.LedgerLeg
	if original.TransactionType == domain.Transfer {
		leg, err := tx.FindLegForUpdate(ctx, original.TransactionID, domain.Incoming)
		switch {
		case err == nil:
			existing = leg
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	if updated.TransactionType != domain.Transfer {
		if existing != nil {
			existing.IsDeleted = true
			existing.LastUpdatedAt = updated.LastUpdatedAt
			if err := tx.UpdateLeg(ctx, *existing); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	in := domain.IncomingLegFor(updated)
	if existing != nil {
		in.CreatedAt = existing.CreatedAt
		if err := tx.UpdateLeg(ctx, in); err != nil {
			return nil, err
		}
		return &in, nil
	}

	// A soft-deleted incoming row may survive from an earlier modification; revive it.
	err := tx.InsertLeg(ctx, in)
	if errors.Is(err, apperrors.ErrDuplicate) {
		err = tx.UpdateLeg(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	s.LogInfo(ctx, "Deleting transaction", slog.String("transaction_id", transactionID))

	var txnType domain.TransactionType
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		current, err := findLeg(ctx, tx, transactionID, domain.Outgoing)
		if err != nil {
			return err
		}
		txnType = current.TransactionType

		sheet, err := lockSheet(ctx, tx, current.AccountIDs())
		if err != nil {
			return err
		}
		if err := s.reversal.reverse(ctx, sheet, *current); err != nil {
			return err
		}
		if err := sheet.flush(ctx, tx); err != nil {
			return err
		}

		now := s.now().UTC()
		current.IsDeleted = true
		current.LastUpdatedAt = now
		if err := tx.UpdateLeg(ctx, *current); err != nil {
			return err
		}
		if current.TransactionType != domain.Transfer {
			return nil
		}

		incoming, err := tx.FindLegForUpdate(ctx, transactionID, domain.Incoming)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		incoming.IsDeleted = true
		incoming.LastUpdatedAt = now
		return tx.UpdateLeg(ctx, *incoming)
	})
	if err != nil {
		return s.fail(ctx, opDelete, &transactionID, txnType, err)
	}

	s.caches.InvalidateAll(ctx)
	s.observe(opDelete, txnType, nil)
	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// succeed runs the post-commit steps shared by create and modify.
func (s *transactionService) succeed(ctx context.Context, op string, txn *domain.Transaction, message string) {
	id := txn.ID()
	s.caches.InvalidateAll(ctx)
	s.audit.Record(ctx, &id, domain.StatusCompleted, message)
	s.observe(op, txn.Outgoing.TransactionType, nil)
	s.LogInfo(ctx, "Transaction committed",
		slog.String("operation", op),
		slog.String("transaction_id", id),
		slog.String("transaction_type", string(txn.Outgoing.TransactionType)))
}

// fail audits err unless the reversal engine already did, and returns the
// caller-facing error.
func (s *transactionService) fail(ctx context.Context, op string, transactionID *string, txnType domain.TransactionType, err error) error {
	var ae *auditedError
	if errors.As(err, &ae) {
		err = ae.err
	} else {
		s.audit.Record(ctx, transactionID, domain.StatusFailed, op+" failed: "+err.Error())
	}

	args := []any{slog.String("operation", op), slog.String("kind", apperrors.Kind(err))}
	if transactionID != nil {
		args = append(args, slog.String("transaction_id", *transactionID))
	}
	if apperrors.Kind(err) == apperrors.KindInternal {
		s.LogError(ctx, err, "Transaction failed", args...)
	} else {
		s.LogWarn(ctx, err, "Transaction rejected", args...)
	}
	s.observe(op, txnType, err)
	return err
}

func (s *transactionService) observe(op string, txnType domain.TransactionType, err error) {
	outcome := "success"
	if err != nil {
		outcome = apperrors.Kind(err)
	}
	label := string(txnType)
	if label == "" {
		label = "UNKNOWN"
	}
	metrics.TransactionsTotal.WithLabelValues(op, label, outcome).Inc()
}
