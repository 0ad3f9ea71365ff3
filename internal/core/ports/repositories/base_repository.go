package repositories

import (
	"context"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TxRepositories is the set of operations available inside a unit of work.
// Everything done through it is committed together or not at all.
type TxRepositories interface {
	// LockAccounts locks the given accounts for the rest of the unit of work and
	// returns the ones that exist and are not soft-deleted. Locks are taken in
	// ascending id order; call it once per unit of work with the full id set.
	LockAccounts(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalance sets the persisted balance of a locked account.
	UpdateAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error

	// FindLegForUpdate loads a non-deleted ledger leg and locks it.
	// Returns apperrors.ErrNotFound when absent or soft-deleted.
	FindLegForUpdate(ctx context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error)

	// InsertLeg persists a new ledger leg.
	InsertLeg(ctx context.Context, leg domain.LedgerLeg) error

	// UpdateLeg overwrites an existing ledger leg identified by (TransactionID, Direction).
	UpdateLeg(ctx context.Context, leg domain.LedgerLeg) error

	// CustomerExists reports whether a non-deleted customer exists.
	CustomerExists(ctx context.Context, customerID string) (bool, error)
}

// UnitOfWork runs fn atomically. A nil return commits, anything else rolls back
// and is returned unchanged.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
