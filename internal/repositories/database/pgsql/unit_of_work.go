package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/utils/keylock"
	"github.com/sagabat/transaction-manage/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// PgxUnitOfWork runs callbacks inside a single READ COMMITTED transaction.
// Row locks come from SELECT ... FOR UPDATE and are released at commit or rollback.
type PgxUnitOfWork struct {
	BaseRepository
}

func newPgxUnitOfWork(pool *pgxpool.Pool) portsrepo.UnitOfWork {
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

func (u *PgxUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	tx, err := u.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := u.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			slog.Error("Failed to roll back transaction", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(ctx, &pgxTxRepositories{tx: tx}); err != nil {
		return err
	}
	return u.Commit(ctx, tx)
}

type pgxTxRepositories struct {
	tx pgx.Tx
}

var _ portsrepo.TxRepositories = (*pgxTxRepositories)(nil)

// LockAccounts locks one row at a time in ascending id order so two units of
// work touching the same accounts can never wait on each other in a cycle.
func (t *pgxTxRepositories) LockAccounts(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	accounts := make(map[string]domain.Account, len(accountIDs))
	for _, id := range keylock.SortedUnique(accountIDs) {
		m, err := scanAccount(t.tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("lock acquisition failed for account %s: %w", id, err)
		}
		if m.IsDeleted {
			continue
		}
		accounts[id] = mapping.ToDomainAccount(m)
	}
	return accounts, nil
}

func (t *pgxTxRepositories) UpdateAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance of account %s would become %s", apperrors.ErrInsufficientBalance, accountID, balance)
	}
	cmdTag, err := t.tx.Exec(ctx,
		`UPDATE accounts SET balance = $2, last_updated_at = NOW() WHERE account_id = $1;`,
		accountID, balance,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxTxRepositories) FindLegForUpdate(ctx context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	return findLeg(ctx, t.tx, transactionID, direction, true)
}

func (t *pgxTxRepositories) InsertLeg(ctx context.Context, leg domain.LedgerLeg) error {
	m := mapping.ToModelLedgerLeg(leg)
	query := `
		INSERT INTO ledger_legs (` + legColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	// A savepoint keeps the outer transaction usable after a unique violation.
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}
	_, err = sp.Exec(ctx, query,
		m.TransactionID,
		m.Direction,
		m.AccountID,
		m.CounterpartyAccountID,
		m.Amount,
		m.TransactionType,
		m.IsDeleted,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ledger leg %s/%s", apperrors.ErrDuplicate, m.TransactionID, m.Direction)
		}
		return fmt.Errorf("failed to insert ledger leg %s/%s: %w", m.TransactionID, m.Direction, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *pgxTxRepositories) UpdateLeg(ctx context.Context, leg domain.LedgerLeg) error {
	m := mapping.ToModelLedgerLeg(leg)
	query := `
		UPDATE ledger_legs
		SET account_id = $3, counterparty_account_id = $4, amount = $5, transaction_type = $6,
		    is_deleted = $7, last_updated_at = $8
		WHERE transaction_id = $1 AND direction = $2;
	`
	cmdTag, err := t.tx.Exec(ctx, query,
		m.TransactionID,
		m.Direction,
		m.AccountID,
		m.CounterpartyAccountID,
		m.Amount,
		m.TransactionType,
		m.IsDeleted,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger leg %s/%s: %w", m.TransactionID, m.Direction, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxTxRepositories) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE customer_id = $1 AND is_deleted = FALSE);`,
		customerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer %s: %w", customerID, err)
	}
	return exists, nil
}
