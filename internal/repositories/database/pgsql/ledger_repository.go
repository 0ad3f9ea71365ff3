package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/models"
	"github.com/sagabat/transaction-manage/internal/utils/mapping"
)

type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerReader {
	return &PgxLedgerRepository{pool: pool}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

const legColumns = `transaction_id, direction, account_id, counterparty_account_id, amount, transaction_type, is_deleted, created_at, last_updated_at`

func scanLeg(row pgx.Row) (models.LedgerLeg, error) {
	var m models.LedgerLeg
	err := row.Scan(
		&m.TransactionID,
		&m.Direction,
		&m.AccountID,
		&m.CounterpartyAccountID,
		&m.Amount,
		&m.TransactionType,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

func findLeg(ctx context.Context, q querier, transactionID string, direction domain.LegDirection, forUpdate bool) (*domain.LedgerLeg, error) {
	query := `SELECT ` + legColumns + ` FROM ledger_legs WHERE transaction_id = $1 AND direction = $2 AND is_deleted = FALSE`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanLeg(q.QueryRow(ctx, query, transactionID, string(direction)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger leg %s/%s: %w", transactionID, direction, err)
	}
	leg := mapping.ToDomainLedgerLeg(m)
	return &leg, nil
}

// FindLegByID retrieves a non-deleted leg.
func (r *PgxLedgerRepository) FindLegByID(ctx context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	return findLeg(ctx, r.pool, transactionID, direction, false)
}

// ListLegsByAccount returns the non-deleted legs of an account, most recent first.
func (r *PgxLedgerRepository) ListLegsByAccount(ctx context.Context, accountID string, direction *domain.LegDirection) ([]domain.LedgerLeg, error) {
	query := `SELECT ` + legColumns + ` FROM ledger_legs WHERE account_id = $1 AND is_deleted = FALSE`
	args := []any{accountID}
	if direction != nil {
		query += ` AND direction = $2`
		args = append(args, string(*direction))
	}
	query += ` ORDER BY created_at DESC, transaction_id, direction DESC;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger legs for account %s: %w", accountID, err)
	}
	defer rows.Close()

	legs := []domain.LedgerLeg{}
	for rows.Next() {
		m, err := scanLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger leg for account %s: %w", accountID, err)
		}
		legs = append(legs, mapping.ToDomainLedgerLeg(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger legs for account %s: %w", accountID, err)
	}
	return legs, nil
}
