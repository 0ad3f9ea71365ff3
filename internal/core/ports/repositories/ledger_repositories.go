package repositories

import (
	"context"

	"github.com/sagabat/transaction-manage/internal/core/domain"
)

// LedgerReader defines read operations on ledger legs outside of a unit of work.
type LedgerReader interface {
	// FindLegByID retrieves a non-deleted leg. Returns apperrors.ErrNotFound otherwise.
	FindLegByID(ctx context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error)

	// ListLegsByAccount returns the non-deleted legs recorded against accountID,
	// most recent first. A nil direction returns both directions.
	ListLegsByAccount(ctx context.Context, accountID string, direction *domain.LegDirection) ([]domain.LedgerLeg, error)
}
