package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// balanceSheet is the working set of locked accounts inside one unit of work.
// Every balance change goes through it and is written back by flush.
type balanceSheet struct {
	accounts map[string]domain.Account
	touched  map[string]struct{}
}

// lockSheet locks every account in ids once, in ascending order.
func lockSheet(ctx context.Context, tx portsrepo.TxRepositories, ids []string) (*balanceSheet, error) {
	accounts, err := tx.LockAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &balanceSheet{accounts: accounts, touched: make(map[string]struct{})}, nil
}

func (b *balanceSheet) account(id string) (domain.Account, error) {
	acc, ok := b.accounts[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
	}
	return acc, nil
}

func (b *balanceSheet) balance(id string) decimal.Decimal {
	return b.accounts[id].Balance
}

func (b *balanceSheet) credit(id string, amount decimal.Decimal) error {
	acc, err := b.account(id)
	if err != nil {
		return err
	}
	balance := acc.Balance.Add(amount)
	if !balance.LessThan(domain.MaxAmount) {
		return fmt.Errorf("%w: balance of account %s would reach %s", apperrors.ErrInvalidTransaction, id, balance)
	}
	acc.Balance = balance
	b.accounts[id] = acc
	b.touched[id] = struct{}{}
	return nil
}

func (b *balanceSheet) debit(id string, amount decimal.Decimal) error {
	acc, err := b.account(id)
	if err != nil {
		return err
	}
	if acc.Balance.LessThan(amount) {
		return fmt.Errorf("%w: account %s holds %s, needs %s",
			apperrors.ErrInsufficientBalance, id, acc.Balance, amount)
	}
	acc.Balance = acc.Balance.Sub(amount)
	b.accounts[id] = acc
	b.touched[id] = struct{}{}
	return nil
}

// apply performs the balance effect of an outgoing leg. All checks happen
// before the first mutation so a rejected leg leaves the sheet unchanged.
func (b *balanceSheet) apply(leg domain.LedgerLeg) error {
	source, err := b.account(leg.AccountID)
	if err != nil {
		return err
	}

	switch leg.TransactionType {
	case domain.Deposit:
		return b.credit(source.AccountID, leg.Amount)

	case domain.Withdrawal:
		return b.debit(source.AccountID, leg.Amount)

	case domain.Transfer:
		target, err := b.account(leg.TargetAccountID())
		if err != nil {
			return err
		}
		if source.CurrencyCode != target.CurrencyCode {
			return fmt.Errorf("%w: currency mismatch between %s (%s) and %s (%s)",
				apperrors.ErrInvalidTransaction, source.AccountID, source.CurrencyCode, target.AccountID, target.CurrencyCode)
		}
		if err := b.debit(source.AccountID, leg.Amount); err != nil {
			return err
		}
		return b.credit(target.AccountID, leg.Amount)
	}
	return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrInvalidTransaction, leg.TransactionType)
}

// flush writes every touched balance back through tx, in ascending id order.
func (b *balanceSheet) flush(ctx context.Context, tx portsrepo.TxRepositories) error {
	ids := make([]string, 0, len(b.touched))
	for id := range b.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := tx.UpdateAccountBalance(ctx, id, b.accounts[id].Balance); err != nil {
			return err
		}
	}
	return nil
}
