package domain_test

import (
	"testing"

	"github.com/sagabat/transaction-manage/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func stringPtr(s string) *string {
	return &s
}

func transferOut(amount string) domain.LedgerLeg {
	return domain.LedgerLeg{
		TransactionID:         "txn_1",
		Direction:             domain.Outgoing,
		AccountID:             "acc_a",
		CounterpartyAccountID: stringPtr("acc_b"),
		Amount:                decimal.RequireFromString(amount),
		TransactionType:       domain.Transfer,
	}
}

func TestIncomingLegFor(t *testing.T) {
	out := transferOut("200.00")
	in := domain.IncomingLegFor(out)

	assert.Equal(t, domain.Incoming, in.Direction)
	assert.Equal(t, "txn_1", in.TransactionID)
	assert.Equal(t, "acc_b", in.AccountID)
	assert.Equal(t, "acc_a", in.SourceAccountID())
	assert.True(t, in.Amount.Equal(out.Amount))
	assert.Equal(t, "", in.TargetAccountID())
	assert.Equal(t, []string{"acc_b", "acc_a"}, in.AccountIDs())
}

func TestTransaction_Validate(t *testing.T) {
	validOut := transferOut("200.00")
	validIn := domain.IncomingLegFor(validOut)

	mismatched := validIn
	mismatched.Amount = decimal.NewFromInt(300)

	tests := []struct {
		name    string
		tx      domain.Transaction
		wantErr bool
	}{
		{
			name: "valid deposit",
			tx: domain.Transaction{Outgoing: domain.LedgerLeg{
				TransactionID: "txn_2", Direction: domain.Outgoing, AccountID: "acc_a",
				Amount: decimal.NewFromInt(10), TransactionType: domain.Deposit,
			}},
		},
		{
			name: "deposit with target",
			tx: domain.Transaction{Outgoing: domain.LedgerLeg{
				TransactionID: "txn_2", Direction: domain.Outgoing, AccountID: "acc_a",
				CounterpartyAccountID: stringPtr("acc_b"),
				Amount:                decimal.NewFromInt(10), TransactionType: domain.Deposit,
			}},
			wantErr: true,
		},
		{
			name: "zero amount withdrawal",
			tx: domain.Transaction{Outgoing: domain.LedgerLeg{
				TransactionID: "txn_3", Direction: domain.Outgoing, AccountID: "acc_a",
				Amount: decimal.Zero, TransactionType: domain.Withdrawal,
			}},
			wantErr: true,
		},
		{
			name: "five decimal places",
			tx: domain.Transaction{Outgoing: domain.LedgerLeg{
				TransactionID: "txn_4", Direction: domain.Outgoing, AccountID: "acc_a",
				Amount: decimal.RequireFromString("0.00005"), TransactionType: domain.Deposit,
			}},
			wantErr: true,
		},
		{
			name: "valid transfer",
			tx:   domain.Transaction{Outgoing: validOut, Incoming: &validIn},
		},
		{
			name:    "transfer without incoming leg",
			tx:      domain.Transaction{Outgoing: validOut},
			wantErr: true,
		},
		{
			name:    "transfer with mismatched amounts",
			tx:      domain.Transaction{Outgoing: validOut, Incoming: &mismatched},
			wantErr: true,
		},
		{
			name:    "incoming leg in outgoing slot",
			tx:      domain.Transaction{Outgoing: validIn},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFitsStorage(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0.0001", true},
		{"12.3400000", true},
		{"999999999999999.9999", true},
		{"0.00005", false},
		{"0.00004", false},
		{"1000000000000000", false},
		{"-1000000000000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FitsStorage(decimal.RequireFromString(tt.amount)))
		})
	}
}
