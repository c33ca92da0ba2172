package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Description: "groceries",
		Amount:      Money{Cents: 1500},
		Type:        Expense,
		AccountID:   1,
		Date:        NewDate(2024, 3, 10),
		CreatedAt:   time.Now(),
	}
}

func TestTransactionValidate(t *testing.T) {
	dest := int64(2)
	same := int64(1)

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{
			name:   "valid expense",
			mutate: func(tx *Transaction) {},
		},
		{
			name: "valid transfer",
			mutate: func(tx *Transaction) {
				tx.Type = Transfer
				tx.DestinationID = &dest
			},
		},
		{
			name:    "transfer without destination",
			mutate:  func(tx *Transaction) { tx.Type = Transfer },
			wantErr: ErrMissingDestination,
		},
		{
			name: "transfer to source account",
			mutate: func(tx *Transaction) {
				tx.Type = Transfer
				tx.DestinationID = &same
			},
			wantErr: ErrSameDestination,
		},
		{
			name: "expense with destination",
			mutate: func(tx *Transaction) {
				tx.DestinationID = &dest
			},
			wantErr: ErrUnexpectedDest,
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "empty description",
			mutate:  func(tx *Transaction) { tx.Description = "   " },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "zero date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "bad type",
			mutate:  func(tx *Transaction) { tx.Type = "refund" },
			wantErr: ErrInvalidTxType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	acct := Account{Name: "Nubank", Type: Checking, Currency: "BRL", Active: true}
	if err := acct.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	acct.Currency = "brl"
	if !errors.Is(acct.Validate(), ErrInvalidCurrency) {
		t.Errorf("lower-case currency accepted")
	}

	acct.Currency = "BRL"
	acct.Type = "wallet"
	if !errors.Is(acct.Validate(), ErrInvalidAccountType) {
		t.Errorf("unknown account type accepted")
	}
}

func TestTagValidate(t *testing.T) {
	self := int64(7)
	tag := Tag{ID: 7, Name: "Food", ParentID: &self, Type: ExpenseTag}
	if !errors.Is(tag.Validate(), ErrSelfParent) {
		t.Errorf("self-parent tag accepted")
	}

	tag.ParentID = nil
	if err := tag.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{
		Name:      "Food",
		Amount:    Money{Cents: 100000},
		TagID:     1,
		Period:    Monthly,
		StartDate: NewDate(2024, 1, 1),
		EndDate:   NewDate(2024, 12, 31),
		Active:    true,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	b.Period = "daily"
	if !errors.Is(b.Validate(), ErrInvalidPeriod) {
		t.Errorf("unknown period accepted")
	}

	b.Period = Monthly
	b.EndDate = NewDate(2023, 12, 31)
	if b.Validate() == nil {
		t.Errorf("inverted date range accepted")
	}
}
