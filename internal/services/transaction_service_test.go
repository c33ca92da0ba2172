package services

import (
	"context"
	"errors"
	"testing"

	"carteira/internal/core"
	"carteira/internal/storage/memory"
)

func seedAccount(t *testing.T, repo *memory.Repository, name, currency string) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		Name:     name,
		Type:     core.Checking,
		Currency: currency,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return a
}

func TestTransactionServiceCreate(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewTransactionService(repo, nil) // no AMQP: writes must still succeed
	acct := seedAccount(t, repo, "Nubank", "BRL")

	saved, err := svc.Create(context.Background(), core.Transaction{
		Description: "groceries",
		Amount:      core.Money{Cents: 15000},
		Type:        core.Expense,
		AccountID:   acct.ID,
		Date:        core.NewDate(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if saved.ID == 0 {
		t.Error("saved transaction has no ID")
	}

	got, err := repo.GetTransaction(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error: %v", err)
	}
	if got.Description != "groceries" {
		t.Errorf("persisted description = %q", got.Description)
	}
}

func TestTransactionServiceRejectsInvalid(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewTransactionService(repo, nil)
	acct := seedAccount(t, repo, "Nubank", "BRL")

	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{
			name: "zero amount",
			tx: core.Transaction{
				Description: "x", Type: core.Expense, AccountID: acct.ID,
				Date: core.NewDate(2024, 6, 1),
			},
			want: core.ErrInvalidAmount,
		},
		{
			name: "transfer without destination",
			tx: core.Transaction{
				Description: "x", Amount: core.Money{Cents: 100}, Type: core.Transfer,
				AccountID: acct.ID, Date: core.NewDate(2024, 6, 1),
			},
			want: core.ErrMissingDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.tx)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionServiceRejectsMissingReferences(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewTransactionService(repo, nil)
	acct := seedAccount(t, repo, "Nubank", "BRL")

	missingAccount := int64(999)
	missingTag := int64(888)

	t.Run("missing source account", func(t *testing.T) {
		_, err := svc.Create(context.Background(), core.Transaction{
			Description: "x", Amount: core.Money{Cents: 100}, Type: core.Expense,
			AccountID: missingAccount, Date: core.NewDate(2024, 6, 1),
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Create() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing destination account", func(t *testing.T) {
		_, err := svc.Create(context.Background(), core.Transaction{
			Description: "x", Amount: core.Money{Cents: 100}, Type: core.Transfer,
			AccountID: acct.ID, DestinationID: &missingAccount,
			Date: core.NewDate(2024, 6, 1),
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Create() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := svc.Create(context.Background(), core.Transaction{
			Description: "x", Amount: core.Money{Cents: 100}, Type: core.Expense,
			AccountID: acct.ID, TagID: &missingTag,
			Date: core.NewDate(2024, 6, 1),
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Create() error = %v, want ErrNotFound", err)
		}
	})
}

func TestTransactionServiceUpdateAndDelete(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewTransactionService(repo, nil)
	acct := seedAccount(t, repo, "Nubank", "BRL")

	saved, err := svc.Create(context.Background(), core.Transaction{
		Description: "groceries",
		Amount:      core.Money{Cents: 15000},
		Type:        core.Expense,
		AccountID:   acct.ID,
		Date:        core.NewDate(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	saved.Description = "groceries (edited)"
	if err := svc.Update(context.Background(), saved); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ := repo.GetTransaction(context.Background(), saved.ID)
	if got.Description != "groceries (edited)" {
		t.Errorf("update not persisted, description = %q", got.Description)
	}

	if err := svc.Delete(context.Background(), saved.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.GetTransaction(context.Background(), saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("transaction still present after delete: %v", err)
	}

	if err := svc.Delete(context.Background(), saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
