package ledger

import (
	"context"
	"testing"
	"time"

	"carteira/internal/core"
)

func TestProgressiveBalancesInputOrderIndependent(t *testing.T) {
	acct := core.Account{ID: 1, Currency: "BRL", InitialBalance: core.Money{Cents: 100000}, Active: true}
	day1 := core.NewDate(2024, 3, 1)
	day2 := core.NewDate(2024, 3, 2)
	// Input deliberately unsorted: day2 first.
	es := entries("BRL",
		tx(1, core.Income, 50000, day2),
		tx(1, core.Expense, 20000, day1),
	)
	window := Window{From: datePtr(day1), To: datePtr(day2)}
	conv := newFakeConverter()

	got, degraded, err := ProgressiveBalances(context.Background(), conv, acct, es, window)
	if err != nil {
		t.Fatalf("ProgressiveBalances() error: %v", err)
	}
	if degraded {
		t.Fatalf("same-currency run flagged degraded")
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	// Output must behave as if processed day1 then day2.
	if !got[0].Date.SameDay(day1) || got[0].Balance == nil || got[0].Balance.Cents != 80000 {
		t.Errorf("row 0 = %s balance %v, want day1 / 80000", got[0].Date, got[0].Balance)
	}
	if !got[1].Date.SameDay(day2) || got[1].Balance == nil || got[1].Balance.Cents != 130000 {
		t.Errorf("row 1 = %s balance %v, want day2 / 130000", got[1].Date, got[1].Balance)
	}
	if got[0].Currency != "BRL" {
		t.Errorf("row currency = %q, want BRL", got[0].Currency)
	}
}

func TestProgressiveBalancesSameDayTiebreak(t *testing.T) {
	acct := core.Account{ID: 1, Currency: "BRL", Active: true}
	day := core.NewDate(2024, 3, 1)
	early := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	es := entries("BRL",
		tx(1, core.Income, 1000, day, withCreatedAt(late)),
		tx(1, core.Income, 2000, day, withCreatedAt(early)),
	)
	conv := newFakeConverter()

	got, _, err := ProgressiveBalances(context.Background(), conv, acct, es, Window{From: datePtr(day)})
	if err != nil {
		t.Fatalf("ProgressiveBalances() error: %v", err)
	}
	if got[0].Amount.Cents != 2000 || got[0].Balance.Cents != 2000 {
		t.Errorf("earlier created_at not folded first: %+v", got[0])
	}
	if got[1].Balance.Cents != 3000 {
		t.Errorf("final running balance = %d, want 3000", got[1].Balance.Cents)
	}
}

func TestProgressiveBalancesOpeningFromBeforeWindow(t *testing.T) {
	acct := core.Account{ID: 1, Currency: "BRL", InitialBalance: core.Money{Cents: 10000}, Active: true}
	es := entries("BRL",
		tx(1, core.Expense, 4000, core.NewDate(2024, 2, 15)), // before window
		tx(1, core.Income, 1000, core.NewDate(2024, 3, 10)),
	)
	window := Window{From: datePtr(core.NewDate(2024, 3, 1)), To: datePtr(core.NewDate(2024, 3, 31))}
	conv := newFakeConverter()

	got, _, err := ProgressiveBalances(context.Background(), conv, acct, es, window)
	if err != nil {
		t.Fatalf("ProgressiveBalances() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	// Opening 10000-4000=6000, then +1000.
	if got[0].Balance.Cents != 7000 {
		t.Errorf("balance = %d, want 7000", got[0].Balance.Cents)
	}
}

func TestProgressiveBalancesUndefinedWithoutLowerBound(t *testing.T) {
	acct := core.Account{ID: 1, Currency: "BRL", Active: true}
	es := entries("BRL", tx(1, core.Income, 1000, core.NewDate(2024, 3, 10)))
	conv := newFakeConverter()

	got, _, err := ProgressiveBalances(context.Background(), conv, acct, es, Window{})
	if err != nil {
		t.Fatalf("ProgressiveBalances() error: %v", err)
	}
	if got[0].Balance != nil {
		t.Errorf("balance defined without a window lower bound")
	}
}

func TestProgressiveBalancesRejectsInvertedWindow(t *testing.T) {
	acct := core.Account{ID: 1, Currency: "BRL", Active: true}
	conv := newFakeConverter()
	_, _, err := ProgressiveBalances(context.Background(), conv, acct, nil,
		Window{From: datePtr(core.NewDate(2024, 3, 31)), To: datePtr(core.NewDate(2024, 3, 1))})
	if err == nil {
		t.Fatalf("inverted window accepted")
	}
}

func TestCombinedTransferNeutrality(t *testing.T) {
	accounts := []core.Account{
		{ID: 1, Currency: "BRL", InitialBalance: core.Money{Cents: 50000}, Active: true},
		{ID: 2, Currency: "BRL", InitialBalance: core.Money{Cents: 30000}, Active: true},
	}
	day0 := core.NewDate(2024, 3, 1)
	day1 := core.NewDate(2024, 3, 2)
	es := entries("BRL",
		tx(1, core.Income, 10000, day0),
		tx(1, core.Transfer, 10000, day1, withDest(2)),
	)
	window := Window{From: datePtr(day0), To: datePtr(day1)}
	conv := newFakeConverter()

	got, degraded, err := CombinedProgressiveBalances(context.Background(), conv, accounts, "BRL", es, window)
	if err != nil {
		t.Fatalf("CombinedProgressiveBalances() error: %v", err)
	}
	if degraded {
		t.Fatalf("combined run flagged degraded")
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	// After the income: 50000+30000+10000.
	if got[0].Balance.Cents != 90000 {
		t.Errorf("balance after income = %d, want 90000", got[0].Balance.Cents)
	}
	// The transfer must not move the combined total.
	if got[1].Balance.Cents != got[0].Balance.Cents {
		t.Errorf("transfer moved combined total: %d -> %d", got[0].Balance.Cents, got[1].Balance.Cents)
	}

	// Individually, the transfer moves 100.00 from account 1 to 2.
	before := datePtr(day0)
	balA1, _ := BalanceAsOf(context.Background(), conv, accounts[0], es, before)
	balA2, _ := BalanceAsOf(context.Background(), conv, accounts[0], es, datePtr(day1))
	if balA2.Cents != balA1.Cents-10000 {
		t.Errorf("account 1: %d -> %d, want -10000 delta", balA1.Cents, balA2.Cents)
	}
	balB1, _ := BalanceAsOf(context.Background(), conv, accounts[1], es, before)
	balB2, _ := BalanceAsOf(context.Background(), conv, accounts[1], es, datePtr(day1))
	if balB2.Cents != balB1.Cents+10000 {
		t.Errorf("account 2: %d -> %d, want +10000 delta", balB1.Cents, balB2.Cents)
	}
}

func TestCombinedConvertsToReferenceCurrency(t *testing.T) {
	accounts := []core.Account{
		{ID: 1, Currency: "USD", InitialBalance: core.Money{}, Active: true},
	}
	day := core.NewDate(2024, 3, 1)
	es := entries("USD", tx(1, core.Income, 10000, day))
	conv := newFakeConverter()
	conv.set("USD", "BRL", "5.00")

	got, degraded, err := CombinedProgressiveBalances(context.Background(), conv, accounts, "BRL", es,
		Window{From: datePtr(day)})
	if err != nil {
		t.Fatalf("CombinedProgressiveBalances() error: %v", err)
	}
	if degraded {
		t.Fatalf("scripted conversion flagged degraded")
	}
	if got[0].Balance.Cents != 50000 {
		t.Errorf("converted running total = %d, want 50000", got[0].Balance.Cents)
	}
	if got[0].Currency != "BRL" {
		t.Errorf("currency = %q, want BRL", got[0].Currency)
	}
}
