package ledger

import (
	"context"
	"testing"

	"carteira/internal/core"
)

func TestNetWorthSumsConvertedBalances(t *testing.T) {
	conv := newFakeConverter()
	conv.set("USD", "BRL", "5.00")

	accounts := []core.Account{
		{ID: 1, Name: "Nubank", Type: core.Checking, Currency: "BRL", InitialBalance: core.Money{Cents: 100000}, Active: true},
		{ID: 2, Name: "Wise", Type: core.Checking, Currency: "USD", InitialBalance: core.Money{Cents: 20000}, Active: true},
	}
	es := entries("BRL", tx(1, core.Income, 50000, core.NewDate(2024, 5, 1)))

	result := NetWorth(context.Background(), conv, accounts, es, "BRL")
	if result.Degraded {
		t.Fatalf("unexpected degraded result")
	}
	// 1500 BRL + 200 USD x 5.00 = 2500 BRL.
	if result.Total.Cents != 250000 {
		t.Errorf("total = %d, want 250000", result.Total.Cents)
	}
	if result.Currency != "BRL" {
		t.Errorf("currency = %q, want BRL", result.Currency)
	}
	if len(result.Accounts) != 2 {
		t.Fatalf("got %d account balances, want 2", len(result.Accounts))
	}
	for _, ab := range result.Accounts {
		if ab.Account.ID == 2 {
			if ab.Balance.Cents != 20000 {
				t.Errorf("USD balance = %d, want 20000 (account currency)", ab.Balance.Cents)
			}
			if ab.Converted.Cents != 100000 {
				t.Errorf("USD converted = %d, want 100000", ab.Converted.Cents)
			}
		}
	}
}

func TestNetWorthExcludesInactiveAccounts(t *testing.T) {
	accounts := []core.Account{
		{ID: 1, Name: "Open", Type: core.Checking, Currency: "BRL", InitialBalance: core.Money{Cents: 10000}, Active: true},
		{ID: 2, Name: "Closed", Type: core.Checking, Currency: "BRL", InitialBalance: core.Money{Cents: 999999}, Active: false},
	}

	result := NetWorth(context.Background(), newFakeConverter(), accounts, nil, "BRL")
	if result.Total.Cents != 10000 {
		t.Errorf("total = %d, want 10000 (closed account excluded)", result.Total.Cents)
	}
	if len(result.Accounts) != 1 {
		t.Errorf("got %d account balances, want 1", len(result.Accounts))
	}
}

func TestNetWorthDegradedConversionContributesZero(t *testing.T) {
	// No JPY rate scripted: the conversion degrades and the account's
	// contribution must be zero, not the raw unconverted amount.
	accounts := []core.Account{
		{ID: 1, Name: "Nubank", Type: core.Checking, Currency: "BRL", InitialBalance: core.Money{Cents: 10000}, Active: true},
		{ID: 2, Name: "Yen", Type: core.Checking, Currency: "JPY", InitialBalance: core.Money{Cents: 500000}, Active: true},
	}

	result := NetWorth(context.Background(), newFakeConverter(), accounts, nil, "BRL")
	if !result.Degraded {
		t.Fatalf("result not flagged degraded")
	}
	if result.Total.Cents != 10000 {
		t.Errorf("total = %d, want 10000 (degraded contribution zeroed)", result.Total.Cents)
	}
	for _, ab := range result.Accounts {
		if ab.Account.ID == 2 {
			if !ab.Degraded {
				t.Errorf("JPY account not flagged degraded")
			}
			if ab.Converted.Cents != 0 {
				t.Errorf("JPY converted = %d, want 0", ab.Converted.Cents)
			}
			if ab.Balance.Cents != 500000 {
				t.Errorf("JPY balance = %d, want 500000 (native balance still reported)", ab.Balance.Cents)
			}
		}
	}
}

func TestNetWorthSeriesOldestFirst(t *testing.T) {
	accounts := []core.Account{
		{ID: 1, Name: "Nubank", Type: core.Checking, Currency: "BRL", InitialBalance: core.Money{Cents: 100000}, Active: true},
	}
	// One income at the end of each of the last three months; each
	// point should reflect only what happened up to that month's end.
	today := core.Today()
	anchor := core.NewDate(today.Year(), int(today.Time.Month()), 1)
	var txs []core.Transaction
	for offset := 2; offset >= 0; offset-- {
		monthEnd := core.Date{Time: anchor.AddDate(0, -offset, 0)}.MonthEnd()
		txs = append(txs, tx(1, core.Income, 10000, monthEnd))
	}
	es := entries("BRL", txs...)

	points, degraded, err := NetWorthSeries(context.Background(), newFakeConverter(), accounts, es, "BRL", 3)
	if err != nil {
		t.Fatalf("NetWorthSeries() error: %v", err)
	}
	if degraded {
		t.Fatalf("unexpected degraded series")
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if !points[0].MonthEnd.BeforeDay(points[1].MonthEnd) || !points[1].MonthEnd.BeforeDay(points[2].MonthEnd) {
		t.Errorf("points not ordered oldest first: %v %v %v",
			points[0].MonthEnd, points[1].MonthEnd, points[2].MonthEnd)
	}
	last := points[len(points)-1]
	if last.Total.Cents != 130000 {
		t.Errorf("latest point = %d, want 130000", last.Total.Cents)
	}
	if points[0].Total.Cents >= last.Total.Cents {
		t.Errorf("series did not grow: first %d, last %d", points[0].Total.Cents, last.Total.Cents)
	}
	if last.Label == "" {
		t.Errorf("point label empty")
	}
}

func TestNetWorthSeriesRejectsNonPositiveMonths(t *testing.T) {
	for _, months := range []int{0, -3} {
		if _, _, err := NetWorthSeries(context.Background(), newFakeConverter(), nil, nil, "BRL", months); err == nil {
			t.Errorf("months=%d: expected error", months)
		}
	}
}
