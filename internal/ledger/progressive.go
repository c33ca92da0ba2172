package ledger

import (
	"context"
	"fmt"

	"carteira/internal/core"
)

// ProgressiveEntry is a transaction annotated with the running balance
// immediately after it. Balance is nil when the sequence is undefined
// (no window lower bound).
type ProgressiveEntry struct {
	Entry
	Balance  *core.Money
	Currency string
}

// ProgressiveBalances computes the running-balance sequence for one
// account over a window. The opening balance is the account balance
// strictly before the window start; entries inside the window are then
// folded in chronological order. The returned slice is in
// chronological order; apply SortDisplay for rendering.
//
// Output is independent of the input slice order: only (date,
// created_at) decides the fold.
func ProgressiveBalances(ctx context.Context, conv Converter, acct core.Account, entries []Entry, window Window) ([]ProgressiveEntry, bool, error) {
	if err := window.Validate(); err != nil {
		return nil, false, fmt.Errorf("progressive balances: %w", err)
	}

	selected := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if touches(e, acct.ID) && window.Contains(e.Date) {
			selected = append(selected, e)
		}
	}
	SortChronological(selected)

	// Without a lower bound there is no defined opening balance, so
	// every row's progressive balance is undefined.
	if window.From == nil {
		out := make([]ProgressiveEntry, len(selected))
		for i, e := range selected {
			out[i] = ProgressiveEntry{Entry: e, Currency: acct.Currency}
		}
		return out, false, nil
	}

	opening := window.From.AddDays(-1)
	running, degraded := BalanceAsOf(ctx, conv, acct, entries, &opening)

	out := make([]ProgressiveEntry, len(selected))
	for i, e := range selected {
		delta, d := effect(ctx, conv, acct, e)
		running = running.Add(delta)
		degraded = degraded || d
		balance := running
		out[i] = ProgressiveEntry{Entry: e, Balance: &balance, Currency: acct.Currency}
	}
	return out, degraded, nil
}

// CombinedProgressiveBalances computes the "all accounts" running
// total: every income/expense converted to the reference currency and
// accumulated. Transfers between tracked accounts net to zero in this
// view and contribute no delta; their rows still appear, annotated
// with the unchanged running total.
func CombinedProgressiveBalances(ctx context.Context, conv Converter, accounts []core.Account, refCurrency string, entries []Entry, window Window) ([]ProgressiveEntry, bool, error) {
	if err := window.Validate(); err != nil {
		return nil, false, fmt.Errorf("combined progressive balances: %w", err)
	}

	selected := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if window.Contains(e.Date) {
			selected = append(selected, e)
		}
	}
	SortChronological(selected)

	if window.From == nil {
		out := make([]ProgressiveEntry, len(selected))
		for i, e := range selected {
			out[i] = ProgressiveEntry{Entry: e, Currency: refCurrency}
		}
		return out, false, nil
	}

	// Opening total: combined balance of every active account the day
	// before the window starts.
	opening := window.From.AddDays(-1)
	running := core.Money{}
	degraded := false
	for _, acct := range accounts {
		if !acct.Active {
			continue
		}
		balance, d1 := BalanceAsOf(ctx, conv, acct, entries, &opening)
		converted, d2 := conv.Convert(ctx, balance, acct.Currency, refCurrency, opening)
		running = running.Add(converted)
		degraded = degraded || d1 || d2
	}

	out := make([]ProgressiveEntry, len(selected))
	for i, e := range selected {
		switch e.Type {
		case core.Income:
			delta, d := conv.Convert(ctx, e.Amount, e.Currency, refCurrency, e.Date)
			running = running.Add(delta)
			degraded = degraded || d
		case core.Expense:
			delta, d := conv.Convert(ctx, e.Amount, e.Currency, refCurrency, e.Date)
			running = running.Sub(delta)
			degraded = degraded || d
		case core.Transfer:
			// Debit and credit cancel across the tracked accounts.
		}
		balance := running
		out[i] = ProgressiveEntry{Entry: e, Balance: &balance, Currency: refCurrency}
	}
	return out, degraded, nil
}
