package ledger

import (
	"context"

	"carteira/internal/core"
)

// touches reports whether the entry moves the account's balance: the
// account is the source, or the destination of a transfer.
func touches(e Entry, accountID int64) bool {
	if e.AccountID == accountID {
		return true
	}
	return e.Type == core.Transfer && e.DestinationID != nil && *e.DestinationID == accountID
}

// effect returns the signed delta the entry applies to the account, in
// the account's own currency. A transfer credited to a destination in
// another currency is converted at the transaction date.
func effect(ctx context.Context, conv Converter, acct core.Account, e Entry) (core.Money, bool) {
	if e.AccountID == acct.ID {
		switch e.Type {
		case core.Income:
			return e.Amount, false
		case core.Expense, core.Transfer:
			return e.Amount.Neg(), false
		}
		return core.Money{}, false
	}
	// Destination side of a transfer.
	credited, degraded := conv.Convert(ctx, e.Amount, e.Currency, acct.Currency, e.Date)
	return credited, degraded
}

// BalanceAsOf computes the account's balance at the end of asOf (no
// upper bound when asOf is nil): initial balance plus the effect of
// every touching transaction dated on or before asOf. Application
// order does not matter here; addition commutes.
func BalanceAsOf(ctx context.Context, conv Converter, acct core.Account, entries []Entry, asOf *core.Date) (core.Money, bool) {
	balance := acct.InitialBalance
	degraded := false
	for _, e := range entries {
		if !touches(e, acct.ID) {
			continue
		}
		if asOf != nil && e.Date.AfterDay(*asOf) {
			continue
		}
		delta, d := effect(ctx, conv, acct, e)
		balance = balance.Add(delta)
		degraded = degraded || d
	}
	return balance, degraded
}
