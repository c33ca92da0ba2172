package ledger

import (
	"context"
	"fmt"

	"carteira/internal/core"

	"golang.org/x/sync/errgroup"
)

// conversionBatchSize bounds how many balance conversions run at once,
// a throttling courtesy toward the rate source and store. Correctness
// does not depend on it.
const conversionBatchSize = 4

// AccountBalance is one account's contribution to a net-worth total.
type AccountBalance struct {
	Account   core.Account
	Balance   core.Money // in the account's currency
	Converted core.Money // in the reference currency
	Degraded  bool
}

// NetWorthResult is the combined position across active accounts, in
// the reference currency. Degraded is set when any contribution used a
// fallback identity rate or was zeroed by a conversion failure; such a
// total must be surfaced as untrustworthy, not silently presented.
type NetWorthResult struct {
	Total    core.Money
	Currency string
	Accounts []AccountBalance
	Degraded bool
}

// NetWorth recomputes every active account's live balance (initial
// balance plus all transactions, never a stored denormalized value),
// converts each to the reference currency and sums. Inactive accounts
// are excluded entirely.
func NetWorth(ctx context.Context, conv Converter, accounts []core.Account, entries []Entry, refCurrency string) NetWorthResult {
	result := NetWorthResult{Currency: refCurrency}

	active := make([]core.Account, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Active {
			active = append(active, acct)
		}
	}

	balances := make([]AccountBalance, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conversionBatchSize)
	for i, acct := range active {
		g.Go(func() error {
			balance, d1 := BalanceAsOf(gctx, conv, acct, entries, nil)
			converted, d2 := conv.Convert(gctx, balance, acct.Currency, refCurrency, core.Date{})
			if d2 {
				// No usable rate: this contribution degrades to zero
				// instead of polluting the total with an unconverted
				// amount. The flag tells the caller the sum is partial.
				converted = core.Money{}
			}
			balances[i] = AccountBalance{
				Account:   acct,
				Balance:   balance,
				Converted: converted,
				Degraded:  d1 || d2,
			}
			return nil
		})
	}
	// Workers only write their own slot and never return errors; Wait
	// is a join point.
	_ = g.Wait()

	for _, ab := range balances {
		result.Total = result.Total.Add(ab.Converted)
		result.Degraded = result.Degraded || ab.Degraded
	}
	result.Accounts = balances
	return result
}

// SeriesPoint is one month of the net-worth evolution.
type SeriesPoint struct {
	Label    string // e.g. "Jun 2024"
	MonthEnd core.Date
	Total    core.Money
	Degraded bool
}

// NetWorthSeries produces one point per calendar month for the last
// months months, oldest first. Each point is the sum of every active
// account's balance as of that month's last day, converted to the
// reference currency at that date. Conversions within a month run
// concurrently in small batches; the per-month assembly is sequential.
func NetWorthSeries(ctx context.Context, conv Converter, accounts []core.Account, entries []Entry, refCurrency string, months int) ([]SeriesPoint, bool, error) {
	if months <= 0 {
		return nil, false, fmt.Errorf("net worth series: months must be positive, got %d", months)
	}

	active := make([]core.Account, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Active {
			active = append(active, acct)
		}
	}

	// Anchor at the first of the current month so subtracting months
	// never normalizes across a short month (Oct 31 minus one month
	// would land back in October).
	today := core.Today()
	anchor := core.NewDate(today.Year(), int(today.Time.Month()), 1)
	points := make([]SeriesPoint, 0, months)
	anyDegraded := false

	for offset := months - 1; offset >= 0; offset-- {
		monthEnd := core.Date{Time: anchor.AddDate(0, -offset, 0)}.MonthEnd()

		converted := make([]core.Money, len(active))
		degraded := make([]bool, len(active))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(conversionBatchSize)
		for i, acct := range active {
			g.Go(func() error {
				asOf := monthEnd
				balance, d1 := BalanceAsOf(gctx, conv, acct, entries, &asOf)
				value, d2 := conv.Convert(gctx, balance, acct.Currency, refCurrency, asOf)
				if d2 {
					value = core.Money{}
				}
				converted[i] = value
				degraded[i] = d1 || d2
				return nil
			})
		}
		_ = g.Wait()

		point := SeriesPoint{
			Label:    monthEnd.Format("Jan 2006"),
			MonthEnd: monthEnd,
		}
		for i := range active {
			point.Total = point.Total.Add(converted[i])
			point.Degraded = point.Degraded || degraded[i]
		}
		anyDegraded = anyDegraded || point.Degraded
		points = append(points, point)
	}
	return points, anyDegraded, nil
}
