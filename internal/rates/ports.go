// Package rates defines the ports for exchange-rate lookup: an
// external source of fresh rates and a persistent day-keyed store.
package rates

import (
	"context"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// Source answers "what is the rate from X to Y, approximately now".
	// Implementations are treated as untrusted and unreliable; callers
	// must be prepared for errors and fall back to cached rates.
	Source interface {
		Rate(ctx context.Context, from, to string) (rate decimal.Decimal, provenance string, err error)
	}

	// Store is the persistent rate cache, one row per currency pair per
	// day. Reads return nil (no error) on a clean miss.
	Store interface {
		// GetRate returns the rate for the exact (from, to, on) triple.
		GetRate(ctx context.Context, from, to string, on core.Date) (*core.ExchangeRate, error)

		// LatestRate returns the most recent row for (from, to)
		// regardless of date.
		LatestRate(ctx context.Context, from, to string) (*core.ExchangeRate, error)

		// SaveRate inserts or overwrites the row for the rate's
		// (from, to, date) key. Last write wins; values for a given day
		// converge to the same externally sourced rate.
		SaveRate(ctx context.Context, rate core.ExchangeRate) error

		// PruneRates deletes rows older than the cutoff. Best effort.
		PruneRates(ctx context.Context, olderThan core.Date) (int64, error)
	}
)
