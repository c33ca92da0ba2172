// Package fx resolves exchange rates through a layered cache and
// converts monetary amounts between currencies. Lookups never fail
// hard: when every layer misses the service degrades to the identity
// rate and flags the result, so a report renders a number instead of
// an error page.
package fx

import (
	"context"
	"log/slog"
	"time"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/rates"

	"github.com/shopspring/decimal"
)

// Result is a resolved rate plus provenance. Degraded marks rates that
// came from the last-resort identity fallback and must not be
// presented as trustworthy.
type Result struct {
	Rate     decimal.Decimal
	Source   string
	Degraded bool
}

// Service resolves rates in order: session cache, persistent store,
// external source, most-recent stored row, identity. The session cache
// is keyed by (from, to, date) exactly like the store; it is injected
// so each test (and each process) owns its lifetime.
type Service struct {
	session *cache.LRUCache[Result]
	store   rates.Store
	source  rates.Source
	now     func() core.Date
}

// NewService wires the three layers together. session may be nil, in
// which case a default-sized cache is created.
func NewService(session *cache.LRUCache[Result], store rates.Store, source rates.Source) *Service {
	if session == nil {
		session = cache.NewLRUCache[Result](512, 12*time.Hour)
	}
	return &Service{
		session: session,
		store:   store,
		source:  source,
		now:     core.Today,
	}
}

func sessionKey(from, to string, on core.Date) string {
	return from + "|" + to + "|" + on.String()
}

// Rate resolves the exchange rate from one currency to another for the
// logical day on (today when zero). It never returns an error; a
// degraded Result carries rate 1 and Degraded set.
func (s *Service) Rate(ctx context.Context, from, to string, on core.Date) Result {
	// Same-currency conversions short-circuit before touching any
	// cache or source.
	if from == to {
		return Result{Rate: decimal.NewFromInt(1), Source: "identity"}
	}
	if on.IsZero() {
		on = s.now()
	}

	key := sessionKey(from, to, on)
	if cached, ok := s.session.Get(key); ok {
		return cached
	}

	if row, err := s.store.GetRate(ctx, from, to, on); err != nil {
		slog.WarnContext(ctx, "Rate store read failed", "from", from, "to", to, "date", on.String(), "error", err)
	} else if row != nil {
		res := Result{Rate: row.Rate, Source: row.Source}
		s.session.Set(key, res)
		return res
	}

	rate, provenance, err := s.source.Rate(ctx, from, to)
	if err == nil {
		res := Result{Rate: rate, Source: provenance}
		s.session.Set(key, res)
		if saveErr := s.store.SaveRate(ctx, core.ExchangeRate{
			From:   from,
			To:     to,
			Rate:   rate,
			Date:   on,
			Source: provenance,
		}); saveErr != nil {
			// A failed cache write must not fail the conversion that
			// triggered it.
			slog.WarnContext(ctx, "Rate store write failed", "from", from, "to", to, "date", on.String(), "error", saveErr)
		}
		return res
	}
	slog.WarnContext(ctx, "External rate source failed, falling back to stored rates",
		"from", from, "to", to, "date", on.String(), "error", err)

	if row, storeErr := s.store.LatestRate(ctx, from, to); storeErr != nil {
		slog.WarnContext(ctx, "Rate store fallback read failed", "from", from, "to", to, "error", storeErr)
	} else if row != nil {
		res := Result{Rate: row.Rate, Source: row.Source}
		s.session.Set(key, res)
		return res
	}

	// Last resort: identity. A wrong-but-present number is preferred
	// over blocking the caller; surfaced via the Degraded flag.
	slog.ErrorContext(ctx, "No exchange rate available, degrading to identity",
		"from", from, "to", to, "date", on.String())
	return Result{Rate: decimal.NewFromInt(1), Source: "identity", Degraded: true}
}

// Convert translates amount from one currency to another for the given
// logical day. The degraded return mirrors Result.Degraded.
func (s *Service) Convert(ctx context.Context, amount core.Money, from, to string, on core.Date) (core.Money, bool) {
	if from == to {
		return amount, false
	}
	res := s.Rate(ctx, from, to, on)
	return amount.ConvertedBy(res.Rate), res.Degraded
}
