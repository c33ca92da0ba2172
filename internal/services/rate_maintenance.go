package services

import (
	"context"
	"fmt"
	"log/slog"

	"carteira/internal/backend"
	"carteira/internal/core"
	"carteira/internal/fx"
)

// RateMaintenance keeps the persistent rate cache warm and small: it
// prefetches today's rate for every currency used by an active account
// and prunes rows past the retention window.
type RateMaintenance struct {
	repo        backend.Repository
	fx          *fx.Service
	refCurrency string
}

func NewRateMaintenance(repo backend.Repository, fxService *fx.Service, refCurrency string) *RateMaintenance {
	return &RateMaintenance{
		repo:        repo,
		fx:          fxService,
		refCurrency: refCurrency,
	}
}

// PrefetchDailyRates resolves today's rate between every active
// account currency and the reference currency, in both directions. The
// resolution itself persists fresh rates, so a later offline day still
// has a same-week rate to fall back to. Returns the number of
// degraded lookups.
func (m *RateMaintenance) PrefetchDailyRates(ctx context.Context) (int, error) {
	accounts, err := m.repo.ListAccounts(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	currencies := make(map[string]bool)
	for _, a := range accounts {
		if a.Currency != m.refCurrency {
			currencies[a.Currency] = true
		}
	}

	today := core.Today()
	degraded := 0
	for currency := range currencies {
		for _, pair := range [][2]string{{currency, m.refCurrency}, {m.refCurrency, currency}} {
			res := m.fx.Rate(ctx, pair[0], pair[1], today)
			if res.Degraded {
				degraded++
				slog.WarnContext(ctx, "Rate prefetch degraded",
					"from", pair[0], "to", pair[1], "date", today.String())
			}
		}
	}

	slog.InfoContext(ctx, "Daily rate prefetch completed",
		"currencies", len(currencies), "degraded", degraded)
	return degraded, nil
}

// PruneOldRates deletes stored rates older than retentionDays.
func (m *RateMaintenance) PruneOldRates(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}
	cutoff := core.Today().AddDays(-retentionDays)
	deleted, err := m.repo.PruneRates(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune rates: %w", err)
	}
	return deleted, nil
}
