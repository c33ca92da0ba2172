// Package memory provides in-memory rates.Source and rates.Store
// implementations for tests and the memory backend.
package memory

import (
	"context"
	"errors"
	"sync"

	"carteira/internal/core"
	"carteira/internal/rates"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is what the scripted source returns when told to fail.
var ErrUnavailable = errors.New("rate source unavailable")

// Source serves scripted rates keyed by "FROM->TO" and counts calls so
// tests can assert cache behavior.
type Source struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	fail  bool
	calls int
}

var _ rates.Source = (*Source)(nil)

func NewSource() *Source {
	return &Source{rates: make(map[string]decimal.Decimal)}
}

// SetRate scripts the rate returned for a pair.
func (s *Source) SetRate(from, to string, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[from+"->"+to] = rate
}

// Fail makes every subsequent lookup return ErrUnavailable.
func (s *Source) Fail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Calls returns how many lookups were attempted.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Source) Rate(ctx context.Context, from, to string) (decimal.Decimal, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return decimal.Zero, "", ErrUnavailable
	}
	rate, ok := s.rates[from+"->"+to]
	if !ok {
		return decimal.Zero, "", ErrUnavailable
	}
	return rate, "memory", nil
}

// Store keeps rate rows in a slice; good enough for the handful of
// pairs a test or a dev session touches.
type Store struct {
	mu     sync.Mutex
	rows   []core.ExchangeRate
	nextID int64

	// FailWrites makes SaveRate error, to exercise the swallowed
	// cache-write failure path.
	FailWrites bool
}

var _ rates.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) GetRate(ctx context.Context, from, to string, on core.Date) (*core.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		r := s.rows[i]
		if r.From == from && r.To == to && r.Date.SameDay(on) {
			row := r
			return &row, nil
		}
	}
	return nil, nil
}

func (s *Store) LatestRate(ctx context.Context, from, to string) (*core.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *core.ExchangeRate
	for i := range s.rows {
		r := s.rows[i]
		if r.From != from || r.To != to {
			continue
		}
		if latest == nil || r.Date.AfterDay(latest.Date) {
			row := r
			latest = &row
		}
	}
	return latest, nil
}

func (s *Store) SaveRate(ctx context.Context, rate core.ExchangeRate) error {
	if s.FailWrites {
		return errors.New("store write refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		r := s.rows[i]
		if r.From == rate.From && r.To == rate.To && r.Date.SameDay(rate.Date) {
			rate.ID = r.ID
			s.rows[i] = rate
			return nil
		}
	}
	rate.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, rate)
	return nil
}

func (s *Store) PruneRates(ctx context.Context, olderThan core.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	var removed int64
	for _, r := range s.rows {
		if r.Date.BeforeDay(olderThan) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}

// Rows returns a copy of the stored rows, for assertions.
func (s *Store) Rows() []core.ExchangeRate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExchangeRate, len(s.rows))
	copy(out, s.rows)
	return out
}
