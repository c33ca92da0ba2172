// Package memory is an in-memory repository with the same surface as
// the SQLite one. It backs the memory data backend and the service and
// handler tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carteira/internal/core"
)

type Repository struct {
	mu sync.RWMutex

	accounts     map[int64]core.Account
	transactions map[int64]core.Transaction
	tags         map[int64]core.Tag
	budgets      map[int64]core.Budget
	rates        map[string]core.ExchangeRate // keyed from|to|date

	nextID int64
}

func NewRepository() *Repository {
	return &Repository{
		accounts:     make(map[int64]core.Account),
		transactions: make(map[int64]core.Transaction),
		tags:         make(map[int64]core.Tag),
		budgets:      make(map[int64]core.Budget),
		rates:        make(map[string]core.ExchangeRate),
	}
}

func (r *Repository) Close() error { return nil }

func (r *Repository) id() int64 {
	r.nextID++
	return r.nextID
}

// --- accounts ---

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	a.Active = true
	r.accounts[a.ID] = a
	return a, nil
}

func (r *Repository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context, includeInactive bool) ([]core.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Account
	for _, a := range r.accounts {
		if a.Active || includeInactive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return fmt.Errorf("account %d: %w", a.ID, core.ErrNotFound)
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *Repository) ArchiveAccount(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	a.Active = false
	r.accounts[id] = a
	return nil
}

// --- transactions ---

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	t.CreatedAt = time.Now().UTC()
	r.transactions[t.ID] = t
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Transaction
	for _, t := range r.transactions {
		if !matches(t, f) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.SameDay(b.Date) {
			return a.Date.BeforeDay(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func matches(t core.Transaction, f core.TransactionFilter) bool {
	if f.AccountID != nil {
		touchesAccount := t.AccountID == *f.AccountID ||
			(t.Type == core.Transfer && t.DestinationID != nil && *t.DestinationID == *f.AccountID)
		if !touchesAccount {
			return false
		}
	}
	if f.TagID != nil && (t.TagID == nil || *t.TagID != *f.TagID) {
		return false
	}
	if f.From != nil && t.Date.BeforeDay(*f.From) {
		return false
	}
	if f.To != nil && t.Date.AfterDay(*f.To) {
		return false
	}
	return true
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.transactions[t.ID]
	if !ok {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	t.CreatedAt = existing.CreatedAt
	r.transactions[t.ID] = t
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	delete(r.transactions, id)
	return nil
}

// --- tags ---

func (r *Repository) CreateTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	t.Active = true
	r.tags[t.ID] = t
	return t, nil
}

func (r *Repository) GetTag(ctx context.Context, id int64) (core.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tags[id]
	if !ok {
		return core.Tag{}, fmt.Errorf("tag %d: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (r *Repository) ListTags(ctx context.Context, includeInactive bool) ([]core.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Tag
	for _, t := range r.tags {
		if t.Active || includeInactive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) UpdateTag(ctx context.Context, t core.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[t.ID]; !ok {
		return fmt.Errorf("tag %d: %w", t.ID, core.ErrNotFound)
	}
	r.tags[t.ID] = t
	return nil
}

func (r *Repository) ArchiveTag(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return fmt.Errorf("tag %d: %w", id, core.ErrNotFound)
	}
	t.Active = false
	r.tags[id] = t
	return nil
}

// --- budgets ---

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id()
	b.Active = true
	r.budgets[b.ID] = b
	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, includeInactive bool) ([]core.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Budget
	for _, b := range r.budgets {
		if b.Active || includeInactive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[b.ID]; !ok {
		return fmt.Errorf("budget %d: %w", b.ID, core.ErrNotFound)
	}
	r.budgets[b.ID] = b
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[id]; !ok {
		return fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	delete(r.budgets, id)
	return nil
}

// --- exchange rates ---

func rateKey(from, to string, on core.Date) string {
	return from + "|" + to + "|" + on.String()
}

func (r *Repository) GetRate(ctx context.Context, from, to string, on core.Date) (*core.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	er, ok := r.rates[rateKey(from, to, on)]
	if !ok {
		return nil, nil
	}
	return &er, nil
}

func (r *Repository) LatestRate(ctx context.Context, from, to string) (*core.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *core.ExchangeRate
	for _, er := range r.rates {
		if er.From != from || er.To != to {
			continue
		}
		if latest == nil || latest.Date.BeforeDay(er.Date) {
			row := er
			latest = &row
		}
	}
	return latest, nil
}

func (r *Repository) SaveRate(ctx context.Context, rate core.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate.CreatedAt = time.Now().UTC()
	r.rates[rateKey(rate.From, rate.To, rate.Date)] = rate
	return nil
}

func (r *Repository) PruneRates(ctx context.Context, olderThan core.Date) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, er := range r.rates {
		if er.Date.BeforeDay(olderThan) {
			delete(r.rates, key)
			n++
		}
	}
	return n, nil
}
