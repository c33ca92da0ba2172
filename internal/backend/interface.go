package backend

import (
	"context"

	"carteira/internal/core"
	"carteira/internal/rates"
)

// AccountStore persists accounts. Accounts are archived, never
// deleted, so historical transactions keep a valid source.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, includeInactive bool) ([]core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	ArchiveAccount(ctx context.Context, id int64) error
}

// TransactionStore persists transactions and serves filtered listings.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
}

// TagStore persists the tag forest.
type TagStore interface {
	CreateTag(ctx context.Context, t core.Tag) (core.Tag, error)
	GetTag(ctx context.Context, id int64) (core.Tag, error)
	ListTags(ctx context.Context, includeInactive bool) ([]core.Tag, error)
	UpdateTag(ctx context.Context, t core.Tag) error
	ArchiveTag(ctx context.Context, id int64) error
}

// BudgetStore persists budgets.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, includeInactive bool) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
}

// Repository is the full persistence surface the services need. Both
// the SQLite repository and the in-memory one implement it; the
// exchange-rate cache shares the same database.
type Repository interface {
	AccountStore
	TransactionStore
	TagStore
	BudgetStore
	rates.Store
	Close() error
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the repository plus an optional cleanup function.
type Result struct {
	Repo    Repository
	Cleanup CleanupFunc
}

// Factory creates repositories based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType selects the persistence implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
