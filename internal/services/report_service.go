package services

import (
	"context"
	"fmt"

	"carteira/internal/backend"
	"carteira/internal/core"
	"carteira/internal/ledger"
)

// ReportService answers the read-side questions: statements with
// running balances, net worth, its monthly evolution and budget
// rollups. Rows are fetched once per report and the source currency is
// resolved from the account at load time.
type ReportService struct {
	repo        backend.Repository
	conv        ledger.Converter
	refCurrency string
}

func NewReportService(repo backend.Repository, conv ledger.Converter, refCurrency string) *ReportService {
	return &ReportService{
		repo:        repo,
		conv:        conv,
		refCurrency: refCurrency,
	}
}

// ReferenceCurrency returns the currency totals are reported in.
func (s *ReportService) ReferenceCurrency() string { return s.refCurrency }

// loadEntries fetches matching transactions and attaches the source
// account's currency to each. Transactions on unknown accounts fall
// back to the reference currency rather than being dropped.
func (s *ReportService) loadEntries(ctx context.Context, f core.TransactionFilter) ([]ledger.Entry, map[int64]core.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx, true)
	if err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	byID := make(map[int64]core.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	txs, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}

	entries := make([]ledger.Entry, len(txs))
	for i, t := range txs {
		currency := s.refCurrency
		if acct, ok := byID[t.AccountID]; ok {
			currency = acct.Currency
		}
		entries[i] = ledger.Entry{Transaction: t, Currency: currency}
	}
	return entries, byID, nil
}

// Statement is a running-balance listing, newest entry first.
type Statement struct {
	Entries  []ledger.ProgressiveEntry
	Currency string
	Degraded bool
}

// AccountStatement computes the running balance of one account over
// the window and returns the rows in display order.
func (s *ReportService) AccountStatement(ctx context.Context, accountID int64, window ledger.Window) (Statement, error) {
	acct, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}

	// The balance fold needs every transaction touching the account up
	// to the window's end, not only the windowed ones.
	entries, _, err := s.loadEntries(ctx, core.TransactionFilter{AccountID: &accountID, To: window.To})
	if err != nil {
		return Statement{}, err
	}

	rows, degraded, err := ledger.ProgressiveBalances(ctx, s.conv, acct, entries, window)
	if err != nil {
		return Statement{}, err
	}
	ledger.SortDisplay(rows)
	return Statement{Entries: rows, Currency: acct.Currency, Degraded: degraded}, nil
}

// CombinedStatement computes the all-accounts running total in the
// reference currency, rows in display order. Transfers appear but do
// not move the total.
func (s *ReportService) CombinedStatement(ctx context.Context, window ledger.Window) (Statement, error) {
	entries, byID, err := s.loadEntries(ctx, core.TransactionFilter{To: window.To})
	if err != nil {
		return Statement{}, err
	}

	accounts := make([]core.Account, 0, len(byID))
	for _, a := range byID {
		accounts = append(accounts, a)
	}

	rows, degraded, err := ledger.CombinedProgressiveBalances(ctx, s.conv, accounts, s.refCurrency, entries, window)
	if err != nil {
		return Statement{}, err
	}
	ledger.SortDisplay(rows)
	return Statement{Entries: rows, Currency: s.refCurrency, Degraded: degraded}, nil
}

// NetWorth recomputes the live net worth across active accounts.
func (s *ReportService) NetWorth(ctx context.Context) (ledger.NetWorthResult, error) {
	entries, byID, err := s.loadEntries(ctx, core.TransactionFilter{})
	if err != nil {
		return ledger.NetWorthResult{}, err
	}
	accounts := make([]core.Account, 0, len(byID))
	for _, a := range byID {
		accounts = append(accounts, a)
	}
	return ledger.NetWorth(ctx, s.conv, accounts, entries, s.refCurrency), nil
}

// NetWorthSeries returns the month-end evolution for the last months
// months, oldest first.
func (s *ReportService) NetWorthSeries(ctx context.Context, months int) ([]ledger.SeriesPoint, bool, error) {
	entries, byID, err := s.loadEntries(ctx, core.TransactionFilter{})
	if err != nil {
		return nil, false, err
	}
	accounts := make([]core.Account, 0, len(byID))
	for _, a := range byID {
		accounts = append(accounts, a)
	}
	return ledger.NetWorthSeries(ctx, s.conv, accounts, entries, s.refCurrency, months)
}

// BudgetReport evaluates active budgets against the window's expenses,
// grouped by root tag.
func (s *ReportService) BudgetReport(ctx context.Context, window ledger.Window) (ledger.RollupReport, error) {
	budgets, err := s.repo.ListBudgets(ctx, false)
	if err != nil {
		return ledger.RollupReport{}, fmt.Errorf("load budgets: %w", err)
	}
	tags, err := s.repo.ListTags(ctx, true)
	if err != nil {
		return ledger.RollupReport{}, fmt.Errorf("load tags: %w", err)
	}
	entries, _, err := s.loadEntries(ctx, core.TransactionFilter{From: window.From, To: window.To})
	if err != nil {
		return ledger.RollupReport{}, err
	}
	return ledger.Rollup(budgets, entries, tags, window)
}
