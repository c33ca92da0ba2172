// Package storage is the SQLite persistence layer: accounts,
// transactions, tags, budgets, the exchange-rate cache and the
// transaction sync queue, all in one database file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- accounts ---

const accountColumns = "id, name, bank, type, currency, initial_balance_cents, active"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	var active int64
	err := row.Scan(&a.ID, &a.Name, &a.Bank, &a.Type, &a.Currency, &a.InitialBalance.Cents, &active)
	a.Active = active != 0
	return a, err
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (name, bank, type, currency, initial_balance_cents, active)
		VALUES (?, ?, ?, ?, ?, 1)`,
		a.Name, a.Bank, string(a.Type), a.Currency, a.InitialBalance.Cents)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	a.Active = true

	slog.InfoContext(ctx, "Account saved to SQLite",
		"id", a.ID, "name", a.Name, "currency", a.Currency)
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]core.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, bank = ?, type = ?, currency = ?, initial_balance_cents = ?, active = ?
		WHERE id = ?`,
		a.Name, a.Bank, string(a.Type), a.Currency, a.InitialBalance.Cents, boolToInt(a.Active), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return affectedOrNotFound(res, "account", a.ID)
}

// ArchiveAccount deactivates the account instead of deleting it, so
// historical transactions keep a valid source.
func (r *SQLiteRepository) ArchiveAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE accounts SET active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("archive account: %w", err)
	}
	return affectedOrNotFound(res, "account", id)
}

// --- transactions ---

const txColumns = "id, description, amount_cents, type, account_id, destination_id, tag_id, date, notes, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var dest, tag sql.NullInt64
	var date string
	err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.AccountID,
		&dest, &tag, &date, &t.Notes, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	if dest.Valid {
		t.DestinationID = &dest.Int64
	}
	if tag.Valid {
		t.TagID = &tag.Int64
	}
	t.Date, err = core.ParseDate(date)
	return t, err
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (description, amount_cents, type, account_id, destination_id, tag_id, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Amount.Cents, string(t.Type), t.AccountID,
		nullableID(t.DestinationID), nullableID(t.TagID), t.Date.String(), t.Notes, t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID, _ = res.LastInsertId()

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"account_id", t.AccountID,
		"date", t.Date.String())
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns matching rows ordered oldest first with
// created_at breaking same-day ties. Transfers into the filtered
// account are included: the destination side moves that balance too.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var where []string
	var args []any
	if f.AccountID != nil {
		where = append(where, "(account_id = ? OR (type = 'transfer' AND destination_id = ?))")
		args = append(args, *f.AccountID, *f.AccountID)
	}
	if f.TagID != nil {
		where = append(where, "tag_id = ?")
		args = append(args, *f.TagID)
	}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}

	query := "SELECT " + txColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction rewrites the row and bumps its version so the sync
// worker re-exports it.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount_cents = ?, type = ?, account_id = ?, destination_id = ?,
		    tag_id = ?, date = ?, notes = ?, synced = 0, sync_error = 0, version = version + 1
		WHERE id = ?`,
		t.Description, t.Amount.Cents, string(t.Type), t.AccountID,
		nullableID(t.DestinationID), nullableID(t.TagID), t.Date.String(), t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return affectedOrNotFound(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return affectedOrNotFound(res, "transaction", id)
}

// --- tags ---

const tagColumns = "id, name, parent_id, color, icon, type, active"

func scanTag(row interface{ Scan(...any) error }) (core.Tag, error) {
	var t core.Tag
	var parent sql.NullInt64
	var active int64
	err := row.Scan(&t.ID, &t.Name, &parent, &t.Color, &t.Icon, &t.Type, &active)
	if parent.Valid {
		t.ParentID = &parent.Int64
	}
	t.Active = active != 0
	return t, err
}

func (r *SQLiteRepository) CreateTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tags (name, parent_id, color, icon, type, active)
		VALUES (?, ?, ?, ?, ?, 1)`,
		t.Name, nullableID(t.ParentID), t.Color, t.Icon, string(t.Type))
	if err != nil {
		return core.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	t.Active = true
	return t, nil
}

func (r *SQLiteRepository) GetTag(ctx context.Context, id int64) (core.Tag, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE id = ?", id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tag{}, fmt.Errorf("tag %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTags(ctx context.Context, includeInactive bool) ([]core.Tag, error) {
	query := "SELECT " + tagColumns + " FROM tags"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []core.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTag(ctx context.Context, t core.Tag) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tags
		SET name = ?, parent_id = ?, color = ?, icon = ?, type = ?, active = ?
		WHERE id = ?`,
		t.Name, nullableID(t.ParentID), t.Color, t.Icon, string(t.Type), boolToInt(t.Active), t.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return affectedOrNotFound(res, "tag", t.ID)
}

// ArchiveTag deactivates the tag. Children are left in place: budget
// grouping treats an inactive parent as a boundary, so subtrees keep
// working.
func (r *SQLiteRepository) ArchiveTag(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tags SET active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("archive tag: %w", err)
	}
	return affectedOrNotFound(res, "tag", id)
}

// --- budgets ---

const budgetColumns = "id, name, amount_cents, tag_id, period, start_date, end_date, active"

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	var start, end string
	var active int64
	err := row.Scan(&b.ID, &b.Name, &b.Amount.Cents, &b.TagID, &b.Period, &start, &end, &active)
	if err != nil {
		return b, err
	}
	b.Active = active != 0
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return b, err
	}
	b.EndDate, err = core.ParseDate(end)
	return b, err
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (name, amount_cents, tag_id, period, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		b.Name, b.Amount.Cents, b.TagID, string(b.Period), b.StartDate.String(), b.EndDate.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID, _ = res.LastInsertId()
	b.Active = true
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, includeInactive bool) ([]core.Budget, error) {
	query := "SELECT " + budgetColumns + " FROM budgets"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET name = ?, amount_cents = ?, tag_id = ?, period = ?, start_date = ?, end_date = ?, active = ?
		WHERE id = ?`,
		b.Name, b.Amount.Cents, b.TagID, string(b.Period), b.StartDate.String(), b.EndDate.String(),
		boolToInt(b.Active), b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return affectedOrNotFound(res, "budget", b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return affectedOrNotFound(res, "budget", id)
}

// --- exchange rates (rates.Store) ---

const rateColumns = "id, from_currency, to_currency, rate, date, source, created_at"

func scanRate(row interface{ Scan(...any) error }) (core.ExchangeRate, error) {
	var er core.ExchangeRate
	var rate, date string
	err := row.Scan(&er.ID, &er.From, &er.To, &rate, &date, &er.Source, &er.CreatedAt)
	if err != nil {
		return er, err
	}
	if er.Rate, err = decimal.NewFromString(rate); err != nil {
		return er, fmt.Errorf("parse stored rate %q: %w", rate, err)
	}
	er.Date, err = core.ParseDate(date)
	return er, err
}

func (r *SQLiteRepository) GetRate(ctx context.Context, from, to string, on core.Date) (*core.ExchangeRate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+rateColumns+` FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ? AND date = ?`,
		from, to, on.String())
	er, err := scanRate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rate: %w", err)
	}
	return &er, nil
}

func (r *SQLiteRepository) LatestRate(ctx context.Context, from, to string) (*core.ExchangeRate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+rateColumns+` FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ?
		ORDER BY date DESC LIMIT 1`,
		from, to)
	er, err := scanRate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest rate: %w", err)
	}
	return &er, nil
}

// SaveRate upserts the (from, to, date) row. Last write wins.
func (r *SQLiteRepository) SaveRate(ctx context.Context, rate core.ExchangeRate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, date, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (from_currency, to_currency, date)
		DO UPDATE SET rate = excluded.rate, source = excluded.source, created_at = excluded.created_at`,
		rate.From, rate.To, rate.Rate.String(), rate.Date.String(), rate.Source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save rate: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PruneRates(ctx context.Context, olderThan core.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM exchange_rates WHERE date < ?", olderThan.String())
	if err != nil {
		return 0, fmt.Errorf("prune rates: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.InfoContext(ctx, "Pruned old exchange rates",
			"deleted", n, "older_than", olderThan.String())
	}
	return n, nil
}

// --- sync queue ---

// PendingSyncTransaction is the minimal payload for a sync queue
// message; the worker fetches the full row when it processes it.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM transactions
		WHERE synced = 0 AND sync_error = 0
		ORDER BY created_at LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_error = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// --- helpers ---

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func affectedOrNotFound(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return nil
}
