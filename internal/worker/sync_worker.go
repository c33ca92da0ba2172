// Package worker mirrors locally persisted transactions to the export
// spreadsheet, driven by AMQP messages with a polling fallback.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/sheets"
	"carteira/internal/storage"
)

// SyncWorker handles synchronization of transactions from SQLite to
// the export backend.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"deleted", msg.Deleted)

	if msg.Deleted {
		return w.handleDelete(ctx, msg.ID)
	}

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and processing; nothing to export.
		slog.WarnContext(ctx, "Transaction vanished before export", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncTransaction(ctx, t)
}

func (w *SyncWorker) handleDelete(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping export deletion", "id", id)
		return nil
	}
	if err := w.deleter.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exported row: %w", err)
	}
	slog.InfoContext(ctx, "Deleted exported row", "id", id)
	return nil
}

// ProcessPendingTransactions exports rows the AMQP path missed. This
// is a backup mechanism in case messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog at worker startup with a
// larger batch, recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, batch int) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, batch)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, t core.Transaction) error {
	row, err := w.exportRow(ctx, t)
	if err != nil {
		return err
	}

	ref, err := w.writer.Upsert(ctx, row)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("upsert exported row: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, t.ID); err != nil {
		// The export itself worked; the flag catches up on the next pass.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", t.ID,
		"export_ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}

// exportRow flattens a transaction for the spreadsheet: account and
// tag become display names, the currency comes from the source
// account.
func (w *SyncWorker) exportRow(ctx context.Context, t core.Transaction) (sheets.ExportRow, error) {
	row := sheets.ExportRow{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Type:        t.Type,
		Amount:      t.Amount,
		Notes:       t.Notes,
	}

	acct, err := w.storage.GetAccount(ctx, t.AccountID)
	if err != nil {
		return sheets.ExportRow{}, fmt.Errorf("resolve account %d: %w", t.AccountID, err)
	}
	row.Account = acct.Name
	row.Currency = acct.Currency

	if t.TagID != nil {
		tag, err := w.storage.GetTag(ctx, *t.TagID)
		if err != nil {
			// A stale tag must not block the export.
			slog.WarnContext(ctx, "Failed to resolve tag for export", "tag_id", *t.TagID, "error", err)
		} else {
			row.Tag = tag.Name
		}
	}

	return row, nil
}
