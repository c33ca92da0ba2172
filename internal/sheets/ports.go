package sheets

import (
	"context"

	"carteira/internal/core"
)

// ExportRow is one ledger line mirrored to the export spreadsheet,
// already flattened: account and tag are display names, not IDs.
type ExportRow struct {
	ID          int64
	Date        core.Date
	Description string
	Type        core.TransactionType
	Account     string
	Amount      core.Money
	Currency    string
	Tag         string
	Notes       string
}

// Ports for outbound adapters.
type (
	// LedgerWriter inserts or updates one exported row, keyed by the
	// transaction ID in the first column.
	LedgerWriter interface {
		Upsert(ctx context.Context, row ExportRow) (rowRef string, err error)
	}

	// LedgerDeleter removes the exported row for a deleted transaction.
	LedgerDeleter interface {
		Delete(ctx context.Context, id int64) error
	}
)
