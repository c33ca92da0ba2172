// Package memory is an in-memory ledger export target for tests and
// the memory data backend. FailUpserts and FailDeletes inject errors
// for retry-path tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carteira/internal/sheets"
)

var errInjected = errors.New("injected export failure")

type Store struct {
	mu   sync.Mutex
	rows map[int64]sheets.ExportRow

	FailUpserts bool
	FailDeletes bool
}

func New() *Store {
	return &Store{rows: make(map[int64]sheets.ExportRow)}
}

// Upsert stores the row keyed by transaction ID and returns a
// synthetic row reference.
func (s *Store) Upsert(_ context.Context, row sheets.ExportRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpserts {
		return "", errInjected
	}
	s.rows[row.ID] = row
	return fmt.Sprintf("mem:%d", row.ID), nil
}

// Delete removes the row for the transaction. Missing rows are not an
// error; a delete can arrive before the first export.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes {
		return errInjected
	}
	delete(s.rows, id)
	return nil
}

// Rows returns a copy of the exported rows.
func (s *Store) Rows() map[int64]sheets.ExportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]sheets.ExportRow, len(s.rows))
	for id, row := range s.rows {
		out[id] = row
	}
	return out
}
