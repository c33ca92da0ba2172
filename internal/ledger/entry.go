// Package ledger computes balances, running-balance sequences, net
// worth and budget rollups from already-fetched rows. Everything here
// is a pure recomputation over local accumulators; the only outside
// call is currency conversion through the Converter port.
package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"carteira/internal/core"
)

// Converter translates an amount between currencies as of a calendar
// date. It never fails; degraded reports that an identity fallback was
// used and the number should not be trusted.
type Converter interface {
	Convert(ctx context.Context, amount core.Money, from, to string, on core.Date) (converted core.Money, degraded bool)
}

// Entry is a transaction working row with its currency resolved once,
// at load time, from the source account. The ledger never re-derives
// currency through account lookups.
type Entry struct {
	core.Transaction
	Currency string
}

// Window bounds a report. A nil side is open.
type Window struct {
	From *core.Date
	To   *core.Date
}

var errInvalidWindow = errors.New("window end date precedes start date")

func (w Window) Validate() error {
	if w.From != nil && w.To != nil && w.To.BeforeDay(*w.From) {
		return errInvalidWindow
	}
	return nil
}

// Contains reports whether d falls inside the window, bounds inclusive.
func (w Window) Contains(d core.Date) bool {
	if w.From != nil && d.BeforeDay(*w.From) {
		return false
	}
	if w.To != nil && d.AfterDay(*w.To) {
		return false
	}
	return true
}

// sortable exposes the (date, creation time) ordering key. Entry
// implements it; ProgressiveEntry inherits it through embedding, so
// the named sorts work on raw and balance-bearing rows alike.
type sortable interface {
	sortKey() (core.Date, time.Time)
}

func (e Entry) sortKey() (core.Date, time.Time) {
	return e.Date, e.CreatedAt
}

// SortChronological orders rows by (date ascending, creation time
// ascending). This is the authoritative order for running-balance
// computation: it decides which transaction owns which intermediate
// balance.
func SortChronological[E sortable](rows []E) {
	sort.SliceStable(rows, func(i, j int) bool {
		ad, at := rows[i].sortKey()
		bd, bt := rows[j].sortKey()
		if !ad.SameDay(bd) {
			return ad.BeforeDay(bd)
		}
		return at.Before(bt)
	})
}

// SortDisplay orders rows newest first: (date descending, creation
// time descending). Rendering order only; never feed this into a
// running-balance fold.
func SortDisplay[E sortable](rows []E) {
	sort.SliceStable(rows, func(i, j int) bool {
		ad, at := rows[i].sortKey()
		bd, bt := rows[j].sortKey()
		if !ad.SameDay(bd) {
			return bd.BeforeDay(ad)
		}
		return bt.Before(at)
	})
}
