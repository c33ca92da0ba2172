package ledger

import (
	"context"
	"sync"
	"time"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// fakeConverter serves scripted pair rates; unknown pairs degrade to
// identity, like the real conversion service's last resort.
type fakeConverter struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	calls int
}

func newFakeConverter() *fakeConverter {
	return &fakeConverter{rates: make(map[string]decimal.Decimal)}
}

func (f *fakeConverter) set(from, to, rate string) {
	f.rates[from+"->"+to] = decimal.RequireFromString(rate)
}

func (f *fakeConverter) Convert(ctx context.Context, amount core.Money, from, to string, on core.Date) (core.Money, bool) {
	if from == to {
		return amount, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	rate, ok := f.rates[from+"->"+to]
	if !ok {
		return amount, true
	}
	return amount.ConvertedBy(rate), false
}

var txSeq int64

func tx(accountID int64, typ core.TransactionType, cents int64, date core.Date, opts ...func(*core.Transaction)) core.Transaction {
	txSeq++
	t := core.Transaction{
		ID:          txSeq,
		Description: "tx",
		Amount:      core.Money{Cents: cents},
		Type:        typ,
		AccountID:   accountID,
		Date:        date,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(txSeq) * time.Second),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func withDest(id int64) func(*core.Transaction) {
	return func(t *core.Transaction) { t.DestinationID = &id }
}

func withTag(id int64) func(*core.Transaction) {
	return func(t *core.Transaction) { t.TagID = &id }
}

func withCreatedAt(at time.Time) func(*core.Transaction) {
	return func(t *core.Transaction) { t.CreatedAt = at }
}

func entries(currency string, txs ...core.Transaction) []Entry {
	out := make([]Entry, len(txs))
	for i, t := range txs {
		out[i] = Entry{Transaction: t, Currency: currency}
	}
	return out
}

func datePtr(d core.Date) *core.Date { return &d }
