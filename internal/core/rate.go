package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one row of the day-granularity persistent rate cache:
// multiplying an amount in From by Rate yields the amount in To. One
// logical row exists per (From, To, Date) triple; Source records
// provenance.
type ExchangeRate struct {
	ID        int64
	From      string
	To        string
	Rate      decimal.Decimal
	Date      Date
	Source    string
	CreatedAt time.Time
}

func (r ExchangeRate) Validate() error {
	if !ValidCurrency(r.From) || !ValidCurrency(r.To) {
		return ErrInvalidCurrency
	}
	if r.Rate.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return r.Date.Validate()
}
