package core

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time component. Transaction dates are
// parsed in the local location, never UTC: a bare "2024-03-01" parsed
// as UTC shifts a day backwards for users west of Greenwich.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month and day in the local location.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses YYYY-MM-DD as a local calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// BeforeDay reports whether d falls on an earlier calendar day than
// other, ignoring any sub-day component.
func (d Date) BeforeDay(other Date) bool {
	return d.Year() < other.Year() ||
		(d.Year() == other.Year() && d.YearDay() < other.YearDay())
}

// AfterDay reports whether d falls on a later calendar day than other.
func (d Date) AfterDay(other Date) bool {
	return other.BeforeDay(d)
}

// SameDay reports whether two dates name the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

// MonthEnd returns the last day of d's month.
func (d Date) MonthEnd() Date {
	return Date{Time: time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, d.Location())}
}

// MonthIndex returns a comparable ordinal for d's calendar month.
func (d Date) MonthIndex() int {
	return d.Year()*12 + int(d.Time.Month()) - 1
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}
