package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: "12.345", want: 1234},
		{in: "12.346", want: 1235},
		{in: "100", want: 10000},
		{in: ".5", want: 50},
		{in: "-3", wantErr: true},
		{in: "+3", wantErr: true},
		{in: "0", wantErr: true},
		{in: "", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyConvertedBy(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		rate string
		want int64
	}{
		{name: "identity", in: 1234, rate: "1", want: 1234},
		{name: "doubling", in: 1000, rate: "2", want: 2000},
		{name: "brl to usd", in: 10000, rate: "0.1852", want: 1852},
		{name: "rounds half up", in: 999, rate: "0.5", want: 500},
		{name: "negative amount", in: -1000, rate: "1.5", want: -1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.rate)
			if err != nil {
				t.Fatalf("bad rate literal: %v", err)
			}
			got := Money{Cents: tt.in}.ConvertedBy(rate)
			if got.Cents != tt.want {
				t.Errorf("ConvertedBy(%s) = %d, want %d", tt.rate, got.Cents, tt.want)
			}
		})
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %q, want 2024-02-29", d.String())
	}
	if got := d.MonthEnd().String(); got != "2024-02-29" {
		t.Errorf("MonthEnd() = %q, want 2024-02-29", got)
	}
	if got := NewDate(2024, 1, 15).MonthEnd().String(); got != "2024-01-31" {
		t.Errorf("MonthEnd() = %q, want 2024-01-31", got)
	}

	day1 := NewDate(2024, 3, 1)
	day2 := NewDate(2024, 3, 2)
	if !day1.BeforeDay(day2) || day2.BeforeDay(day1) {
		t.Errorf("BeforeDay ordering wrong for %s / %s", day1, day2)
	}
	if !day1.SameDay(NewDate(2024, 3, 1)) {
		t.Errorf("SameDay() = false for equal dates")
	}
	if got := day1.AddDays(-1).String(); got != "2024-02-29" {
		t.Errorf("AddDays(-1) = %q, want 2024-02-29", got)
	}

	if _, err := ParseDate("03/10/2024"); err == nil {
		t.Errorf("ParseDate accepted non-ISO input")
	}
}
