package google

import (
	"testing"
	"time"

	"carteira/internal/core"
	ports "carteira/internal/sheets"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain base", "Ledger", 2024, "2024 Ledger"},
		{"already prefixed", "2023 Ledger", 2024, "2023 Ledger"},
		{"empty base", "", 2024, ""},
		{"short base", "L", 2024, "2024 L"},
		{"four digit word", "9999 Ledger", 2024, "2024 9999 Ledger"},
		{"whitespace trimmed", "  Ledger  ", 2024, "2024 Ledger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{123456, "1234.56"},
		{-2550, "-25.50"},
	}

	for _, tt := range tests {
		if got := formatUnits(tt.cents); got != tt.want {
			t.Errorf("formatUnits(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestExportValuesLayout(t *testing.T) {
	tag := "Food"
	row := ports.ExportRow{
		ID:          42,
		Date:        core.NewDate(2024, 6, 15),
		Description: "groceries",
		Type:        core.Expense,
		Account:     "Nubank",
		Amount:      core.Money{Cents: 15099},
		Currency:    "BRL",
		Tag:         tag,
		Notes:       "weekly",
	}

	values := exportValues(row)
	if len(values) != 9 {
		t.Fatalf("got %d columns, want 9 (A:I)", len(values))
	}
	if values[0] != int64(42) {
		t.Errorf("column A = %v, want the transaction ID", values[0])
	}
	if values[1] != "2024-06-15" {
		t.Errorf("column B = %v, want ISO date", values[1])
	}
	if values[5] != "150.99" {
		t.Errorf("column F = %v, want major-unit amount", values[5])
	}
	if values[6] != "BRL" {
		t.Errorf("column G = %v, want currency", values[6])
	}
}

func TestRowCacheExpiration(t *testing.T) {
	c := &Client{
		cacheValidDuration: 100 * time.Millisecond, // Short TTL for testing
	}

	// Initial state: cache should be expired
	c.mu.Lock()
	isValid := time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if isValid {
		t.Error("cache should start expired")
	}

	// Manually set cache to valid state
	c.mu.Lock()
	c.cachedRowCount = 10
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	c.mu.Lock()
	isValid = time.Now().Before(c.cacheExpiresAt)
	rowCount := c.cachedRowCount
	c.mu.Unlock()
	if !isValid {
		t.Error("cache should be valid immediately after update")
	}
	if rowCount != 10 {
		t.Errorf("cached row count should be 10, got %d", rowCount)
	}

	// Wait for cache to expire
	time.Sleep(150 * time.Millisecond)

	c.mu.Lock()
	isValid = time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if isValid {
		t.Error("cache should be expired after TTL")
	}
}

func TestInvalidateRowCache(t *testing.T) {
	c := &Client{
		cacheValidDuration: 10 * time.Minute,
	}

	c.mu.Lock()
	c.cachedRowCount = 42
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	c.mu.Lock()
	isValid := time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if !isValid {
		t.Error("cache should be valid before invalidation")
	}

	c.InvalidateRowCache()

	c.mu.Lock()
	isValid = time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if isValid {
		t.Error("cache should be expired after invalidation")
	}
}
