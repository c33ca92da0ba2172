package google

import (
	"fmt"
	"strconv"
	"strings"

	ports "carteira/internal/sheets"
)

// exportValues flattens a row into the A:I column layout:
// ID, Date, Description, Type, Account, Amount, Currency, Tag, Notes.
func exportValues(row ports.ExportRow) []any {
	return []any{
		row.ID,
		row.Date.String(),
		row.Description,
		string(row.Type),
		row.Account,
		formatUnits(row.Amount.Cents),
		row.Currency,
		row.Tag,
		row.Notes,
	}
}

// formatUnits renders cents as a major-unit decimal string, e.g.
// 123456 -> "1234.56". String form keeps the sheet locale-independent.
func formatUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// yearPrefixedName returns "<year> <base>" unless base already starts
// with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
