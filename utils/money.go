package utils

import (
	"strconv"
	"strings"
)

// FormatSEK formats an amount as a string like "12 500,00 kr".
// Uses space as thousands separator and comma as decimal separator
// (common in Sweden), always with two decimals. Formatting is purely a
// presentation concern: the numeric value is never rounded beyond the
// displayed decimals.
func FormatSEK(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + decimals + " kr"
	b.Grow(len(intPart) + len(intPart)/3 + 7)
	if neg {
		b.WriteString("-")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(' ')
		b.WriteString(intPart[i : i+3])
	}

	b.WriteByte(',')
	b.WriteString(decPart)
	b.WriteString(" kr")
	return b.String()
}
