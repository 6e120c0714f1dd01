// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney formats a dollar amount, scaling precision to magnitude.
// e.g., 1234567.8 -> "$1,234,568", 12.345 -> "$12.35"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	if v >= 1000 {
		return "$" + FormatNumber(int64(math.Round(v)))
	}
	if v >= 100 {
		return fmt.Sprintf("$%.0f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatMonths formats a (possibly fractional) month count. NaN means
// the event never happened within the horizon.
func FormatMonths(m float64) string {
	if math.IsNaN(m) {
		return "never"
	}
	if m == math.Trunc(m) {
		return fmt.Sprintf("mo %d", int(m))
	}
	return fmt.Sprintf("mo %.1f", m)
}

// FormatRatio formats a coverage ratio such as DSCR. NaN means no debt
// service, rendered as a dash.
func FormatRatio(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", r)
}

// FormatCount formats a member head-count statistic.
func FormatCount(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
