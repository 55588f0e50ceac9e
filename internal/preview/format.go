package preview

import (
	"strconv"
	"strings"
)

// FormatNumber abbreviates counts: 1500 -> "1.5K", 2500000 -> "2.5M", 999 -> "999".
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return abbreviate(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return abbreviate(float64(n)/1_000) + "K"
	}
	return strconv.Itoa(n)
}

func abbreviate(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
