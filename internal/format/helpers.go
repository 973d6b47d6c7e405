package format

import (
	"fmt"
	"strings"
	"time"
)

// Bar renders score out of max as a fixed-width bar of the given width.
func Bar(score, max float64, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	n := int(score / max * float64(width))
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

// Date formats t as YYYY-MM-DD, or "-" for nil.
func Date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// Days formats a day count with one decimal, dropping a trailing ".0".
func Days(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// Percent formats v (already scaled to 0-100) with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
