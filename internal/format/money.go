package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency formats an amount in dollars with two decimals and thousands
// separators, e.g. 1234.5 -> "$1,234.50". Rounding happens here and nowhere
// upstream.
func Currency(amount float64) string {
	neg := amount < 0
	s := fmt.Sprintf("%.2f", math.Abs(amount))
	whole, frac, _ := strings.Cut(s, ".")
	out := "$" + FormatNumberString(whole) + "." + frac
	if neg && out != "$0.00" {
		return "-" + out
	}
	return out
}

// OptionalCurrency formats v when present and returns absent otherwise.
// A present zero renders as "$0.00".
func OptionalCurrency(v *float64, absent string) string {
	if v == nil {
		return absent
	}
	return Currency(*v)
}

// Percent formats a signed percentage with one decimal, e.g. "+45.2%".
func Percent(p float64) string {
	return fmt.Sprintf("%+.1f%%", p)
}

// OptionalPercent formats p when present and returns absent otherwise.
func OptionalPercent(p *float64, absent string) string {
	if p == nil {
		return absent
	}
	return Percent(*p)
}

// FormatNumberString inserts thousands separators into a string of digits.
// Non-digit input is returned unchanged.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return sign + s
		}
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(n + n/3)
	b.WriteString(sign)
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
