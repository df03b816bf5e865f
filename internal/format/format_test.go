package format

import (
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{200.5, "$200.50"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-42.1, "-$42.10"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		if got := Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCurrency_RoundsOnlyAtFormatTime(t *testing.T) {
	t.Parallel()
	// Three thirds summed at full precision give 1.00; rounding each first gives 0.99.
	sum := 0.0
	for i := 0; i < 3; i++ {
		sum += 1.0 / 3.0
	}
	if got := Currency(sum); got != "$1.00" {
		t.Errorf("Currency(sum) = %q, want $1.00", got)
	}
}

func TestOptionalCurrency(t *testing.T) {
	t.Parallel()
	zero := 0.0
	if got := OptionalCurrency(&zero, "n/a"); got != "$0.00" {
		t.Errorf("present zero = %q, want $0.00", got)
	}
	if got := OptionalCurrency(nil, "n/a"); got != "n/a" {
		t.Errorf("absent = %q, want n/a", got)
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()
	v := -12.34
	tests := []struct {
		got, want string
	}{
		{Percent(45.2), "+45.2%"},
		{Percent(0), "+0.0%"},
		{OptionalPercent(&v, "-"), "-12.3%"},
		{OptionalPercent(nil, "-"), "-"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"7", "7"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"-1234", "-1,234"},
		{"12a4", "12a4"},
	}
	for _, tt := range tests {
		if got := FormatNumberString(tt.in); got != tt.want {
			t.Errorf("FormatNumberString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := Truncate("Duke University Hospital", 8); got != "Duke Un…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.in); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{300 * time.Millisecond, "<1s"},
		{4400 * time.Millisecond, "4s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.in); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
