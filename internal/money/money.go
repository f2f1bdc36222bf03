// Package money parses the currency and grouped-integer strings found in
// contract exports ("$3,000.50", "600,000"). Parsing goes through decimal so
// malformed input surfaces as ok=false instead of NaN leaking into scores.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency parses an amount that may carry "$" and "," formatting.
// Plain numeric input also works. Returns ok=false when the field is empty
// or not a number.
func ParseCurrency(s string) (float64, bool) {
	s = clean(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseCount parses an integer count that may use comma grouping
// ("600,000"). Fractional input is rejected; counts are whole numbers.
func ParseCount(s string) (float64, bool) {
	s = clean(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseFloat parses a plain numeric field from a delivery row, defaulting to
// 0 when missing or unparseable (delivery metrics degrade to zero, they do
// not skip the campaign).
func ParseFloat(s string) float64 {
	s = clean(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
