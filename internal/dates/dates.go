package dates

import (
	"math"
	"strings"
	"time"
)

// Exports arrive with inconsistent date formatting depending on which tool
// produced them; try layouts in order until one sticks.
var layouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

// Parse parses a date string in any accepted layout, normalized to local
// midnight. Returns ok=false for empty or unrecognized input.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to local midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the calendar-day difference to-from. Both arguments
// are truncated first, so intra-day times never shift the count; rounding
// absorbs DST-shortened or -lengthened days.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(Day(to).Sub(Day(from)).Hours() / 24))
}
