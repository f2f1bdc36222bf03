package dates

import (
	"testing"
	"time"
)

func TestParseLayouts(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"2024-03-05",
		" 2024-03-05 ",
		"2024-03-05T14:30:00",
		"3/5/2024",
		"03/05/2024",
		"2024/03/05",
	}
	for _, in := range cases {
		got, ok := Parse(in)
		if !ok {
			t.Fatalf("Parse(%q) failed", in)
		}
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Fatalf("Parse(%q) = %v, want same calendar day as %v", in, got, want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Fatalf("Parse(%q) not normalized to midnight: %v", in, got)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "Totals", "not-a-date", "13/45/2024"} {
		if _, ok := Parse(in); ok {
			t.Fatalf("Parse(%q) unexpectedly succeeded", in)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 1, 30, 0, 1, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 29 {
		t.Fatalf("DaysBetween = %d, want 29", got)
	}
	if got := DaysBetween(b, a); got != -29 {
		t.Fatalf("reverse DaysBetween = %d, want -29", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Fatalf("same-day DaysBetween = %d, want 0", got)
	}
}
