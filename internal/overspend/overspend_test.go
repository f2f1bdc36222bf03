package overspend

import "testing"

func TestProjectZeroedWhenIneligible(t *testing.T) {
	if got := Project(5000, 0, 100, 10, "7-day").Score; got != 0 {
		t.Fatalf("zero budget: score = %v, want 0", got)
	}
	if got := Project(5000, -1, 100, 10, "7-day").Score; got != 0 {
		t.Fatalf("negative budget: score = %v, want 0", got)
	}
	if got := Project(5000, 1000, 100, -1, "7-day").Score; got != 0 {
		t.Fatalf("ended flight: score = %v, want 0", got)
	}
}

func TestProjectBaseScoreBands(t *testing.T) {
	cases := []struct {
		spend, rate float64
		daysLeft    int
		want        float64
	}{
		{900, 10, 5, 10},  // projected 950, no overspend
		{990, 10, 5, 8},   // projected 1040, 4% over
		{1040, 10, 5, 6},  // projected 1090, 9% over
		{1140, 10, 5, 3},  // projected 1190, 19% over
		{1400, 10, 5, 0},  // projected 1450, 45% over
	}
	for _, c := range cases {
		p := Project(c.spend, 1000, c.rate, c.daysLeft, "7-day")
		if p.Score != c.want {
			t.Fatalf("spend %v: score = %v, want %v", c.spend, p.Score, c.want)
		}
	}
}

func TestProjectOverspendAmount(t *testing.T) {
	p := Project(500, 1000, 100, 10, "7-day")
	if p.ProjectedTotal != 1500 {
		t.Fatalf("ProjectedTotal = %v, want 1500", p.ProjectedTotal)
	}
	if p.ProjectedOverspend != 500 {
		t.Fatalf("ProjectedOverspend = %v, want 500", p.ProjectedOverspend)
	}
	if p.Score != 0 {
		t.Fatalf("50%% over: score = %v, want 0", p.Score)
	}
}

func TestProjectConfidenceMultipliers(t *testing.T) {
	cases := []struct {
		confidence string
		want       float64
	}{
		{"7-day", 10},
		{"3-day", 8},
		{"1-day", 6},
		{"overall-average", 9},
		{"7-day-capped", 7},   // 10 * 1.0 * 0.7
		{"3-day-capped", 5.6}, // 10 * 0.8 * 0.7
		{"made-up-tag", 0},
		{"", 0},
	}
	for _, c := range cases {
		// No projected overspend: base score 10, isolated multiplier.
		p := Project(100, 1000, 1, 5, c.confidence)
		if p.Score != c.want {
			t.Fatalf("confidence %q: score = %v, want %v", c.confidence, p.Score, c.want)
		}
	}
}
