// Package overspend scores the risk of a campaign blowing past its
// contracted budget by flight end, projecting from the current spend burn
// rate.
package overspend

import (
	"github.com/angelcm/campaign-pulse-go/internal/burnrate"
	"github.com/angelcm/campaign-pulse-go/internal/models"
)

// Projection is the overspend outlook for one campaign.
type Projection struct {
	Score              float64 `json:"score"`
	ProjectedTotal     float64 `json:"projected_total"`
	ProjectedOverspend float64 `json:"projected_overspend"`
	OverspendPct       float64 `json:"overspend_pct"`
}

// Base-tag multipliers. An unknown tag zeroes the score outright: a
// projection with no stated confidence is not worth acting on.
var confidenceMultiplier = map[string]float64{
	models.ConfidenceSevenDay:       1.0,
	models.ConfidenceThreeDay:       0.8,
	models.ConfidenceOneDay:         0.6,
	models.ConfidenceOverallAverage: 0.9,
}

const cappedPenalty = 0.7

// Project scores overspend risk on a 0-10 scale. The score is 0 when the
// budget is unknown or the flight has already ended (daysLeft < 0),
// whatever the spend and rate.
func Project(currentSpend, budget, dailyRate float64, daysLeft int, confidence string) Projection {
	if budget <= 0 || daysLeft < 0 {
		return Projection{}
	}

	projected := currentSpend + dailyRate*float64(daysLeft)
	over := projected - budget
	if over < 0 {
		over = 0
	}
	pct := over / budget * 100

	score := baseScore(pct) * multiplier(confidence)
	return Projection{
		Score:              round1(score),
		ProjectedTotal:     projected,
		ProjectedOverspend: over,
		OverspendPct:       pct,
	}
}

func baseScore(overspendPct float64) float64 {
	switch {
	case overspendPct == 0:
		return 10
	case overspendPct <= 5:
		return 8
	case overspendPct <= 10:
		return 6
	case overspendPct <= 20:
		return 3
	default:
		return 0
	}
}

func multiplier(confidence string) float64 {
	base := confidence
	penalty := 1.0
	if burnrate.IsCapped(confidence) {
		base = confidence[:len(confidence)-len(models.CappedSuffix)]
		penalty = cappedPenalty
	}
	m, ok := confidenceMultiplier[base]
	if !ok {
		return 0
	}
	return m * penalty
}

func round1(f float64) float64 { return float64(int64(f*10+0.5)) / 10 }
