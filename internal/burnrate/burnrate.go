// Package burnrate computes short-window trailing delivery and spend rates.
// Burn rates are a leading indicator: cumulative pacing tells where a
// campaign is, the trailing rate tells where it is heading.
package burnrate

import (
	"sort"
	"strings"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/dates"
	"github.com/angelcm/campaign-pulse-go/internal/models"
	"github.com/angelcm/campaign-pulse-go/internal/money"
)

// Deviation thresholds for the spend anomaly guard: a trailing average this
// far from the campaign-to-date average falls back to the overall average.
const (
	windowDeviationCap = 2.0 // 3- and 7-day windows
	oneDayDeviationCap = 3.0
	hardCapMultiple    = 2.0 // final rate never exceeds this multiple of overall
)

// ImpressionRates computes 1/3/7-day trailing impression rates for one
// campaign. The single most recent day on record is excluded from the
// window: it may be a partial export. requiredDaily may be 0 when the
// impression goal is unknown; percentages degrade to 0.
func ImpressionRates(rows []models.Row, campaign string, requiredDaily float64) models.BurnRateData {
	window := trailingWindow(rows, campaign, models.ColImpressions)

	d := models.BurnRateData{Confidence: confidence(len(window))}
	if n := len(window); n >= 1 {
		d.OneDayRate = window[n-1]
	}
	if n := len(window); n >= 3 {
		d.ThreeDayRate = avg(window[n-3:])
	}
	if n := len(window); n >= 7 {
		d.SevenDayRate = avg(window[n-7:])
	}
	if requiredDaily > 0 {
		d.OneDayPct = d.OneDayRate / requiredDaily * 100
		d.ThreeDayPct = d.ThreeDayRate / requiredDaily * 100
		d.SevenDayPct = d.SevenDayRate / requiredDaily * 100
	}
	return d
}

// SpendRate is the daily spend estimate used for overspend projection.
type SpendRate struct {
	Rate       float64
	Confidence string
}

// SpendRates applies the trailing-window logic to SPEND, with an anomaly
// guard: when the trailing average deviates from the campaign-to-date daily
// average by more than 2x (3/7-day) or 3x (1-day) in either direction, the
// overall average is used instead and the confidence tag gains a "-capped"
// suffix. The final rate is additionally capped at 2x the overall average.
func SpendRates(rows []models.Row, campaign string) SpendRate {
	window := trailingWindow(rows, campaign, models.ColSpend)
	overall := overallDailyAverage(rows, campaign, models.ColSpend)

	rate, conf := bestRate(window)
	if conf == models.ConfidenceNoData {
		if overall > 0 {
			return SpendRate{Rate: overall, Confidence: models.ConfidenceOverallAverage}
		}
		return SpendRate{Rate: 0, Confidence: models.ConfidenceNoData}
	}

	if overall > 0 {
		limit := windowDeviationCap
		if conf == models.ConfidenceOneDay {
			limit = oneDayDeviationCap
		}
		if rate > overall*limit || rate < overall/limit {
			rate = overall
			conf += models.CappedSuffix
		}
		if rate > overall*hardCapMultiple {
			rate = overall * hardCapMultiple
		}
	}
	return SpendRate{Rate: rate, Confidence: conf}
}

// bestRate picks the widest trailing average the window supports: 7-day,
// then 3-day, then the most recent single day in the window.
func bestRate(window []float64) (float64, string) {
	switch n := len(window); {
	case n >= 7:
		return avg(window[n-7:]), models.ConfidenceSevenDay
	case n >= 3:
		return avg(window[n-3:]), models.ConfidenceThreeDay
	case n >= 1:
		return window[n-1], models.ConfidenceOneDay
	default:
		return 0, models.ConfidenceNoData
	}
}

func confidence(daysAvailable int) string {
	switch {
	case daysAvailable >= 7:
		return models.ConfidenceSevenDay
	case daysAvailable >= 3:
		return models.ConfidenceThreeDay
	case daysAvailable >= 1:
		return models.ConfidenceOneDay
	default:
		return models.ConfidenceNoData
	}
}

// IsCapped reports whether a confidence tag carries the anomaly-guard
// suffix.
func IsCapped(confidence string) bool {
	return strings.Contains(confidence, "capped")
}

// trailingWindow returns per-day totals of col for the campaign, ascending
// by date, with the single most recent day dropped and at most the last 7
// remaining days kept.
func trailingWindow(rows []models.Row, campaign, col string) []float64 {
	days, byDay := dailyTotals(rows, campaign, col)
	if len(days) <= 1 {
		return nil
	}
	days = days[:len(days)-1]
	if len(days) > 7 {
		days = days[len(days)-7:]
	}
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = byDay[d]
	}
	return out
}

// overallDailyAverage is the campaign-to-date mean daily total over every
// day on record, the most recent included.
func overallDailyAverage(rows []models.Row, campaign, col string) float64 {
	days, byDay := dailyTotals(rows, campaign, col)
	if len(days) == 0 {
		return 0
	}
	var total float64
	for _, d := range days {
		total += byDay[d]
	}
	return total / float64(len(days))
}

func dailyTotals(rows []models.Row, campaign, col string) ([]time.Time, map[time.Time]float64) {
	byDay := make(map[time.Time]float64)
	for _, r := range rows {
		if r[models.ColDate] == models.TotalsSentinel {
			continue
		}
		if r[models.ColCampaignName] != campaign {
			continue
		}
		d, ok := dates.Parse(r[models.ColDate])
		if !ok {
			continue
		}
		byDay[d] += money.ParseFloat(r[col])
	}
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, byDay
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}
