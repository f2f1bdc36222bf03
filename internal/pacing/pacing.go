// Package pacing projects campaign delivery against contracted goals: the
// per-campaign pacing metrics and the flight-completion percentage.
package pacing

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/dates"
	"github.com/angelcm/campaign-pulse-go/internal/models"
	"github.com/angelcm/campaign-pulse-go/internal/money"
)

// SkipError marks a campaign whose contract terms fail required-field
// validation. The batch continues; callers count and log skips.
type SkipError struct {
	Campaign string
	Reason   string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip campaign %q: %s", e.Campaign, e.Reason)
}

// Terms are the validated contract terms of one campaign. The flight range
// is inclusive: TotalDays = end-start+1.
type Terms struct {
	Name           string
	Start          time.Time
	End            time.Time
	Budget         float64
	CPM            float64
	ImpressionGoal float64
	TotalDays      int
}

// ParseTerms validates a contract-terms row. Any missing or unparseable
// required field returns a *SkipError so the campaign is excluded rather
// than scored with zeros.
func ParseTerms(r models.Row, nameFields []string) (Terms, error) {
	name := models.FirstField(r, nameFields)
	if name == "" {
		return Terms{}, &SkipError{Campaign: "(unnamed)", Reason: "missing campaign name"}
	}
	start, ok := dates.Parse(r[models.ColStartDate])
	if !ok {
		return Terms{}, &SkipError{Campaign: name, Reason: "unparseable start date"}
	}
	end, ok := dates.Parse(r[models.ColEndDate])
	if !ok {
		return Terms{}, &SkipError{Campaign: name, Reason: "unparseable end date"}
	}
	if end.Before(start) {
		return Terms{}, &SkipError{Campaign: name, Reason: "end date before start date"}
	}
	budget, ok := money.ParseCurrency(r[models.ColBudget])
	if !ok {
		return Terms{}, &SkipError{Campaign: name, Reason: "non-numeric budget"}
	}
	cpm, ok := money.ParseCurrency(r[models.ColCPM])
	if !ok {
		return Terms{}, &SkipError{Campaign: name, Reason: "non-numeric CPM"}
	}
	goal, ok := money.ParseCount(r[models.ColImprGoal])
	if !ok {
		return Terms{}, &SkipError{Campaign: name, Reason: "non-numeric impressions goal"}
	}
	return Terms{
		Name:           name,
		Start:          start,
		End:            end,
		Budget:         budget,
		CPM:            cpm,
		ImpressionGoal: goal,
		TotalDays:      dates.DaysBetween(start, end) + 1,
	}, nil
}

// Calculator computes pacing metrics and flight completion. Now is the wall
// clock and is injectable for tests.
type Calculator struct {
	Now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{Now: time.Now}
}

// Metrics computes the pacing view for one campaign. filtered holds the
// campaign's rows within the caller's date-range view; unfiltered, when
// non-empty, holds the campaign's full history and is preferred for
// cumulative totals so a narrowed view never understates delivery.
// globalLatest is the most recent date across all campaigns and is the
// fallback reference when this campaign has no rows of its own.
//
// The reference date for "today" prefers the campaign's own latest delivery
// date over the wall clock: pacing follows data freshness, not the calendar.
func (c *Calculator) Metrics(t Terms, filtered, unfiltered []models.Row, globalLatest time.Time) models.CampaignMetrics {
	dateSource := filtered
	if len(dateSource) == 0 {
		dateSource = unfiltered
	}
	days, byDay := dailyImpressions(dateSource)

	ref := globalLatest
	if len(days) > 0 {
		ref = days[len(days)-1]
	}
	if ref.IsZero() {
		ref = dates.Day(c.Now())
	}

	// The reference day itself counts as a delivered day: data dated the
	// start day means one day into the flight.
	daysInto := clampInt(dates.DaysBetween(t.Start, ref)+1, 0, t.TotalDays)
	daysUntil := dates.DaysBetween(ref, t.End)
	if daysUntil < 0 {
		daysUntil = 0
	}

	expected := 0.0
	if t.TotalDays > 0 {
		expected = t.ImpressionGoal / float64(t.TotalDays) * float64(daysInto)
	}

	totalSource := unfiltered
	if len(totalSource) == 0 {
		totalSource = filtered
	}
	actual := sumImpressions(totalSource)

	remaining := t.ImpressionGoal - actual
	if remaining < 0 {
		remaining = 0
	}
	remainingAvg := 0.0
	if daysUntil > 0 {
		remainingAvg = remaining / float64(daysUntil)
	}

	// The single most recent day may be a partial export; "yesterday" is the
	// second-most-recent day on record.
	yesterday := 0.0
	if len(days) >= 2 {
		yesterday = byDay[days[len(days)-2]]
	}

	return models.CampaignMetrics{
		Budget:                  t.Budget,
		CPM:                     t.CPM,
		ImpressionGoal:          t.ImpressionGoal,
		StartDate:               t.Start.Format("2006-01-02"),
		EndDate:                 t.End.Format("2006-01-02"),
		TotalCampaignDays:       t.TotalDays,
		DaysIntoCampaign:        daysInto,
		DaysUntilEnd:            daysUntil,
		ExpectedImpressions:     expected,
		ActualImpressions:       actual,
		CurrentPacing:           round3(safeDiv(actual, expected)),
		RemainingImpressions:    remaining,
		RemainingAvgDailyNeeded: remainingAvg,
		YesterdayImpressions:    yesterday,
		YesterdayVsNeeded:       round3(safeDiv(yesterday, remainingAvg)),
	}
}

// CompletionPct returns the percentage of the contracted flight elapsed as
// of the wall clock, in [0,100]. Returns 0 when no contract row matches the
// campaign name: such campaigns are ineligible for scoring, not "just
// started". Unlike Metrics, completion deliberately uses the calendar, not
// the latest delivery date.
func (c *Calculator) CompletionPct(contractRows []models.Row, campaign string, nameFields []string) float64 {
	for _, r := range contractRows {
		if models.FirstField(r, nameFields) != campaign {
			continue
		}
		start, ok := dates.Parse(r[models.ColStartDate])
		if !ok {
			return 0
		}
		end, ok := dates.Parse(r[models.ColEndDate])
		if !ok || end.Before(start) {
			return 0
		}
		total := dates.DaysBetween(start, end) + 1
		elapsed := dates.DaysBetween(start, c.Now())
		pct := float64(elapsed) / float64(total) * 100
		if pct < 0 {
			return 0
		}
		if pct > 100 {
			return 100
		}
		return pct
	}
	return 0
}

// ProcessCampaigns runs the pacing calculator over every contract row.
// Campaigns with invalid terms are skipped and counted; the batch never
// aborts. filtered/unfiltered are the full delivery row sets; rows are
// scoped per campaign in here.
func (c *Calculator) ProcessCampaigns(contractRows, filtered, unfiltered []models.Row, nameFields []string, log *slog.Logger) ([]models.ProcessedCampaign, int) {
	globalLatest := latestDate(filtered)
	if globalLatest.IsZero() {
		globalLatest = latestDate(unfiltered)
	}

	out := make([]models.ProcessedCampaign, 0, len(contractRows))
	skipped := 0
	for _, r := range contractRows {
		t, err := ParseTerms(r, nameFields)
		if err != nil {
			skipped++
			log.Warn("skipping campaign", slog.String("err", err.Error()))
			continue
		}
		m := c.Metrics(t, campaignRows(filtered, t.Name), campaignRows(unfiltered, t.Name), globalLatest)
		out = append(out, models.ProcessedCampaign{Name: t.Name, Metrics: m})
	}
	return out, skipped
}

// campaignRows scopes delivery rows to one campaign, dropping the Totals
// sentinel row.
func campaignRows(rows []models.Row, campaign string) []models.Row {
	var out []models.Row
	for _, r := range rows {
		if r[models.ColDate] == models.TotalsSentinel {
			continue
		}
		if r[models.ColCampaignName] == campaign {
			out = append(out, r)
		}
	}
	return out
}

func latestDate(rows []models.Row) time.Time {
	var latest time.Time
	for _, r := range rows {
		d, ok := dates.Parse(r[models.ColDate])
		if !ok {
			continue
		}
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}

// dailyImpressions sums impressions per calendar day and returns the days in
// ascending order. Multiple rows per (date, campaign) are summed, never
// assumed pre-aggregated.
func dailyImpressions(rows []models.Row) ([]time.Time, map[time.Time]float64) {
	byDay := make(map[time.Time]float64)
	for _, r := range rows {
		d, ok := dates.Parse(r[models.ColDate])
		if !ok {
			continue
		}
		byDay[d] += money.ParseFloat(r[models.ColImpressions])
	}
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, byDay
}

func sumImpressions(rows []models.Row) float64 {
	var total float64
	for _, r := range rows {
		if r[models.ColDate] == models.TotalsSentinel {
			continue
		}
		total += money.ParseFloat(r[models.ColImpressions])
	}
	return total
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(f float64) float64 { return float64(int64(f*1000+0.5)) / 1000 }
