package models

import "strings"

// Row is one header-keyed record produced by the CSV ingestion layer.
// Numeric fields may arrive as numeric strings; the scoring core parses them.
type Row map[string]string

// Column keys of a delivery export (one calendar day x one campaign).
const (
	ColDate         = "DATE"
	ColCampaignName = "CAMPAIGN ORDER NAME"
	ColImpressions  = "IMPRESSIONS"
	ColClicks       = "CLICKS"
	ColTransactions = "TRANSACTIONS"
	ColRevenue      = "REVENUE"
	ColSpend        = "SPEND"
)

// TotalsSentinel marks the summary row some exports append; it is never data.
const TotalsSentinel = "Totals"

// Column keys of a contract-terms export.
const (
	ColName      = "Name"
	ColStartDate = "Start Date"
	ColEndDate   = "End Date"
	ColBudget    = "Budget"
	ColCPM       = "CPM"
	ColImprGoal  = "Impressions Goal"
)

// Column keys of a pacing-report export (fallback source for budget/days left).
const (
	ColPacingCampaign = "Campaign"
	ColPacingDaysLeft = "Days Left"
	ColPacingBudget   = "Budget"
)

// FirstField returns the first non-empty value among the candidate field
// names, in order. Exports name the campaign column inconsistently; keeping
// the candidate list as configuration means every call site resolves names
// the same way.
func FirstField(r Row, candidates []string) string {
	for _, c := range candidates {
		if v, ok := r[c]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// CampaignMetrics is the pacing view of one campaign: contracted terms plus
// delivery progress against the straight-line goal.
type CampaignMetrics struct {
	Budget                  float64 `json:"budget"`
	CPM                     float64 `json:"cpm"`
	ImpressionGoal          float64 `json:"impression_goal"`
	StartDate               string  `json:"start_date"`
	EndDate                 string  `json:"end_date"`
	TotalCampaignDays       int     `json:"total_campaign_days"`
	DaysIntoCampaign        int     `json:"days_into_campaign"`
	DaysUntilEnd            int     `json:"days_until_end"`
	ExpectedImpressions     float64 `json:"expected_impressions"`
	ActualImpressions       float64 `json:"actual_impressions"`
	CurrentPacing           float64 `json:"current_pacing"`
	RemainingImpressions    float64 `json:"remaining_impressions"`
	RemainingAvgDailyNeeded float64 `json:"remaining_avg_daily_needed"`
	YesterdayImpressions    float64 `json:"yesterday_impressions"`
	YesterdayVsNeeded       float64 `json:"yesterday_vs_needed"`
}

// ProcessedCampaign pairs a campaign name with its pacing metrics for the
// pacing-only view.
type ProcessedCampaign struct {
	Name    string          `json:"name"`
	Metrics CampaignMetrics `json:"metrics"`
}

// Burn-rate confidence tags. Spend-rate tags may carry a "-capped" suffix
// when the anomaly guard replaced the trailing window with the
// campaign-to-date average.
const (
	ConfidenceNoData         = "no-data"
	ConfidenceOneDay         = "1-day"
	ConfidenceThreeDay       = "3-day"
	ConfidenceSevenDay       = "7-day"
	ConfidenceOverallAverage = "overall-average"
	ConfidenceNoContract     = "no-contract-terms"
	CappedSuffix             = "-capped"
)

// BurnRateData holds trailing delivery rates over 1/3/7 day windows, each
// also expressed as a percentage of the required daily target.
type BurnRateData struct {
	OneDayRate   float64 `json:"one_day_rate"`
	ThreeDayRate float64 `json:"three_day_rate"`
	SevenDayRate float64 `json:"seven_day_rate"`
	OneDayPct    float64 `json:"one_day_pct"`
	ThreeDayPct  float64 `json:"three_day_pct"`
	SevenDayPct  float64 `json:"seven_day_pct"`
	Confidence   string  `json:"confidence"`
}

// CampaignHealthData is the scored record for one campaign. A HealthScore of
// exactly 0 together with zero spend and impressions is the exclusion
// sentinel (no contract terms or no delivery data), not a genuine score.
type CampaignHealthData struct {
	Name         string  `json:"name"`
	Spend        float64 `json:"spend"`
	Impressions  float64 `json:"impressions"`
	Clicks       float64 `json:"clicks"`
	Revenue      float64 `json:"revenue"`
	Transactions float64 `json:"transactions"`

	ROAS          float64 `json:"roas"`
	CTR           float64 `json:"ctr"`
	CompletionPct float64 `json:"completion_pct"`

	ROASScore           float64 `json:"roas_score"`
	CTRScore            float64 `json:"ctr_score"`
	DeliveryPacingScore float64 `json:"delivery_pacing_score"`
	BurnRateScore       float64 `json:"burn_rate_score"`
	OverspendScore      float64 `json:"overspend_score"`
	HealthScore         float64 `json:"health_score"`

	BurnRate           BurnRateData `json:"burn_rate"`
	BurnRateConfidence string       `json:"burn_rate_confidence"`
	ProjectedOverspend float64      `json:"projected_overspend"`
}

// Excluded reports whether the record is the exclusion sentinel rather than
// a genuinely scored campaign.
func (c CampaignHealthData) Excluded() bool {
	return c.HealthScore == 0 && c.Spend == 0 && c.Impressions == 0
}
