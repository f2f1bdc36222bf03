// Package health combines ROAS, delivery pacing, burn rate and overspend
// risk into one 0-10 score per campaign.
package health

import (
	"log/slog"
	"sort"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/burnrate"
	"github.com/angelcm/campaign-pulse-go/internal/dates"
	"github.com/angelcm/campaign-pulse-go/internal/models"
	"github.com/angelcm/campaign-pulse-go/internal/money"
	"github.com/angelcm/campaign-pulse-go/internal/overspend"
	"github.com/angelcm/campaign-pulse-go/internal/pacing"
)

// Config carries the scoring knobs. Weights sum to 1.0; CTR is surfaced for
// display but carries no composite weight.
type Config struct {
	CTRBenchmark    float64
	NameFields      []string
	ROASWeight      float64
	PacingWeight    float64
	BurnRateWeight  float64
	OverspendWeight float64
}

// Scorer computes CampaignHealthData records. It is a pure function of its
// inputs; Now is injectable for tests and feeds both the completion
// calculation and days-left for the overspend projection.
type Scorer struct {
	cfg  Config
	calc *pacing.Calculator
	log  *slog.Logger
}

func NewScorer(cfg Config, log *slog.Logger) *Scorer {
	return &Scorer{cfg: cfg, calc: pacing.NewCalculator(), log: log}
}

// SetNow overrides the wall clock, for tests.
func (s *Scorer) SetNow(now func() time.Time) { s.calc.Now = now }

type totals struct {
	rows         int
	spend        float64
	impressions  float64
	clicks       float64
	revenue      float64
	transactions float64
}

// ScoreCampaign computes the health record for one campaign.
//
// Campaigns with no delivery rows, or with no matching contract terms
// (completion 0), return the exclusion sentinel: a zero record that callers
// filter out of any listing. Individually missing contract fields are
// tolerated and degrade the affected sub-score to 0.
func (s *Scorer) ScoreCampaign(delivery, pacingRows, contractRows []models.Row, campaign string) models.CampaignHealthData {
	agg := aggregate(delivery, campaign)
	if agg.rows == 0 {
		return models.CampaignHealthData{
			Name:               campaign,
			BurnRateConfidence: models.ConfidenceNoData,
			BurnRate:           models.BurnRateData{Confidence: models.ConfidenceNoData},
		}
	}

	completion := s.calc.CompletionPct(contractRows, campaign, s.cfg.NameFields)
	if completion == 0 {
		// No contract terms (or the flight has not started): ineligible, not
		// low-scoring.
		return models.CampaignHealthData{
			Name:               campaign,
			BurnRateConfidence: models.ConfidenceNoContract,
			BurnRate:           models.BurnRateData{Confidence: models.ConfidenceNoContract},
		}
	}

	roas := safeDiv(agg.revenue, agg.spend)
	ctr := safeDiv(agg.clicks, agg.impressions) * 100

	goal, flightDays, budget, endDate, termsOK := s.contractFields(contractRows, campaign)
	requiredDaily := 0.0
	if termsOK && flightDays > 0 {
		requiredDaily = goal / float64(flightDays)
	} else {
		s.log.Debug("no impression target for campaign", slog.String("campaign", campaign))
	}

	burn := burnrate.ImpressionRates(delivery, campaign, requiredDaily)
	spendRate := burnrate.SpendRates(delivery, campaign)

	budget, daysLeft, budgetOK := s.budgetAndDaysLeft(budget, endDate, termsOK, pacingRows, campaign)
	proj := overspend.Projection{}
	if budgetOK {
		proj = overspend.Project(agg.spend, budget, spendRate.Rate, daysLeft, spendRate.Confidence)
	}

	// Straight-line model: expected = goal/flightDays * daysElapsed, which is
	// goal scaled by completion.
	expected := goal * completion / 100

	scoreROAS := roasScore(roas)
	pacingScore := deliveryPacingScore(agg.impressions, expected)
	brScore := burnRateScore(burn, requiredDaily)

	composite := scoreROAS*s.cfg.ROASWeight +
		pacingScore*s.cfg.PacingWeight +
		brScore*s.cfg.BurnRateWeight +
		proj.Score*s.cfg.OverspendWeight

	return models.CampaignHealthData{
		Name:         campaign,
		Spend:        agg.spend,
		Impressions:  agg.impressions,
		Clicks:       agg.clicks,
		Revenue:      agg.revenue,
		Transactions: agg.transactions,

		ROAS:          round2(roas),
		CTR:           round3(ctr),
		CompletionPct: round1(completion),

		ROASScore:           scoreROAS,
		CTRScore:            ctrScore(ctr, s.cfg.CTRBenchmark),
		DeliveryPacingScore: pacingScore,
		BurnRateScore:       brScore,
		OverspendScore:      proj.Score,
		HealthScore:         round1(composite),

		BurnRate:           burn,
		BurnRateConfidence: burn.Confidence,
		ProjectedOverspend: round2(proj.ProjectedOverspend),
	}
}

// ScoreAll scores every campaign named in the delivery rows, filtering out
// exclusion sentinels. Campaigns are returned in name order.
func (s *Scorer) ScoreAll(delivery, pacingRows, contractRows []models.Row) []models.CampaignHealthData {
	names := campaignNames(delivery)
	out := make([]models.CampaignHealthData, 0, len(names))
	for _, name := range names {
		rec := s.ScoreCampaign(delivery, pacingRows, contractRows, name)
		if rec.Excluded() {
			s.log.Info("excluding campaign from health scoring",
				slog.String("campaign", name),
				slog.String("reason", rec.BurnRateConfidence))
			continue
		}
		out = append(out, rec)
	}
	return out
}

// contractFields reads the matching contract row leniently: each field that
// parses is used, each that does not degrades only the sub-scores depending
// on it.
func (s *Scorer) contractFields(contractRows []models.Row, campaign string) (goal float64, flightDays int, budget float64, end time.Time, ok bool) {
	for _, r := range contractRows {
		if models.FirstField(r, s.cfg.NameFields) != campaign {
			continue
		}
		start, sok := dates.Parse(r[models.ColStartDate])
		e, eok := dates.Parse(r[models.ColEndDate])
		if sok && eok && !e.Before(start) {
			flightDays = dates.DaysBetween(start, e) + 1
			end = e
		}
		goal, _ = money.ParseCount(r[models.ColImprGoal])
		budget, _ = money.ParseCurrency(r[models.ColBudget])
		return goal, flightDays, budget, end, true
	}
	return 0, 0, 0, time.Time{}, false
}

// budgetAndDaysLeft resolves the overspend inputs from contract terms,
// falling back to a pacing-report row matched by exact campaign name.
func (s *Scorer) budgetAndDaysLeft(budget float64, end time.Time, termsOK bool, pacingRows []models.Row, campaign string) (float64, int, bool) {
	if termsOK && budget > 0 && !end.IsZero() {
		return budget, dates.DaysBetween(s.calc.Now(), end), true
	}
	for _, r := range pacingRows {
		if models.FirstField(r, s.cfg.NameFields) != campaign {
			continue
		}
		b, bok := money.ParseCurrency(r[models.ColPacingBudget])
		d, dok := money.ParseCount(r[models.ColPacingDaysLeft])
		if bok && dok {
			return b, int(d), true
		}
	}
	// With contract dates but no budget anywhere the projection is moot; the
	// overspend sub-score degrades to 0.
	if termsOK && !end.IsZero() {
		return 0, dates.DaysBetween(s.calc.Now(), end), true
	}
	return 0, 0, false
}

func aggregate(rows []models.Row, campaign string) totals {
	var t totals
	for _, r := range rows {
		if r[models.ColDate] == models.TotalsSentinel {
			continue
		}
		if r[models.ColCampaignName] != campaign {
			continue
		}
		t.rows++
		t.spend += money.ParseFloat(r[models.ColSpend])
		t.impressions += money.ParseFloat(r[models.ColImpressions])
		t.clicks += money.ParseFloat(r[models.ColClicks])
		t.revenue += money.ParseFloat(r[models.ColRevenue])
		t.transactions += money.ParseFloat(r[models.ColTransactions])
	}
	return t
}

func campaignNames(rows []models.Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range rows {
		if r[models.ColDate] == models.TotalsSentinel {
			continue
		}
		name := r[models.ColCampaignName]
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func roasScore(roas float64) float64 {
	switch {
	case roas >= 4.0:
		return 10
	case roas >= 3.0:
		return 7.5
	case roas >= 2.0:
		return 5
	case roas >= 1.0:
		return 2.5
	case roas > 0:
		return 1
	default:
		return 0
	}
}

// ctrScore rates CTR against a fixed benchmark percentage. Deviation beyond
// +10% of the benchmark is strong, within +/-10% is fine, below is weak.
func ctrScore(ctr, benchmark float64) float64 {
	if ctr == 0 || benchmark == 0 {
		return 0
	}
	deviation := (ctr - benchmark) / benchmark * 100
	switch {
	case deviation > 10:
		return 10
	case deviation >= -10:
		return 8
	default:
		return 5
	}
}

func deliveryPacingScore(actual, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	pct := actual / expected * 100
	switch {
	case pct >= 95 && pct <= 105:
		return 10
	case (pct >= 90 && pct < 95) || (pct > 105 && pct <= 110):
		return 8
	case (pct >= 80 && pct < 90) || (pct > 110 && pct <= 120):
		return 6
	default:
		return 3
	}
}

// burnRateScore compares the best-available trailing rate (widest window
// first) against the required daily target.
func burnRateScore(b models.BurnRateData, requiredDaily float64) float64 {
	if requiredDaily <= 0 {
		return 0
	}
	var rate float64
	switch b.Confidence {
	case models.ConfidenceSevenDay:
		rate = b.SevenDayRate
	case models.ConfidenceThreeDay:
		rate = b.ThreeDayRate
	case models.ConfidenceOneDay:
		rate = b.OneDayRate
	default:
		return 0
	}
	ratio := rate / requiredDaily
	switch {
	case ratio >= 0.95 && ratio <= 1.05:
		return 10
	case (ratio >= 0.85 && ratio < 0.95) || (ratio > 1.05 && ratio <= 1.15):
		return 8
	default:
		return 5
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round1(f float64) float64 { return float64(int64(f*10+0.5)) / 10 }
func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
func round3(f float64) float64 { return float64(int64(f*1000+0.5)) / 1000 }
