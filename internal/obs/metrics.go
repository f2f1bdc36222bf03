// Package obs holds the prometheus instrumentation for the service.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RowsIngested     *prometheus.CounterVec
	CampaignsSkipped prometheus.Counter
	ScoringDuration  prometheus.Histogram
	Registry         *prometheus.Registry
}

// New builds the service metrics on a private registry so tests can
// construct them repeatedly without duplicate-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RowsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_pulse_rows_ingested_total",
			Help: "CSV rows ingested, by export kind.",
		}, []string{"kind"}),
		CampaignsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "campaign_pulse_campaigns_skipped_total",
			Help: "Campaigns excluded for invalid contract terms.",
		}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "campaign_pulse_scoring_duration_seconds",
			Help:    "Wall time of a full health-scoring pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
