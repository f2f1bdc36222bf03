package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/models"
)

type Config struct {
	DeliveryURL string
	ContractURL string
	PacingURL   string
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	// CTRBenchmark is the percentage the CTR sub-score compares against.
	CTRBenchmark float64

	// NameFields is the ordered list of column names tried when resolving a
	// campaign name on contract-terms and pacing rows.
	NameFields []string

	// Composite weights. CTR is surfaced but carries no weight.
	ROASWeight      float64
	PacingWeight    float64
	BurnRateWeight  float64
	OverspendWeight float64
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	fields := []string{models.ColName, models.ColCampaignName, models.ColPacingCampaign, "NAME"}
	if v := os.Getenv("CAMPAIGN_NAME_FIELDS"); v != "" {
		fields = splitCSV(v)
	}
	return Config{
		DeliveryURL:     os.Getenv("DELIVERY_CSV_URL"),
		ContractURL:     os.Getenv("CONTRACT_CSV_URL"),
		PacingURL:       os.Getenv("PACING_CSV_URL"),
		Port:            envOr("PORT", "8080"),
		HTTPTimeout:     to,
		LogLevel:        lvl,
		CTRBenchmark:    envFloat("CTR_BENCHMARK", 0.5),
		NameFields:      fields,
		ROASWeight:      0.40,
		PacingWeight:    0.30,
		BurnRateWeight:  0.15,
		OverspendWeight: 0.15,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
