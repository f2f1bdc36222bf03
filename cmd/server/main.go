package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/config"
	"github.com/angelcm/campaign-pulse-go/internal/health"
	"github.com/angelcm/campaign-pulse-go/internal/httpx"
	"github.com/angelcm/campaign-pulse-go/internal/ingest"
	"github.com/angelcm/campaign-pulse-go/internal/obs"
	"github.com/angelcm/campaign-pulse-go/internal/pacing"
	"github.com/angelcm/campaign-pulse-go/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	m := obs.New()
	loader := ingest.NewLoader(cl, st, logger, cfg, m)
	scorer := health.NewScorer(health.Config{
		CTRBenchmark:    cfg.CTRBenchmark,
		NameFields:      cfg.NameFields,
		ROASWeight:      cfg.ROASWeight,
		PacingWeight:    cfg.PacingWeight,
		BurnRateWeight:  cfg.BurnRateWeight,
		OverspendWeight: cfg.OverspendWeight,
	}, logger)
	calc := pacing.NewCalculator()

	r := httpx.NewRouter(logger, cfg, loader, st, scorer, calc, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
